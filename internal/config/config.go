// Package config centralizes every simulation tunable. Values resolve in
// three layers: built-in defaults, an optional YAML file, then environment
// variables (a .env file is honored when present).
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the full parameter set for one simulation run.
type Config struct {
	// Cadence
	DefaultTicks int   `yaml:"default_ticks"`
	TickDelayMS  int   `yaml:"tick_delay_ms"`
	Seed         int64 `yaml:"seed"` // 0 = derive from entropy

	// Economy & scoring
	RewardLambda float64        `yaml:"reward_lambda"`
	ResourceMax  map[string]int `yaml:"resource_max"`

	// Migration
	WelfareMigrationThreshold float64 `yaml:"welfare_migration_threshold"`
	MigrationRate             float64 `yaml:"migration_rate"`
	MigrationRescan           bool    `yaml:"migration_rescan"` // re-read welfare after each move

	// Treaties
	MaxActiveTreaties int     `yaml:"max_active_treaties"`
	BreachPenalty     float64 `yaml:"breach_penalty"`
	HonorBonus        float64 `yaml:"honor_bonus"`

	// Climate
	ClimateTriggerProb float64 `yaml:"climate_trigger_prob"`
	ClimateMinInterval int     `yaml:"climate_min_interval"`

	// Assembly
	AssemblyInterval   int     `yaml:"assembly_interval"`
	MajorityFraction   float64 `yaml:"majority_fraction"`
	ResolutionDuration int     `yaml:"resolution_duration"`
	RankProposals      bool    `yaml:"rank_proposals"` // rank ballot by declared impact

	// Advisory & analysis
	AdvisoryInterval int     `yaml:"advisory_interval"`
	DeficitThreshold float64 `yaml:"deficit_threshold"`
	SurplusThreshold float64 `yaml:"surplus_threshold"`
	MaxTradeQuantity int     `yaml:"max_trade_quantity"`
	LLMTimeoutS      int     `yaml:"llm_timeout_s"`
	LLMModel         string  `yaml:"llm_model"`
	LLMEndpoint      string  `yaml:"llm_endpoint"`
	LLMMaxPerMinute  int     `yaml:"llm_max_per_minute"`

	// Host process (env-driven, not YAML)
	AnthropicKey string `yaml:"-"`
	DatabaseDSN  string `yaml:"-"`
	AdminKey     string `yaml:"-"`
	CORSOrigins  string `yaml:"-"`
	Port         int    `yaml:"port"`
}

// Default returns the built-in parameter set.
func Default() Config {
	return Config{
		DefaultTicks: 100,
		TickDelayMS:  500,

		RewardLambda: 0.5,
		ResourceMax: map[string]int{
			"water":  15000,
			"energy": 15000,
			"food":   15000,
			"tech":   12000,
		},

		WelfareMigrationThreshold: 35.0,
		MigrationRate:             0.02,

		MaxActiveTreaties: 5,
		BreachPenalty:     15.0,
		HonorBonus:        2.0,

		ClimateTriggerProb: 0.05,
		ClimateMinInterval: 5,

		AssemblyInterval:   50,
		MajorityFraction:   0.6,
		ResolutionDuration: 100,

		AdvisoryInterval: 10,
		DeficitThreshold: 0.15,
		SurplusThreshold: 0.5,
		MaxTradeQuantity: 2000,
		LLMTimeoutS:      60,
		LLMModel:         "claude-haiku-4-5-20251001",
		LLMEndpoint:      "https://api.anthropic.com/v1/messages",
		LLMMaxPerMinute:  20,

		Port: 8000,
	}
}

// Load resolves the configuration: defaults, then the YAML file at path (if
// non-empty), then environment overrides. A missing .env file is not an error.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.AnthropicKey = os.Getenv("ANTHROPIC_API_KEY")
	c.AdminKey = os.Getenv("WORLDSIM_ADMIN_KEY")
	c.CORSOrigins = os.Getenv("CORS_ORIGINS")
	if dsn := os.Getenv("WORLDSIM_DB"); dsn != "" {
		c.DatabaseDSN = dsn
	}
	if p := os.Getenv("PORT"); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			c.Port = v
		}
	}
	if s := os.Getenv("WORLDSIM_SEED"); s != "" {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			c.Seed = v
		}
	}
}

// TickDelay returns the pacing interval between ticks.
func (c Config) TickDelay() time.Duration {
	return time.Duration(c.TickDelayMS) * time.Millisecond
}

// LLMTimeout returns the advisory call timeout.
func (c Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLMTimeoutS) * time.Second
}
