// Command worldsim runs the WORLDSIM India ecosystem simulation: a closed
// ten-region economy driven by tick-based production, trade, treaties,
// climate shocks, and an inter-state assembly.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/talgya/worldsim/internal/advisor"
	"github.com/talgya/worldsim/internal/api"
	"github.com/talgya/worldsim/internal/archive"
	"github.com/talgya/worldsim/internal/config"
	"github.com/talgya/worldsim/internal/engine"
	"github.com/talgya/worldsim/internal/entropy"
	"github.com/talgya/worldsim/internal/llm"
	"github.com/talgya/worldsim/internal/persistence"
	"github.com/talgya/worldsim/internal/region"
)

// saveEveryTicks paces the periodic full persistence snapshot.
const saveEveryTicks = 25

func main() {
	configPath := flag.String("config", "", "path to YAML config (optional)")
	ticks := flag.Int("ticks", 0, "ticks to run (0 = config default, -1 = unlimited)")
	delayMS := flag.Int("delay", 0, "tick delay in ms (0 = config default)")
	seed := flag.Int64("seed", 0, "rng seed (0 = config default or random)")
	dbDSN := flag.String("db", "", "database DSN: sqlite path or postgres:// URL (empty = no persistence)")
	port := flag.Int("port", 0, "HTTP API port (0 = config default)")
	noLLM := flag.Bool("no-llm", false, "disable LLM advisors even when an API key is set")
	archiveDir := flag.String("archive-dir", "", "directory for compressed tick archives (empty = disabled)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("configuration failed", "error", err)
		os.Exit(1)
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *delayMS > 0 {
		cfg.TickDelayMS = *delayMS
	}
	if *port > 0 {
		cfg.Port = *port
	}
	if *dbDSN != "" {
		cfg.DatabaseDSN = *dbDSN
	}

	maxTicks := cfg.DefaultTicks
	switch {
	case *ticks > 0:
		maxTicks = *ticks
	case *ticks < 0:
		maxTicks = 0 // run until stopped
	}

	rng := entropy.NewSource(cfg.Seed)
	slog.Info("WORLDSIM — India Ecosystem", "seed", rng.Seed(), "max_ticks", maxTicks)

	// ── Persistence (optional) ────────────────────────────────────────
	var store *persistence.Store
	if cfg.DatabaseDSN != "" {
		store, err = persistence.Open(cfg.DatabaseDSN)
		if err != nil {
			slog.Error("failed to open database", "dsn", cfg.DatabaseDSN, "error", err)
			os.Exit(1)
		}
		defer store.Close()
		slog.Info("database opened", "dsn", cfg.DatabaseDSN)
	} else {
		slog.Info("running without persistence (pass --db to enable)")
	}

	// ── Ledger: saved state or built-in seed ──────────────────────────
	ledger := region.Ledger{}
	if store != nil {
		ledger, err = store.LoadAllRegions()
		if err != nil {
			slog.Error("failed to load regions", "error", err)
			os.Exit(1)
		}
	}
	if len(ledger) == 0 {
		ledger = region.Seed()
		slog.Info("seeded fresh ledger", "regions", len(ledger))
	} else {
		slog.Info("ledger restored", "regions", len(ledger))
	}

	// ── Advisors ──────────────────────────────────────────────────────
	var llmClient *llm.Client
	if !*noLLM {
		llmClient = llm.NewClient(cfg.AnthropicKey, llm.Options{
			Model:             cfg.LLMModel,
			BaseURL:           cfg.LLMEndpoint,
			Timeout:           cfg.LLMTimeout(),
			MaxCallsPerMinute: cfg.LLMMaxPerMinute,
		})
	}
	advisors := make(map[string]advisor.Advisor, len(region.Codes))
	for _, code := range region.Codes {
		if llmClient != nil {
			advisors[code] = advisor.NewLLM(llmClient, code, cfg.MaxTradeQuantity)
		} else {
			advisors[code] = advisor.NewHeuristic(code, cfg.MaxTradeQuantity)
		}
	}
	if llmClient != nil {
		slog.Info("LLM advisors enabled", "model", cfg.LLMModel)
	} else {
		slog.Info("heuristic advisors active (no API key or --no-llm)")
	}

	// ── World ─────────────────────────────────────────────────────────
	world := engine.NewWorld(ledger, cfg, rng, advisors)
	if store != nil {
		if err := store.RestoreWorld(world); err != nil {
			slog.Error("failed to restore world state", "error", err)
			os.Exit(1)
		}
	}

	// ── Tick archive (optional) ───────────────────────────────────────
	var arch *archive.Writer
	if *archiveDir != "" {
		arch, err = archive.NewWriter(*archiveDir)
		if err != nil {
			slog.Error("failed to open tick archive", "error", err)
			os.Exit(1)
		}
		defer arch.Close()
		slog.Info("tick archive enabled", "path", arch.Path())
	}

	// ── Engine and dashboard wiring ───────────────────────────────────
	eng := engine.NewEngine(world, cfg.TickDelay(), maxTicks)
	hub := api.NewHub(world)
	history := api.NewHistory()

	eng.OnTick = func(report *engine.TickReport) {
		snapshot := world.SnapshotLedger()
		history.Record(report, snapshot)

		payload := api.BuildTickPayload(world, report)
		hub.Broadcast(payload)

		if arch != nil {
			if err := arch.Append(payload); err != nil {
				slog.Error("archive append failed", "tick", report.Tick, "error", err)
			}
		}
		if store != nil && report.Tick%saveEveryTicks == 0 {
			if err := store.SaveWorldState(world); err != nil {
				slog.Error("periodic save failed", "tick", report.Tick, "error", err)
			}
		}
	}

	if cfg.AdminKey == "" {
		slog.Warn("WORLDSIM_ADMIN_KEY not set — admin POST endpoints disabled")
	}
	server := &api.Server{
		World:       world,
		Eng:         eng,
		Hub:         hub,
		History:     history,
		Port:        cfg.Port,
		AdminKey:    cfg.AdminKey,
		CORSOrigins: cfg.CORSOrigins,
	}
	server.Start()

	// ── Run ───────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		eng.Stop()
	}()

	fmt.Printf("\nWORLDSIM: %d states, tick %d. API on http://localhost:%d/api/state (Ctrl+C to stop)\n",
		len(world.Ledger), world.CurrentTick(), cfg.Port)

	eng.Run()

	if store != nil {
		if err := store.SaveWorldState(world); err != nil {
			slog.Error("final save failed", "error", err)
		}
	}
	slog.Info("simulation stopped", "tick", world.CurrentTick())
}
