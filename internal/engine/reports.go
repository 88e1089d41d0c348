package engine

import (
	"github.com/talgya/worldsim/internal/advisor"
	"github.com/talgya/worldsim/internal/assembly"
	"github.com/talgya/worldsim/internal/climate"
	"github.com/talgya/worldsim/internal/region"
	"github.com/talgya/worldsim/internal/treaty"
)

// Trade origins recorded on TradeRecord.Type.
const (
	TradeAuto       = "AUTO"
	TradeNegotiated = "NEGOTIATED"
)

// TradeRecord is one executed exchange between two regions.
type TradeRecord struct {
	Tick     int                     `json:"tick"`
	From     string                  `json:"from"`
	To       string                  `json:"to"`
	Offered  map[region.Resource]int `json:"offered"`
	Received map[region.Resource]int `json:"received"`
	Type     string                  `json:"type"`
}

// AdvisoryAction records one accepted negotiation outcome.
type AdvisoryAction struct {
	Type     string                 `json:"type"`
	From     string                 `json:"from"`
	To       string                 `json:"to"`
	Proposal *advisor.TradeProposal `json:"proposal"`
}

// Migration is one population movement between regions.
type Migration struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Migrants int    `json:"migrants"`
}

// RewardSummary is the cooperative reward block computed each tick.
type RewardSummary struct {
	GlobalGDP       float64 `json:"global_gdp"`
	MeanGDP         float64 `json:"mean_gdp"`
	Deviation       float64 `json:"deviation"`
	GiniCoefficient float64 `json:"gini_coefficient"`
	GlobalReward    float64 `json:"global_reward"`
}

// InterventionRecord is one admin action applied before the tick ran.
type InterventionRecord struct {
	ID      string `json:"id"`
	Action  string `json:"action"`
	Target  string `json:"target,omitempty"`
	Message string `json:"message"`
}

// TickReport summarizes everything a single tick did. It is what the
// transport broadcasts, the archive appends, and the analytics fold in.
type TickReport struct {
	Tick            int                                `json:"tick"`
	ResourceUpdates map[string]map[region.Resource]int `json:"resource_updates"`
	TradesExecuted  []TradeRecord                      `json:"trades_executed"`
	TreatyResults   []treaty.Result                    `json:"treaties_enforced"`
	TreatiesCreated []*treaty.Treaty                   `json:"treaties_created,omitempty"`
	ClimateEvents   []climate.Outcome                  `json:"climate_events"`
	AdvisoryActions []AdvisoryAction                   `json:"advisory_actions"`
	Migrations      []Migration                        `json:"migrations"`
	Assembly        *assembly.MeetingResult            `json:"assembly,omitempty"`
	Rewards         *RewardSummary                     `json:"rewards,omitempty"`
	Interventions   []InterventionRecord               `json:"interventions,omitempty"`
	TrustChanges    map[string]float64                 `json:"trust_changes,omitempty"`
}
