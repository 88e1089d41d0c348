// Package engine advances the ten-region world one tick at a time, in a
// fixed step order, and reports everything each tick did.
package engine

import (
	"errors"
	"fmt"
	"sync"

	"github.com/talgya/worldsim/internal/advisor"
	"github.com/talgya/worldsim/internal/assembly"
	"github.com/talgya/worldsim/internal/climate"
	"github.com/talgya/worldsim/internal/config"
	"github.com/talgya/worldsim/internal/entropy"
	"github.com/talgya/worldsim/internal/finops"
	"github.com/talgya/worldsim/internal/region"
	"github.com/talgya/worldsim/internal/treaty"
)

// Analyzer is the per-region financial analysis capability.
type Analyzer interface {
	Analyze(r *region.Region, tick int) (*finops.Report, error)
}

// recentTradeCap bounds the rolling trade feed kept for the dashboard.
const recentTradeCap = 100

// World holds the authoritative ledger and every subsystem. Exactly one
// logical writer advances it; the mutex only separates whole ticks from
// snapshot readers.
type World struct {
	mu sync.RWMutex

	Tick   int
	Ledger region.Ledger

	Climate    *climate.Engine
	Treaties   *treaty.Manager
	Parliament *assembly.Parliament
	Analyst    Analyzer
	Advisors   map[string]advisor.Advisor

	cfg     config.Config
	reports map[string]*finops.Report

	// Queued admin actions, drained at the top of the next tick.
	pending []InterventionRecord

	// Rolling feeds for the dashboard.
	recentTrades  []TradeRecord
	recentActions []AdvisoryAction
	climateLog    []climate.Outcome

	lastReport *TickReport
}

// NewWorld wires a world from seed regions, config, and a randomness source.
// advisors maps region codes to their decision capability.
func NewWorld(ledger region.Ledger, cfg config.Config, rng *entropy.Source,
	advisors map[string]advisor.Advisor) *World {

	return &World{
		Ledger:     ledger,
		Climate:    climate.NewEngine(rng, cfg.ClimateTriggerProb, cfg.ClimateMinInterval),
		Treaties:   treaty.NewManager(cfg.MaxActiveTreaties, cfg.BreachPenalty, cfg.HonorBonus),
		Parliament: assembly.New(cfg.MajorityFraction, cfg.ResolutionDuration, cfg.RankProposals),
		Analyst: finops.NewAnalyst(cfg.DeficitThreshold, cfg.SurplusThreshold,
			cfg.MaxTradeQuantity, cfg.ResourceMax),
		Advisors: advisors,
		cfg:      cfg,
		reports:  make(map[string]*finops.Report),
	}
}

// Step advances the world exactly one tick and returns its report. Steps run
// in a fixed order; no step aborts the tick. A started tick always completes.
func (w *World) Step() *TickReport {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.Tick++
	report := &TickReport{
		Tick:            w.Tick,
		ResourceUpdates: make(map[string]map[region.Resource]int, len(w.Ledger)),
	}

	report.Interventions = w.drainInterventions()

	w.stepResources(report)
	w.stepPolicies()
	w.stepTreaties(report)
	w.stepAnalysis()
	w.stepClimate(report)
	satisfied := w.stepNegotiation(report)
	w.stepTradeMatching(report, satisfied)
	w.stepMigration(report)
	w.stepAssembly(report)
	w.stepRewards(report)

	w.lastReport = report
	return report
}

// CurrentTick returns the most recently completed tick number.
func (w *World) CurrentTick() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.Tick
}

// LastReport returns the most recent tick report, nil before the first tick.
func (w *World) LastReport() *TickReport {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lastReport
}

// Reports returns the cached per-region financial reports from this tick.
func (w *World) Reports() map[string]*finops.Report {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make(map[string]*finops.Report, len(w.reports))
	for code, r := range w.reports {
		out[code] = r
	}
	return out
}

// SnapshotLedger deep-copies the ledger so readers never alias live state.
func (w *World) SnapshotLedger() region.Ledger {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.Ledger.Clone()
}

// ActiveTreaties returns deep copies of the active treaties.
func (w *World) ActiveTreaties() []*treaty.Treaty {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return cloneTreaties(w.Treaties.Active())
}

// ExpiredTreaties returns deep copies of the archived treaties.
func (w *World) ExpiredTreaties() []*treaty.Treaty {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return cloneTreaties(w.Treaties.Expired())
}

// ActiveClimate returns the active climate events and their remaining ticks.
func (w *World) ActiveClimate() map[string]int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.Climate.Active()
}

// Resolutions returns every resolution parliament has ever passed.
func (w *World) Resolutions() []assembly.Resolution {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.Parliament.Resolutions()
}

// ActiveResolutions returns the resolutions still in force this tick.
func (w *World) ActiveResolutions() []assembly.Resolution {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.Parliament.ActiveResolutions(w.Tick)
}

func cloneTreaties(src []*treaty.Treaty) []*treaty.Treaty {
	out := make([]*treaty.Treaty, len(src))
	for i, t := range src {
		out[i] = t.Clone()
	}
	return out
}

// RecentTrades returns up to n of the latest executed trades, newest last.
func (w *World) RecentTrades(n int) []TradeRecord {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if n <= 0 || n > len(w.recentTrades) {
		n = len(w.recentTrades)
	}
	out := make([]TradeRecord, n)
	copy(out, w.recentTrades[len(w.recentTrades)-n:])
	return out
}

// RecentActions returns up to n of the latest advisory actions, newest last.
func (w *World) RecentActions(n int) []AdvisoryAction {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if n <= 0 || n > len(w.recentActions) {
		n = len(w.recentActions)
	}
	out := make([]AdvisoryAction, n)
	copy(out, w.recentActions[len(w.recentActions)-n:])
	return out
}

// ClimateLog returns up to n of the latest climate outcomes, newest last.
func (w *World) ClimateLog(n int) []climate.Outcome {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if n <= 0 || n > len(w.climateLog) {
		n = len(w.climateLog)
	}
	out := make([]climate.Outcome, n)
	copy(out, w.climateLog[len(w.climateLog)-n:])
	return out
}

// ErrTreatyCap reports a treaty refused because a party already holds the
// maximum number of active treaties. A normal outcome, not a fault.
var ErrTreatyCap = errors.New("treaty limit reached")

// ProposeTreaty creates a new treaty subject to the per-region cap.
func (w *World) ProposeTreaty(p treaty.Proposal) (*treaty.Treaty, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.Ledger[p.From]; !ok {
		return nil, fmt.Errorf("unknown region %q", p.From)
	}
	if _, ok := w.Ledger[p.To]; !ok {
		return nil, fmt.Errorf("unknown region %q", p.To)
	}

	t := w.Treaties.Create(p, w.Tick)
	if t == nil {
		return nil, fmt.Errorf("%w for %s or %s", ErrTreatyCap, p.From, p.To)
	}
	return t, nil
}

// recordTrade appends to the rolling trade feed, trimming the oldest.
func (w *World) recordTrade(rec TradeRecord) {
	w.recentTrades = append(w.recentTrades, rec)
	if len(w.recentTrades) > recentTradeCap {
		w.recentTrades = w.recentTrades[len(w.recentTrades)-recentTradeCap:]
	}
}

func (w *World) recordAction(act AdvisoryAction) {
	w.recentActions = append(w.recentActions, act)
	if len(w.recentActions) > recentTradeCap {
		w.recentActions = w.recentActions[len(w.recentActions)-recentTradeCap:]
	}
}
