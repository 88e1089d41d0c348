package engine

import (
	"log/slog"

	"github.com/talgya/worldsim/internal/finops"
)

// stepTreaties enforces every active treaty and settles the trust ledger.
// Nothing to do when no treaties are active.
func (w *World) stepTreaties(report *TickReport) {
	if len(w.Treaties.Active()) == 0 {
		return
	}

	results := w.Treaties.Enforce(w.Tick, w.Ledger)
	report.TreatyResults = results

	adjustments := w.Treaties.TrustAdjustments(results)
	for code, delta := range adjustments {
		if r, ok := w.Ledger[code]; ok {
			r.AdjustTrust(delta)
		}
	}
	report.TrustChanges = adjustments
}

// stepAnalysis refreshes the per-region financial reports used by every
// later step this tick. A failed analysis leaves an empty report in place
// so downstream consumers stay nil-safe.
func (w *World) stepAnalysis() {
	fresh := make(map[string]*finops.Report, len(w.Ledger))
	for _, code := range w.Ledger.CodesPresent() {
		rep, err := w.Analyst.Analyze(w.Ledger[code], w.Tick)
		if err != nil {
			slog.Warn("financial analysis failed", "region", code, "error", err)
			rep = &finops.Report{Region: code, Tick: w.Tick}
		}
		fresh[code] = rep
	}
	w.reports = fresh
}
