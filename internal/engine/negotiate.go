package engine

import (
	"errors"
	"log/slog"

	"github.com/talgya/worldsim/internal/advisor"
	"github.com/talgya/worldsim/internal/finops"
	"github.com/talgya/worldsim/internal/region"
	"github.com/talgya/worldsim/internal/treaty"
)

// satisfiedKey marks one region's deficit in one resource as already covered
// by a negotiated trade this tick, so the matching step does not double-fill.
type satisfiedKey struct {
	code string
	res  region.Resource
}

// stepNegotiation gives governor advisors a chance to negotiate trades.
//
// An advisor is consulted when its region is due for a periodic review, is
// flagged by its financial report, or sits under an active climate event.
// The counterparty is the region with the most of the advisor's scarcest
// resource to spare. Accepted proposals settle immediately.
func (w *World) stepNegotiation(report *TickReport) map[satisfiedKey]bool {
	satisfied := make(map[satisfiedKey]bool)
	affected := w.Climate.AffectedRegions()
	periodic := w.cfg.AdvisoryInterval > 0 && w.Tick%w.cfg.AdvisoryInterval == 0

	for _, code := range w.Ledger.CodesPresent() {
		adv, ok := w.Advisors[code]
		if !ok {
			continue
		}
		rep := w.reports[code]
		if rep == nil {
			continue
		}
		if !periodic && !rep.NeedsAttention && !affected[code] {
			continue
		}

		res, _, ok := rep.TopDeficit()
		if !ok {
			continue
		}

		partner, partnerRep := w.bestSupplier(code, res)
		if partner == "" {
			continue
		}

		proposal, err := adv.ProposeTrade(rep, partner, partnerRep.Surpluses)
		if err != nil {
			if errors.Is(err, advisor.ErrUnavailable) {
				slog.Debug("advisor unavailable", "region", code)
			} else {
				slog.Warn("trade proposal failed", "region", code, "error", err)
			}
			continue
		}
		if proposal == nil || !proposal.Actionable() {
			continue
		}

		// A proposal with a duration asks for a standing treaty. The cap can
		// refuse it, in which case the deal settles as a one-shot trade.
		if proposal.DurationTicks > 0 {
			t := w.Treaties.Create(treaty.Proposal{
				From:           code,
				To:             partner,
				PerTickOffer:   proposal.Offering,
				PerTickRequest: proposal.Requesting,
				DurationTicks:  proposal.DurationTicks,
				Conditions:     proposal.Reasoning,
			}, w.Tick)
			if t != nil {
				report.TreatiesCreated = append(report.TreatiesCreated, t.Clone())

				action := AdvisoryAction{Type: "TREATY", From: code, To: partner, Proposal: proposal}
				report.AdvisoryActions = append(report.AdvisoryActions, action)
				w.recordAction(action)

				for got := range proposal.Requesting {
					satisfied[satisfiedKey{code: code, res: got}] = true
				}
				continue
			}
		}

		rec := w.executeDirectTrade(code, partner, proposal.Offering, proposal.Requesting, TradeNegotiated)
		report.TradesExecuted = append(report.TradesExecuted, rec)

		action := AdvisoryAction{Type: "TRADE", From: code, To: partner, Proposal: proposal}
		report.AdvisoryActions = append(report.AdvisoryActions, action)
		w.recordAction(action)

		for got, amt := range rec.Received {
			if amt > 0 {
				satisfied[satisfiedKey{code: code, res: got}] = true
			}
		}
	}

	return satisfied
}

// bestSupplier finds the region with the largest available surplus of res,
// judged from this tick's reports. Returns empty when nobody has spare stock.
func (w *World) bestSupplier(self string, res region.Resource) (string, *finops.Report) {
	best := ""
	bestAvail := 0
	var bestRep *finops.Report

	for _, code := range w.Ledger.CodesPresent() {
		if code == self {
			continue
		}
		rep := w.reports[code]
		if rep == nil {
			continue
		}
		if avail := rep.SurplusAvailable(res); avail > bestAvail {
			best, bestAvail, bestRep = code, avail, rep
		}
	}
	return best, bestRep
}
