package engine

import (
	"log/slog"

	"github.com/talgya/worldsim/internal/finops"
	"github.com/talgya/worldsim/internal/region"
)

// stepTradeMatching fills this tick's outstanding recommended trades.
//
// Each recommendation still unmet after negotiation is matched against other
// regions in a fixed order; the first one whose surplus covers the requested
// amount supplies it. One trade per deficit per tick.
func (w *World) stepTradeMatching(report *TickReport, satisfied map[satisfiedKey]bool) {
	for _, code := range w.Ledger.CodesPresent() {
		rep := w.reports[code]
		if rep == nil {
			continue
		}
		for _, rec := range rep.Recommendations {
			if rec.Action != finops.ActionTrade {
				continue
			}
			if rec.OfferResource == "" || rec.RequestResource == "" || rec.OfferAmount <= 0 {
				continue
			}
			if satisfied[satisfiedKey{code: code, res: rec.RequestResource}] {
				continue
			}

			for _, partner := range w.Ledger.CodesPresent() {
				if partner == code {
					continue
				}
				prep := w.reports[partner]
				if prep == nil || prep.SurplusAvailable(rec.RequestResource) < rec.RequestAmount {
					continue
				}

				trade := w.executeDirectTrade(code, partner,
					map[region.Resource]int{rec.OfferResource: rec.OfferAmount},
					map[region.Resource]int{rec.RequestResource: rec.RequestAmount},
					TradeAuto)
				report.TradesExecuted = append(report.TradesExecuted, trade)
				break
			}
		}
	}
}

// executeDirectTrade settles a two-leg swap between from and to. Each leg
// caps at what the paying side actually holds, so a trade can partially fill
// or even move nothing. The requesting leg sees stocks as the offering leg
// left them. Caller holds the world lock.
func (w *World) executeDirectTrade(from, to string, offering, requesting map[region.Resource]int, kind string) TradeRecord {
	src := w.Ledger[from]
	dst := w.Ledger[to]

	rec := TradeRecord{
		Tick:     w.Tick,
		From:     from,
		To:       to,
		Offered:  make(map[region.Resource]int),
		Received: make(map[region.Resource]int),
		Type:     kind,
	}

	for _, res := range region.ResourceOrder {
		amt, ok := offering[res]
		if !ok || amt <= 0 {
			continue
		}
		if held := src.Stock(res); held < amt {
			amt = held
		}
		src.AdjustStock(res, -amt)
		dst.AdjustStock(res, amt)
		rec.Offered[res] = amt
	}

	for _, res := range region.ResourceOrder {
		amt, ok := requesting[res]
		if !ok || amt <= 0 {
			continue
		}
		if held := dst.Stock(res); held < amt {
			amt = held
		}
		dst.AdjustStock(res, -amt)
		src.AdjustStock(res, amt)
		rec.Received[res] = amt
	}

	w.recordTrade(rec)
	slog.Info("trade executed", "tick", w.Tick, "from", from, "to", to, "type", kind)
	return rec
}
