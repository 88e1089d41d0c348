package api

import (
	"sort"
	"sync"

	"github.com/talgya/worldsim/internal/engine"
	"github.com/talgya/worldsim/internal/region"
)

// maxHistoryTicks bounds the in-memory analytics window.
const maxHistoryTicks = 5000

// tickSample is one tick's scores across every region.
type tickSample struct {
	tick    int
	gdp     map[string]float64
	welfare map[string]float64
}

// History accumulates the per-tick series the analytics endpoints serve.
// The tick callback writes; HTTP handlers read.
type History struct {
	mu      sync.RWMutex
	samples []tickSample
	trades  []engine.TradeRecord
	climate map[string]int // event name -> trigger count
	latest  region.Ledger
}

// NewHistory builds an empty analytics store.
func NewHistory() *History {
	return &History{climate: make(map[string]int)}
}

// Record folds one completed tick into the series. ledger must be a snapshot,
// never the live map.
func (h *History) Record(report *engine.TickReport, ledger region.Ledger) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sample := tickSample{
		tick:    report.Tick,
		gdp:     make(map[string]float64, len(ledger)),
		welfare: make(map[string]float64, len(ledger)),
	}
	for code, r := range ledger {
		sample.gdp[code] = r.GDPScore
		sample.welfare[code] = r.WelfareScore
	}
	h.samples = append(h.samples, sample)
	if len(h.samples) > maxHistoryTicks {
		h.samples = h.samples[len(h.samples)-maxHistoryTicks:]
	}

	h.trades = append(h.trades, report.TradesExecuted...)
	if len(h.trades) > maxHistoryTicks {
		h.trades = h.trades[len(h.trades)-maxHistoryTicks:]
	}

	for _, ev := range report.ClimateEvents {
		if ev.Type == "TRIGGERED" {
			h.climate[ev.Name]++
		}
	}

	h.latest = ledger
}

// GDPHistory returns up to limit evenly sampled ticks with each region's GDP.
func (h *History) GDPHistory(limit int) []map[string]any {
	return h.series(limit, func(s tickSample) map[string]float64 { return s.gdp })
}

// WelfareHistory returns up to limit evenly sampled ticks with each region's
// welfare score.
func (h *History) WelfareHistory(limit int) []map[string]any {
	return h.series(limit, func(s tickSample) map[string]float64 { return s.welfare })
}

func (h *History) series(limit int, pick func(tickSample) map[string]float64) []map[string]any {
	h.mu.RLock()
	defer h.mu.RUnlock()

	samples := h.samples
	if limit > 0 && len(samples) > limit {
		// Sample evenly so long runs still fit a line chart.
		step := len(samples) / limit
		thinned := make([]tickSample, 0, limit)
		for i := 0; i < len(samples) && len(thinned) < limit; i += step {
			thinned = append(thinned, samples[i])
		}
		samples = thinned
	}

	out := make([]map[string]any, 0, len(samples))
	for _, s := range samples {
		entry := map[string]any{"tick": s.tick}
		values := pick(s)
		for _, code := range region.Codes {
			if v, ok := values[code]; ok {
				entry[code] = v
			}
		}
		out = append(out, entry)
	}
	return out
}

// Trades returns up to limit of the most recent executed trades, oldest
// first.
func (h *History) Trades(limit int) []engine.TradeRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()

	trades := h.trades
	if limit > 0 && len(trades) > limit {
		trades = trades[len(trades)-limit:]
	}
	out := make([]engine.TradeRecord, len(trades))
	copy(out, trades)
	return out
}

// overviewRow is one region's latest snapshot line.
type overviewRow struct {
	State      string  `json:"state"`
	Water      int     `json:"water"`
	Energy     int     `json:"energy"`
	Food       int     `json:"food"`
	Tech       int     `json:"tech"`
	GDP        float64 `json:"gdp"`
	Welfare    float64 `json:"welfare"`
	Population int     `json:"population"`
}

// ResourceOverview returns the latest per-region resource snapshot in
// canonical order.
func (h *History) ResourceOverview() []overviewRow {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]overviewRow, 0, len(h.latest))
	for _, code := range h.latest.CodesPresent() {
		r := h.latest[code]
		out = append(out, overviewRow{
			State:      code,
			Water:      r.Stock(region.Water),
			Energy:     r.Stock(region.Energy),
			Food:       r.Stock(region.Food),
			Tech:       r.Stock(region.Tech),
			GDP:        r.GDPScore,
			Welfare:    r.WelfareScore,
			Population: r.Population,
		})
	}
	return out
}

// volumeRow aggregates executed trade volume for one resource.
type volumeRow struct {
	Resource region.Resource `json:"resource"`
	Volume   int             `json:"volume"`
	Count    int             `json:"count"`
}

// TradeVolumeByResource totals moved amounts per resource across all
// recorded trades.
func (h *History) TradeVolumeByResource() []volumeRow {
	h.mu.RLock()
	defer h.mu.RUnlock()

	volumes := make(map[region.Resource]int)
	counts := make(map[region.Resource]int)
	for _, t := range h.trades {
		for res, amt := range t.Offered {
			volumes[res] += amt
			counts[res]++
		}
		for res, amt := range t.Received {
			volumes[res] += amt
			counts[res]++
		}
	}

	out := make([]volumeRow, 0, len(volumes))
	for _, res := range region.ResourceOrder {
		if counts[res] == 0 {
			continue
		}
		out = append(out, volumeRow{Resource: res, Volume: volumes[res], Count: counts[res]})
	}
	return out
}

// climateRow is one catalog event's trigger count.
type climateRow struct {
	Event string `json:"event"`
	Count int    `json:"count"`
}

// ClimateSummary returns trigger counts per event, most frequent first.
func (h *History) ClimateSummary() []climateRow {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]climateRow, 0, len(h.climate))
	for name, count := range h.climate {
		out = append(out, climateRow{Event: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Event < out[j].Event
	})
	return out
}

// activityRow counts one region's participation on each side of a trade.
type activityRow struct {
	State    string `json:"state"`
	Outgoing int    `json:"outgoing"`
	Incoming int    `json:"incoming"`
}

// StateTradeActivity counts how often each region initiated or supplied a
// trade.
func (h *History) StateTradeActivity() []activityRow {
	h.mu.RLock()
	defer h.mu.RUnlock()

	outgoing := make(map[string]int)
	incoming := make(map[string]int)
	for _, t := range h.trades {
		outgoing[t.From]++
		incoming[t.To]++
	}

	out := make([]activityRow, 0, len(region.Codes))
	for _, code := range region.Codes {
		if outgoing[code] == 0 && incoming[code] == 0 {
			continue
		}
		out = append(out, activityRow{State: code, Outgoing: outgoing[code], Incoming: incoming[code]})
	}
	return out
}
