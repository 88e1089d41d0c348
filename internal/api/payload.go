package api

import (
	"math"
	"sort"

	"github.com/talgya/worldsim/internal/engine"
	"github.com/talgya/worldsim/internal/region"
)

// regionView is the per-region block shared by the broadcast payload and the
// /api/state response.
type regionView struct {
	Name       string                  `json:"name"`
	Resources  map[region.Resource]int `json:"resources"`
	GDP        float64                 `json:"gdp"`
	Welfare    float64                 `json:"welfare"`
	Trust      float64                 `json:"trust"`
	Population int                     `json:"population"`
}

// rankEntry is one row of the GDP leaderboard.
type rankEntry struct {
	Code    string  `json:"code"`
	Name    string  `json:"name"`
	GDP     float64 `json:"gdp"`
	Welfare float64 `json:"welfare"`
}

// worldStats aggregates the ledger for the dashboard header.
type worldStats struct {
	TotalGDP   float64     `json:"total_gdp"`
	MeanGDP    float64     `json:"mean_gdp"`
	Gini       float64     `json:"gini"`
	AvgWelfare float64     `json:"avg_welfare"`
	HighestGDP *rankEntry  `json:"highest_gdp,omitempty"`
	LowestGDP  *rankEntry  `json:"lowest_gdp,omitempty"`
	Ranking    []rankEntry `json:"gdp_ranking"`
}

// regionViews condenses a ledger snapshot into the wire shape, keyed by code.
func regionViews(ledger region.Ledger) map[string]regionView {
	views := make(map[string]regionView, len(ledger))
	for _, code := range ledger.CodesPresent() {
		r := ledger[code]
		views[code] = regionView{
			Name:       r.Name,
			Resources:  r.Resources,
			GDP:        r.GDPScore,
			Welfare:    r.WelfareScore,
			Trust:      r.TrustScore,
			Population: r.Population,
		}
	}
	return views
}

// buildStats computes the aggregate block from a ledger snapshot.
func buildStats(ledger region.Ledger) worldStats {
	codes := ledger.CodesPresent()

	ranking := make([]rankEntry, 0, len(codes))
	gdps := make([]float64, 0, len(codes))
	totalGDP, totalWelfare := 0.0, 0.0
	for _, code := range codes {
		r := ledger[code]
		ranking = append(ranking, rankEntry{
			Code:    code,
			Name:    r.Name,
			GDP:     round1(r.GDPScore),
			Welfare: round1(r.WelfareScore),
		})
		gdps = append(gdps, r.GDPScore)
		totalGDP += r.GDPScore
		totalWelfare += r.WelfareScore
	}
	sort.SliceStable(ranking, func(i, j int) bool { return ranking[i].GDP > ranking[j].GDP })

	stats := worldStats{
		TotalGDP: round2(totalGDP),
		Gini:     round4(engine.Gini(gdps)),
		Ranking:  ranking,
	}
	if n := len(codes); n > 0 {
		stats.MeanGDP = round2(totalGDP / float64(n))
		stats.AvgWelfare = round2(totalWelfare / float64(n))
		stats.HighestGDP = &ranking[0]
		stats.LowestGDP = &ranking[n-1]
	}
	return stats
}

// BuildTickPayload assembles the per-tick push message: the full region map,
// aggregate stats, rolling feeds, and a one-line tick summary.
func BuildTickPayload(w *engine.World, report *engine.TickReport) map[string]any {
	ledger := w.SnapshotLedger()

	messages := make([]string, 0, 10)
	for _, act := range w.RecentActions(10) {
		if act.Proposal != nil && act.Proposal.Reasoning != "" {
			messages = append(messages, region.Names[act.From]+": "+act.Proposal.Reasoning)
		}
	}

	payload := map[string]any{
		"type":           "tick",
		"tick":           report.Tick,
		"regions":        regionViews(ledger),
		"stats":          buildStats(ledger),
		"trades":         w.RecentTrades(10),
		"climate_events": w.ClimateLog(15),
		"interventions":  report.Interventions,
		"tick_summary": map[string]int{
			"trades_count":    len(report.TradesExecuted),
			"advisory_count":  len(report.AdvisoryActions),
			"climate_count":   len(report.ClimateEvents),
			"migration_count": len(report.Migrations),
		},
	}
	payload["governor_messages"] = messages
	return payload
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
