package engine

import (
	"math"
	"sort"

	"github.com/talgya/worldsim/internal/region"
)

// stepRewards recomputes each region's GDP, welfare, and unrest from current
// stocks, then the national reward with its inequality penalty.
//
// GDP follows a resource index scaled by workforce efficiency per million
// people. Welfare weighs food and water sufficiency at 40 points each and
// calm at 20; sufficiency is judged against the configured resource capacity
// (30% of food capacity, 20% of water capacity counts as fully adequate).
// Unrest drifts up below 40 welfare and decays above 70.
func (w *World) stepRewards(report *TickReport) {
	codes := w.Ledger.CodesPresent()

	foodAdequate := float64(w.cfg.ResourceMax["food"]) * 0.3
	waterAdequate := float64(w.cfg.ResourceMax["water"]) * 0.2

	for _, code := range codes {
		r := w.Ledger[code]

		popMillions := float64(r.Population) / 1e6
		if popMillions < 1 {
			popMillions = 1
		}
		resourceIndex := float64(r.Stock(region.Tech))*0.004 +
			float64(r.Stock(region.Energy))*0.002 +
			float64(r.Stock(region.Food))*0.001 +
			float64(r.Stock(region.Water))*0.001
		r.GDPScore = round1(clampScore(resourceIndex / popMillions * 10 * r.Demographics.WorkforceEfficiency))

		foodRatio := adequacy(r.Stock(region.Food), foodAdequate)
		waterRatio := adequacy(r.Stock(region.Water), waterAdequate)
		welfare := foodRatio*40 + waterRatio*40 + (1-r.Demographics.UnrestLevel)*20
		r.WelfareScore = round1(clampScore(welfare))

		switch {
		case r.WelfareScore < 40:
			r.Demographics.UnrestLevel = math.Min(1, r.Demographics.UnrestLevel+0.02)
		case r.WelfareScore > 70:
			r.Demographics.UnrestLevel = math.Max(0, r.Demographics.UnrestLevel-0.01)
		}
	}

	total := 0.0
	for _, code := range codes {
		total += w.Ledger[code].GDPScore
	}
	mean := 0.0
	if len(codes) > 0 {
		mean = total / float64(len(codes))
	}
	deviation := 0.0
	for _, code := range codes {
		deviation += math.Abs(w.Ledger[code].GDPScore - mean)
	}
	reward := total - w.cfg.RewardLambda*deviation

	report.Rewards = &RewardSummary{
		GlobalGDP:       round1(total),
		MeanGDP:         round1(mean),
		Deviation:       round1(deviation),
		GlobalReward:    round1(reward),
		GiniCoefficient: round4(deviation / (total + 1e-6)),
	}
}

// Gini computes the standard sorted-population Gini coefficient over values.
// The analytics layer uses this for national inequality; the per-tick reward
// summary keeps the simpler deviation-based index.
func Gini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	total := 0.0
	weighted := 0.0
	for i, v := range sorted {
		total += v
		weighted += float64(i+1) * v
	}
	if total <= 0 {
		return 0
	}
	return 2*weighted/(float64(n)*total) - float64(n+1)/float64(n)
}

// adequacy is the fraction of the needed stock on hand, capped at 1. An
// unconfigured capacity never starves anyone.
func adequacy(stock int, needed float64) float64 {
	if needed <= 0 {
		return 1
	}
	return math.Min(1, float64(stock)/needed)
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
