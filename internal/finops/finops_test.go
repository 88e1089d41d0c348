package finops

import (
	"testing"

	"github.com/talgya/worldsim/internal/region"
)

func testAnalyst() *Analyst {
	return NewAnalyst(0.15, 0.5, 2000, map[string]int{
		"water":  15000,
		"energy": 15000,
		"food":   15000,
		"tech":   12000,
	})
}

func testRegion(stocks map[region.Resource]int) *region.Region {
	r := &region.Region{
		Code:             "RJ",
		Name:             "Rajasthan",
		Resources:        make(map[region.Resource]int),
		GenerationRates:  make(map[region.Resource]int),
		ConsumptionRates: make(map[region.Resource]int),
	}
	for res, v := range stocks {
		r.Resources[res] = v
	}
	return r
}

func TestAnalyzeFlagsDeficit(t *testing.T) {
	a := testAnalyst()
	r := testRegion(map[region.Resource]int{
		region.Water: 1500, region.Energy: 5000,
		region.Food: 5000, region.Tech: 5000,
	})

	report, err := a.Analyze(r, 1)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	def, ok := report.Deficits[region.Water]
	if !ok {
		t.Fatalf("expected water deficit, got %v", report.Deficits)
	}
	if def.AmountNeeded != 3000 {
		t.Errorf("amount needed = %d, want 3000", def.AmountNeeded)
	}
	if !report.NeedsAttention {
		t.Error("region with a deficit should need attention")
	}
}

func TestAnalyzeFlagsSurplus(t *testing.T) {
	a := testAnalyst()
	r := testRegion(map[region.Resource]int{
		region.Water: 5000, region.Energy: 5000,
		region.Food: 12000, region.Tech: 5000,
	})

	report, err := a.Analyze(r, 1)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	sur, ok := report.Surpluses[region.Food]
	if !ok {
		t.Fatalf("expected food surplus, got %v", report.Surpluses)
	}
	if sur.AmountAvailable != 4500 {
		t.Errorf("amount available = %d, want 4500", sur.AmountAvailable)
	}
	if report.NeedsAttention {
		t.Error("region with no deficits should not need attention")
	}
}

func TestHealthScoreFullStocks(t *testing.T) {
	a := testAnalyst()
	r := testRegion(map[region.Resource]int{
		region.Water: 15000, region.Energy: 15000,
		region.Food: 15000, region.Tech: 12000,
	})

	report, err := a.Analyze(r, 1)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if report.HealthScore != 100.0 {
		t.Errorf("health = %v, want 100.0", report.HealthScore)
	}
}

func TestTopDeficitPicksHighestPriority(t *testing.T) {
	a := testAnalyst()
	r := testRegion(map[region.Resource]int{
		region.Water: 1500, region.Energy: 300,
		region.Food: 5000, region.Tech: 5000,
	})

	report, err := a.Analyze(r, 1)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	res, def, ok := report.TopDeficit()
	if !ok {
		t.Fatal("expected a top deficit")
	}
	if res != region.Energy {
		t.Errorf("top deficit = %s, want energy", res)
	}
	water := report.Deficits[region.Water]
	if def.PriorityScore <= water.PriorityScore {
		t.Errorf("energy priority %v should exceed water priority %v",
			def.PriorityScore, water.PriorityScore)
	}
}

func TestDrainRaisesPriority(t *testing.T) {
	a := testAnalyst()

	steady := testRegion(map[region.Resource]int{region.Water: 1500})
	draining := testRegion(map[region.Resource]int{region.Water: 1500})
	draining.ConsumptionRates[region.Water] = 300

	steadyReport, err := a.Analyze(steady, 1)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	drainReport, err := a.Analyze(draining, 1)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	sp := steadyReport.Deficits[region.Water].PriorityScore
	dp := drainReport.Deficits[region.Water].PriorityScore
	if dp <= sp {
		t.Errorf("draining stock priority %v should exceed steady priority %v", dp, sp)
	}
}

func TestRecommendationBartersSurplusForDeficit(t *testing.T) {
	a := testAnalyst()
	r := testRegion(map[region.Resource]int{
		region.Water: 1500, region.Energy: 5000,
		region.Food: 12000, region.Tech: 5000,
	})

	report, err := a.Analyze(r, 1)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if len(report.Recommendations) != 1 {
		t.Fatalf("got %d recommendations, want 1", len(report.Recommendations))
	}
	rec := report.Recommendations[0]
	if rec.Action != ActionTrade {
		t.Errorf("action = %q, want %q", rec.Action, ActionTrade)
	}
	if rec.OfferResource != region.Food || rec.OfferAmount != 2000 {
		t.Errorf("offer = %s x%d, want food x2000", rec.OfferResource, rec.OfferAmount)
	}
	if rec.RequestResource != region.Water || rec.RequestAmount != 2000 {
		t.Errorf("request = %s x%d, want water x2000", rec.RequestResource, rec.RequestAmount)
	}
}

func TestNoRecommendationsWithoutSurplus(t *testing.T) {
	a := testAnalyst()
	r := testRegion(map[region.Resource]int{
		region.Water: 1000, region.Energy: 1000,
		region.Food: 1000, region.Tech: 1000,
	})

	report, err := a.Analyze(r, 1)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(report.Recommendations) != 0 {
		t.Errorf("got %d recommendations, want none", len(report.Recommendations))
	}
}

func TestAnalyzeNilRegion(t *testing.T) {
	if _, err := testAnalyst().Analyze(nil, 1); err == nil {
		t.Fatal("expected error for nil region")
	}
}
