// Package finops performs per-region financial and resource analysis.
// Each tick every region gets a fresh Report; the tick engine caches the
// reports and feeds them to negotiation, trade matching, and the assembly.
package finops

import (
	"fmt"
	"math"

	"github.com/talgya/worldsim/internal/region"
)

// ActionTrade marks a recommendation the matching step may execute.
const ActionTrade = "TRADE"

// Deficit describes a resource holding below the configured floor.
type Deficit struct {
	PriorityScore float64 `json:"priority_score"`
	AmountNeeded  int     `json:"amount_needed"`
}

// Surplus describes stock held above the comfortable reserve line.
type Surplus struct {
	AmountAvailable int `json:"amount_available"`
}

// TradeRecommendation is a concrete barter order: offer one resource,
// request another. The matching step fills at most one partner per order.
type TradeRecommendation struct {
	Action          string          `json:"action"`
	OfferResource   region.Resource `json:"offer_resource"`
	OfferAmount     int             `json:"offer_amount"`
	RequestResource region.Resource `json:"request_resource"`
	RequestAmount   int             `json:"request_amount"`
	Rationale       string          `json:"rationale"`
}

// Report is the fixed analysis result consumed by the tick engine.
type Report struct {
	Region          string                      `json:"region"`
	Tick            int                         `json:"tick"`
	NeedsAttention  bool                        `json:"needs_attention"`
	HealthScore     float64                     `json:"health_score"`
	Deficits        map[region.Resource]Deficit `json:"deficits"`
	Surpluses       map[region.Resource]Surplus `json:"surpluses"`
	Recommendations []TradeRecommendation       `json:"trade_recommendations"`
}

// TopDeficit returns the deficit with the highest priority score. Ties keep
// the first resource in canonical order so results are reproducible.
func (r *Report) TopDeficit() (region.Resource, Deficit, bool) {
	var (
		best    region.Resource
		bestDef Deficit
		found   bool
	)
	for _, res := range region.ResourceOrder {
		def, ok := r.Deficits[res]
		if !ok {
			continue
		}
		if !found || def.PriorityScore > bestDef.PriorityScore {
			best, bestDef, found = res, def, true
		}
	}
	return best, bestDef, found
}

// SurplusAvailable reports how much of res the region can part with.
func (r *Report) SurplusAvailable(res region.Resource) int {
	return r.Surpluses[res].AmountAvailable
}

// LargestSurplus returns the surplus with the most available stock. Ties keep
// the first resource in canonical order.
func (r *Report) LargestSurplus() (region.Resource, int, bool) {
	var (
		best   region.Resource
		amount int
		found  bool
	)
	for _, res := range region.ResourceOrder {
		sur, ok := r.Surpluses[res]
		if !ok {
			continue
		}
		if !found || sur.AmountAvailable > amount {
			best, amount, found = res, sur.AmountAvailable, true
		}
	}
	return best, amount, found
}

// Analyst builds Reports from plain threshold rules. Stock below
// deficitThreshold of capacity is a deficit; stock above surplusThreshold
// of capacity has the excess marked tradable.
type Analyst struct {
	deficitThreshold float64
	surplusThreshold float64
	maxTrade         int
	capacity         map[string]int
}

// NewAnalyst wires an Analyst from resolved configuration values.
// capacity maps resource names to their normalization ceiling.
func NewAnalyst(deficitThreshold, surplusThreshold float64, maxTrade int, capacity map[string]int) *Analyst {
	return &Analyst{
		deficitThreshold: deficitThreshold,
		surplusThreshold: surplusThreshold,
		maxTrade:         maxTrade,
		capacity:         capacity,
	}
}

// Analyze produces the region's report for the given tick.
func (a *Analyst) Analyze(r *region.Region, tick int) (*Report, error) {
	if r == nil {
		return nil, fmt.Errorf("finops: nil region")
	}

	report := &Report{
		Region:    r.Code,
		Tick:      tick,
		Deficits:  make(map[region.Resource]Deficit),
		Surpluses: make(map[region.Resource]Surplus),
	}

	var healthSum float64
	var counted int

	for _, res := range region.ResourceOrder {
		capacity, ok := a.capacity[string(res)]
		if !ok || capacity <= 0 {
			continue
		}
		counted++

		stock := r.Stock(res)
		ratio := float64(stock) / float64(capacity)
		healthSum += math.Min(1, ratio)

		flow := r.GenerationRates[res] - r.ConsumptionRates[res]

		if ratio < a.deficitThreshold {
			target := int(float64(capacity) * a.deficitThreshold * 2)
			report.Deficits[res] = Deficit{
				PriorityScore: a.priority(stock, capacity, flow),
				AmountNeeded:  target - stock,
			}
		} else if ratio > a.surplusThreshold {
			reserve := int(float64(capacity) * a.surplusThreshold)
			report.Surpluses[res] = Surplus{AmountAvailable: stock - reserve}
		}
	}

	if counted > 0 {
		report.HealthScore = round1(healthSum / float64(counted) * 100)
	}
	report.NeedsAttention = len(report.Deficits) > 0
	report.Recommendations = a.recommend(report)

	return report, nil
}

// priority scores a shortfall in [0,2]: how far below the floor the stock
// sits, plus extra urgency when net flow is draining it toward zero.
func (a *Analyst) priority(stock, capacity, flow int) float64 {
	ratio := float64(stock) / float64(capacity)
	score := 1 - ratio/a.deficitThreshold

	if flow < 0 {
		horizon := 0.0
		if stock > 0 {
			horizon = float64(stock) / float64(-flow)
		}
		if horizon < 20 {
			score += (20 - horizon) / 20
		}
	}

	return math.Round(math.Min(2, score)*100) / 100
}

// recommend emits one barter order per deficit, offering half of the
// largest surplus. No surplus means nothing to offer and no order.
func (a *Analyst) recommend(report *Report) []TradeRecommendation {
	offerRes, offerPool, ok := report.LargestSurplus()
	if !ok {
		return nil
	}

	var recs []TradeRecommendation
	for _, res := range region.ResourceOrder {
		def, isDef := report.Deficits[res]
		if !isDef {
			continue
		}

		offerAmt := minInt(a.maxTrade, offerPool/2)
		if offerAmt <= 0 {
			continue
		}
		requestAmt := minInt(a.maxTrade, def.AmountNeeded)
		if requestAmt <= 0 {
			continue
		}

		recs = append(recs, TradeRecommendation{
			Action:          ActionTrade,
			OfferResource:   offerRes,
			OfferAmount:     offerAmt,
			RequestResource: res,
			RequestAmount:   requestAmt,
			Rationale: fmt.Sprintf("%s short %d units, offering surplus %s",
				res, def.AmountNeeded, offerRes),
		})
	}
	return recs
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
