package advisor

import (
	"fmt"

	"github.com/talgya/worldsim/internal/finops"
	"github.com/talgya/worldsim/internal/region"
)

const heuristicPolicyDuration = 100

var policyTemplates = map[region.Resource]struct {
	name      string
	effectKey string
}{
	region.Water:  {"Interstate Water Sharing Accord", "water_generation"},
	region.Energy: {"National Grid Modernization Act", "energy_generation"},
	region.Food:   {"Food Security and Grain Reserve Act", "food_generation"},
	region.Tech:   {"Digital Infrastructure Mission", "tech_generation"},
}

// Heuristic is a deterministic Advisor built on plain rules. It is the
// default when no LLM is configured and never returns an error.
type Heuristic struct {
	code     string
	maxTrade int
}

// NewHeuristic returns a rule-based advisor for the given region code.
func NewHeuristic(code string, maxTrade int) *Heuristic {
	return &Heuristic{code: code, maxTrade: maxTrade}
}

// ProposeTrade offers half of the region's largest surplus in exchange for
// its top-priority deficit resource. No surplus or no deficit means no deal.
func (h *Heuristic) ProposeTrade(report *finops.Report, counterparty string,
	counterpartySurplus map[region.Resource]finops.Surplus) (*TradeProposal, error) {

	needed, def, ok := report.TopDeficit()
	if !ok {
		return nil, nil
	}

	available := counterpartySurplus[needed].AmountAvailable
	request := minInt(h.maxTrade, minInt(available, def.AmountNeeded))
	if request <= 0 {
		return nil, nil
	}

	offerRes, offerPool, ok := report.LargestSurplus()
	if !ok {
		return nil, nil
	}
	offer := minInt(h.maxTrade, offerPool/2)
	if offer <= 0 {
		return nil, nil
	}

	return &TradeProposal{
		Offering:   map[region.Resource]int{offerRes: offer},
		Requesting: map[region.Resource]int{needed: request},
		Reasoning: fmt.Sprintf("%s offers %d %s to %s for %d %s",
			h.code, offer, offerRes, counterparty, request, needed),
	}, nil
}

// ProposePolicy motions for relief on the region's top deficit, or a
// balanced-growth resolution when the books are clean.
func (h *Heuristic) ProposePolicy(report *finops.Report, summary NationalSummary) (*PolicyProposal, error) {
	name := region.Names[h.code]
	if name == "" {
		name = h.code
	}

	res, _, ok := report.TopDeficit()
	if !ok {
		return &PolicyProposal{
			Proposer:   h.code,
			PolicyName: "Balanced Growth Resolution",
			Speech: fmt.Sprintf("%s stands prosperous and urges this house to invest in shared growth.",
				name),
			Effects:       map[string]float64{"gdp_growth": 0.05},
			DurationTicks: heuristicPolicyDuration,
		}, nil
	}

	tpl := policyTemplates[res]
	return &PolicyProposal{
		Proposer:   h.code,
		PolicyName: tpl.name,
		Speech: fmt.Sprintf("%s faces a critical %s shortfall. This house must act before our people suffer.",
			name, res),
		Effects:       map[string]float64{tpl.effectKey: 0.10},
		DurationTicks: heuristicPolicyDuration,
	}, nil
}

// Vote supports motions the region proposed, motions touching its top
// deficit, and any motion at all when the region is struggling.
func (h *Heuristic) Vote(report *finops.Report, proposal *PolicyProposal) (*Ballot, error) {
	if proposal == nil {
		return nil, fmt.Errorf("advisor: nil proposal")
	}

	if proposal.Proposer == h.code {
		return &Ballot{Vote: "YES", Reasoning: "own motion"}, nil
	}

	if res, _, ok := report.TopDeficit(); ok {
		if tpl, known := policyTemplates[res]; known {
			if _, touches := proposal.Effects[tpl.effectKey]; touches {
				return &Ballot{
					Vote:      "YES",
					Reasoning: fmt.Sprintf("addresses our %s deficit", res),
				}, nil
			}
		}
	}

	if report.HealthScore < 50 {
		return &Ballot{Vote: "YES", Reasoning: "any relief is welcome"}, nil
	}

	return &Ballot{Vote: "NO", Reasoning: "no benefit to our state"}, nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
