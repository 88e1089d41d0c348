package advisor

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/talgya/worldsim/internal/finops"
	"github.com/talgya/worldsim/internal/region"
)

func deficitReport() *finops.Report {
	return &finops.Report{
		Region:         "RJ",
		Tick:           3,
		HealthScore:    55,
		NeedsAttention: true,
		Deficits: map[region.Resource]finops.Deficit{
			region.Water: {PriorityScore: 0.8, AmountNeeded: 3000},
		},
		Surpluses: map[region.Resource]finops.Surplus{
			region.Food: {AmountAvailable: 4500},
		},
	}
}

func TestHeuristicProposeTrade(t *testing.T) {
	h := NewHeuristic("RJ", 2000)
	partner := map[region.Resource]finops.Surplus{
		region.Water: {AmountAvailable: 5000},
	}

	proposal, err := h.ProposeTrade(deficitReport(), "PB", partner)
	if err != nil {
		t.Fatalf("ProposeTrade: %v", err)
	}
	if !proposal.Actionable() {
		t.Fatal("expected an actionable proposal")
	}
	if got := proposal.Requesting[region.Water]; got != 2000 {
		t.Errorf("requesting water = %d, want 2000", got)
	}
	if got := proposal.Offering[region.Food]; got != 2000 {
		t.Errorf("offering food = %d, want 2000", got)
	}
}

func TestHeuristicNoTradeWithoutCounterpartySurplus(t *testing.T) {
	h := NewHeuristic("RJ", 2000)

	proposal, err := h.ProposeTrade(deficitReport(), "PB", nil)
	if err != nil {
		t.Fatalf("ProposeTrade: %v", err)
	}
	if proposal != nil {
		t.Errorf("expected no proposal, got %+v", proposal)
	}
}

func TestHeuristicNoTradeWithoutOwnSurplus(t *testing.T) {
	h := NewHeuristic("RJ", 2000)
	report := deficitReport()
	report.Surpluses = nil
	partner := map[region.Resource]finops.Surplus{
		region.Water: {AmountAvailable: 5000},
	}

	proposal, err := h.ProposeTrade(report, "PB", partner)
	if err != nil {
		t.Fatalf("ProposeTrade: %v", err)
	}
	if proposal != nil {
		t.Errorf("region with nothing to offer should not propose, got %+v", proposal)
	}
}

func TestHeuristicPolicyTargetsTopDeficit(t *testing.T) {
	h := NewHeuristic("RJ", 2000)

	proposal, err := h.ProposePolicy(deficitReport(), nil)
	if err != nil {
		t.Fatalf("ProposePolicy: %v", err)
	}
	if proposal.PolicyName != "Interstate Water Sharing Accord" {
		t.Errorf("policy = %q, want water accord", proposal.PolicyName)
	}
	if proposal.Proposer != "RJ" {
		t.Errorf("proposer = %q, want RJ", proposal.Proposer)
	}
	if proposal.Effects["water_generation"] != 0.10 {
		t.Errorf("effects = %v, want water_generation 0.10", proposal.Effects)
	}
	if proposal.DurationTicks != 100 {
		t.Errorf("duration = %d, want 100", proposal.DurationTicks)
	}
}

func TestHeuristicPolicyBalancedGrowth(t *testing.T) {
	h := NewHeuristic("PB", 2000)
	report := &finops.Report{Region: "PB", HealthScore: 90}

	proposal, err := h.ProposePolicy(report, nil)
	if err != nil {
		t.Fatalf("ProposePolicy: %v", err)
	}
	if proposal.PolicyName != "Balanced Growth Resolution" {
		t.Errorf("policy = %q, want balanced growth", proposal.PolicyName)
	}
}

func TestHeuristicVote(t *testing.T) {
	h := NewHeuristic("RJ", 2000)

	cases := []struct {
		name     string
		report   *finops.Report
		proposal *PolicyProposal
		want     string
	}{
		{
			name:     "own motion",
			report:   deficitReport(),
			proposal: &PolicyProposal{Proposer: "RJ", PolicyName: "Anything"},
			want:     "YES",
		},
		{
			name:   "addresses our deficit",
			report: deficitReport(),
			proposal: &PolicyProposal{
				Proposer:   "PB",
				PolicyName: "Interstate Water Sharing Accord",
				Effects:    map[string]float64{"water_generation": 0.10},
			},
			want: "YES",
		},
		{
			name:   "struggling region backs anything",
			report: &finops.Report{Region: "RJ", HealthScore: 30},
			proposal: &PolicyProposal{
				Proposer:   "PB",
				PolicyName: "Digital Infrastructure Mission",
				Effects:    map[string]float64{"tech_generation": 0.10},
			},
			want: "YES",
		},
		{
			name:   "healthy and unrelated",
			report: &finops.Report{Region: "RJ", HealthScore: 85},
			proposal: &PolicyProposal{
				Proposer:   "PB",
				PolicyName: "Digital Infrastructure Mission",
				Effects:    map[string]float64{"tech_generation": 0.10},
			},
			want: "NO",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ballot, err := h.Vote(tc.report, tc.proposal)
			if err != nil {
				t.Fatalf("Vote: %v", err)
			}
			if ballot.Vote != tc.want {
				t.Errorf("vote = %q, want %q", ballot.Vote, tc.want)
			}
		})
	}
}

func TestExtractJSON(t *testing.T) {
	raw, err := extractJSON("Sure, here is the trade:\n```json\n{\"vote\": \"YES\"}\n```\n")
	if err != nil {
		t.Fatalf("extractJSON: %v", err)
	}
	if string(raw) != `{"vote": "YES"}` {
		t.Errorf("extracted %q", raw)
	}

	if _, err := extractJSON("no json here"); err == nil {
		t.Error("expected error for response without JSON")
	}
}

func TestClampAmounts(t *testing.T) {
	in := map[region.Resource]int{
		region.Water:  5000,
		region.Energy: 0,
		region.Food:   -3,
		region.Tech:   150,
	}
	out := clampAmounts(in, 2000)

	if out[region.Water] != 2000 {
		t.Errorf("water = %d, want capped 2000", out[region.Water])
	}
	if out[region.Tech] != 150 {
		t.Errorf("tech = %d, want 150", out[region.Tech])
	}
	if _, ok := out[region.Energy]; ok {
		t.Error("zero amounts should be dropped")
	}
	if _, ok := out[region.Food]; ok {
		t.Error("negative amounts should be dropped")
	}
}

func TestTradeSchemaRejectsUnknownResource(t *testing.T) {
	var bad any
	_ = json.Unmarshal([]byte(`{"offering":{"gold":5},"requesting":{"water":10}}`), &bad)
	if err := tradeSchema.Validate(bad); err == nil {
		t.Error("expected schema rejection for unknown resource")
	}

	var good any
	_ = json.Unmarshal([]byte(`{"offering":{"food":200},"requesting":{"water":100},"reasoning":"barter"}`), &good)
	if err := tradeSchema.Validate(good); err != nil {
		t.Errorf("valid proposal rejected: %v", err)
	}
}

func TestLLMUnavailableWithoutClient(t *testing.T) {
	adv := NewLLM(nil, "RJ", 2000)

	if _, err := adv.ProposeTrade(deficitReport(), "PB", nil); !errors.Is(err, ErrUnavailable) {
		t.Errorf("ProposeTrade err = %v, want ErrUnavailable", err)
	}
	if _, err := adv.ProposePolicy(deficitReport(), nil); !errors.Is(err, ErrUnavailable) {
		t.Errorf("ProposePolicy err = %v, want ErrUnavailable", err)
	}
	if _, err := adv.Vote(deficitReport(), &PolicyProposal{PolicyName: "X"}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Vote err = %v, want ErrUnavailable", err)
	}
}
