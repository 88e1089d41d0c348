// Package advisor holds the decision capability behind each region's
// government: trade negotiation, federal policy motions, and assembly votes.
// Two implementations exist, a deterministic Heuristic and an LLM-backed one;
// the tick engine treats any error as "no action this tick".
package advisor

import (
	"errors"

	"github.com/talgya/worldsim/internal/finops"
	"github.com/talgya/worldsim/internal/region"
)

// ErrUnavailable signals the capability cannot serve requests at all,
// for example when no API key is configured.
var ErrUnavailable = errors.New("advisor unavailable")

// TradeProposal is a bilateral barter offer. Nil or an empty map on either
// side means no deal; callers accept only proposals with both sides set.
// A positive DurationTicks asks for a standing treaty exchanging those
// amounts every tick instead of a one-shot trade.
type TradeProposal struct {
	Offering      map[region.Resource]int `json:"offering"`
	Requesting    map[region.Resource]int `json:"requesting"`
	DurationTicks int                     `json:"duration_ticks,omitempty"`
	Reasoning     string                  `json:"reasoning,omitempty"`
}

// Actionable reports whether both sides of the barter are nonempty.
func (p *TradeProposal) Actionable() bool {
	return p != nil && len(p.Offering) > 0 && len(p.Requesting) > 0
}

// PolicyProposal is a federal motion put before the assembly.
type PolicyProposal struct {
	Proposer      string             `json:"proposer"`
	PolicyName    string             `json:"policy_name"`
	Speech        string             `json:"speech"`
	Effects       map[string]float64 `json:"effects,omitempty"`
	DurationTicks int                `json:"duration_ticks,omitempty"`
}

// Ballot is one region's vote on a motion. Vote values other than YES and
// NO are counted as YES by the assembly.
type Ballot struct {
	Vote      string `json:"vote"`
	Reasoning string `json:"reasoning,omitempty"`
}

// RegionDigest is one line of the national summary shown to proposers
// and voters.
type RegionDigest struct {
	Name      string            `json:"name"`
	GDP       float64           `json:"gdp"`
	Health    float64           `json:"health"`
	Deficits  []region.Resource `json:"deficits"`
	Surpluses []region.Resource `json:"surpluses"`
}

// NationalSummary maps region codes to their digests.
type NationalSummary map[string]RegionDigest

// Advisor makes the three kinds of decision a region's government faces.
// A nil proposal with a nil error means "nothing to propose".
type Advisor interface {
	ProposeTrade(report *finops.Report, counterparty string,
		counterpartySurplus map[region.Resource]finops.Surplus) (*TradeProposal, error)
	ProposePolicy(report *finops.Report, summary NationalSummary) (*PolicyProposal, error)
	Vote(report *finops.Report, proposal *PolicyProposal) (*Ballot, error)
}
