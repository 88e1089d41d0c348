// Package assembly runs the Federal Assembly: at a fixed tick cadence every
// region's advisor puts one motion forward, the first three motions go to a
// floor vote, and passed resolutions join a durable record.
package assembly

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/talgya/worldsim/internal/advisor"
	"github.com/talgya/worldsim/internal/finops"
	"github.com/talgya/worldsim/internal/region"
)

// ballotMotions caps how many motions reach the floor per meeting.
const ballotMotions = 3

// Resolution is a passed motion and the tick it passed.
type Resolution struct {
	Name       string                  `json:"name"`
	Proposal   *advisor.PolicyProposal `json:"proposal"`
	TickPassed int                     `json:"tick_passed"`
}

// InForce reports whether the resolution still applies at tick. Motions
// that declared no duration fall back to defaultDuration.
func (r Resolution) InForce(tick, defaultDuration int) bool {
	duration := defaultDuration
	if r.Proposal != nil && r.Proposal.DurationTicks > 0 {
		duration = r.Proposal.DurationTicks
	}
	return tick-r.TickPassed < duration
}

// TranscriptEntry is one utterance in the meeting record.
type TranscriptEntry struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// VoteRecord tallies the floor vote on one motion.
type VoteRecord struct {
	PolicyName string                  `json:"policy_name"`
	Proposer   string                  `json:"proposer"`
	YesVotes   []string                `json:"yes_votes"`
	NoVotes    []string                `json:"no_votes"`
	YesCount   int                     `json:"yes_count"`
	NoCount    int                     `json:"no_count"`
	Ratio      float64                 `json:"ratio"`
	Passed     bool                    `json:"passed"`
	Proposal   *advisor.PolicyProposal `json:"proposal"`
}

// MeetingResult summarizes one convened assembly.
type MeetingResult struct {
	MeetingID         string            `json:"meeting_id"`
	Tick              int               `json:"tick"`
	ProposalsCount    int               `json:"proposals_count"`
	VotingResults     []VoteRecord      `json:"voting_results"`
	PassedResolutions []string          `json:"passed_resolutions"`
	Transcript        []TranscriptEntry `json:"transcript"`
}

// Parliament convenes assemblies and keeps the durable resolution list.
type Parliament struct {
	majorityFraction float64
	defaultDuration  int
	rankProposals    bool

	meetingCount int
	resolutions  []Resolution
	history      []*MeetingResult
}

// New builds a Parliament. rankProposals switches ballot selection from
// submission order to declared-impact order.
func New(majorityFraction float64, defaultDuration int, rankProposals bool) *Parliament {
	return &Parliament{
		majorityFraction: majorityFraction,
		defaultDuration:  defaultDuration,
		rankProposals:    rankProposals,
	}
}

// Convene runs one full meeting: collect motions, pick the ballot, vote.
// Regions without an advisor or a report sit the meeting out.
func (p *Parliament) Convene(advisors map[string]advisor.Advisor,
	reports map[string]*finops.Report, ledger region.Ledger, tick int) *MeetingResult {

	p.meetingCount++
	meetingID := fmt.Sprintf("meeting_%03d", p.meetingCount)
	slog.Info("federal assembly convened", "meeting", meetingID, "tick", tick)

	summary := BuildNationalSummary(ledger, reports)

	// Phase 1: one motion per region, canonical order.
	var proposals []*advisor.PolicyProposal
	var transcript []TranscriptEntry

	for _, code := range region.Codes {
		adv, hasAdvisor := advisors[code]
		report, hasReport := reports[code]
		if !hasAdvisor || !hasReport {
			continue
		}

		proposal, err := adv.ProposePolicy(report, summary)
		if err != nil {
			slog.Warn("assembly proposal failed", "region", code, "error", err)
			continue
		}
		if proposal == nil {
			continue
		}
		if proposal.Proposer == "" {
			proposal.Proposer = code
		}

		speech := proposal.Speech
		if speech == "" {
			speech = "No speech provided."
		}
		proposals = append(proposals, proposal)
		transcript = append(transcript, TranscriptEntry{
			Speaker: speakerName(code),
			Text:    speech,
		})
	}

	// Phase 2: ballot selection.
	ballot := proposals
	if p.rankProposals {
		ballot = rankByImpact(proposals)
	}
	if len(ballot) > ballotMotions {
		ballot = ballot[:ballotMotions]
	}

	// Phase 3: floor vote on each motion.
	var votingResults []VoteRecord
	var passedNames []string

	for _, motion := range ballot {
		var yes, no []string

		for _, code := range region.Codes {
			adv, hasAdvisor := advisors[code]
			report, hasReport := reports[code]
			if !hasAdvisor || !hasReport {
				continue
			}

			raw := "YES"
			reasoning := ""
			cast, err := adv.Vote(report, motion)
			if err != nil {
				slog.Warn("assembly vote failed", "region", code, "error", err)
			} else if cast != nil {
				raw = strings.ToUpper(strings.TrimSpace(cast.Vote))
				reasoning = cast.Reasoning
			}

			// Anything that is not an explicit NO counts as YES.
			if raw == "NO" {
				no = append(no, code)
			} else {
				yes = append(yes, code)
			}
			transcript = append(transcript, TranscriptEntry{
				Speaker: speakerName(code),
				Text:    fmt.Sprintf("VOTE %s: %s", raw, reasoning),
			})
		}

		total := len(yes) + len(no)
		ratio := 0.0
		if total > 0 {
			ratio = float64(len(yes)) / float64(total)
		}
		passed := ratio >= p.majorityFraction

		votingResults = append(votingResults, VoteRecord{
			PolicyName: motion.PolicyName,
			Proposer:   motion.Proposer,
			YesVotes:   yes,
			NoVotes:    no,
			YesCount:   len(yes),
			NoCount:    len(no),
			Ratio:      math.Round(ratio*100) / 100,
			Passed:     passed,
			Proposal:   motion,
		})

		if passed {
			passedNames = append(passedNames, motion.PolicyName)
			p.resolutions = append(p.resolutions, Resolution{
				Name:       motion.PolicyName,
				Proposal:   motion,
				TickPassed: tick,
			})
			slog.Info("resolution passed",
				"policy", motion.PolicyName,
				"proposer", motion.Proposer,
				"yes", len(yes), "no", len(no),
			)
		}
	}

	result := &MeetingResult{
		MeetingID:         meetingID,
		Tick:              tick,
		ProposalsCount:    len(proposals),
		VotingResults:     votingResults,
		PassedResolutions: passedNames,
		Transcript:        transcript,
	}
	p.history = append(p.history, result)

	slog.Info("assembly concluded",
		"meeting", meetingID,
		"motions", len(ballot),
		"passed", len(passedNames),
	)
	return result
}

// Resolutions returns a copy of every resolution ever passed.
func (p *Parliament) Resolutions() []Resolution {
	out := make([]Resolution, len(p.resolutions))
	copy(out, p.resolutions)
	return out
}

// ActiveResolutions returns the resolutions still in force at tick.
func (p *Parliament) ActiveResolutions(tick int) []Resolution {
	var active []Resolution
	for _, r := range p.resolutions {
		if r.InForce(tick, p.defaultDuration) {
			active = append(active, r)
		}
	}
	return active
}

// PassedNames lists every passed resolution name in passage order.
func (p *Parliament) PassedNames() []string {
	names := make([]string, len(p.resolutions))
	for i, r := range p.resolutions {
		names[i] = r.Name
	}
	return names
}

// MeetingCount reports how many assemblies have convened.
func (p *Parliament) MeetingCount() int {
	return p.meetingCount
}

// History returns the recorded meetings, oldest first.
func (p *Parliament) History() []*MeetingResult {
	return p.history
}

// Restore rehydrates parliament state from persistence.
func (p *Parliament) Restore(resolutions []Resolution, meetingCount int) {
	p.resolutions = resolutions
	p.meetingCount = meetingCount
}

// BuildNationalSummary condenses the ledger and reports into the digest
// every proposer and voter sees.
func BuildNationalSummary(ledger region.Ledger, reports map[string]*finops.Report) advisor.NationalSummary {
	summary := make(advisor.NationalSummary, len(reports))
	for _, code := range region.Codes {
		report, ok := reports[code]
		if !ok {
			continue
		}

		digest := advisor.RegionDigest{
			Name:   region.Names[code],
			Health: report.HealthScore,
		}
		if r, ok := ledger[code]; ok {
			digest.GDP = r.GDPScore
			digest.Name = r.Name
		}
		for _, res := range region.ResourceOrder {
			if _, isDef := report.Deficits[res]; isDef {
				digest.Deficits = append(digest.Deficits, res)
			}
			if _, isSur := report.Surpluses[res]; isSur {
				digest.Surpluses = append(digest.Surpluses, res)
			}
		}
		summary[code] = digest
	}
	return summary
}

func speakerName(code string) string {
	name := region.Names[code]
	if name == "" {
		name = code
	}
	return name + "_Governor"
}

// rankByImpact orders motions by the magnitude of their declared effects,
// largest first. Submission order breaks ties.
func rankByImpact(proposals []*advisor.PolicyProposal) []*advisor.PolicyProposal {
	ranked := make([]*advisor.PolicyProposal, len(proposals))
	copy(ranked, proposals)
	sort.SliceStable(ranked, func(i, j int) bool {
		return declaredImpact(ranked[i]) > declaredImpact(ranked[j])
	})
	return ranked
}

func declaredImpact(p *advisor.PolicyProposal) float64 {
	total := 0.0
	for _, v := range p.Effects {
		total += math.Abs(v)
	}
	return total
}
