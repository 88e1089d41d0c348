package advisor

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/talgya/worldsim/internal/finops"
	"github.com/talgya/worldsim/internal/llm"
	"github.com/talgya/worldsim/internal/region"
)

// Response schemas. Anything the model returns is validated against these
// before unmarshalling; a failure degrades the call to "no action".
const (
	tradeSchemaJSON = `{
		"type": "object",
		"required": ["offering", "requesting"],
		"properties": {
			"offering": {
				"type": "object",
				"additionalProperties": false,
				"properties": {
					"water":  {"type": "integer", "minimum": 0},
					"energy": {"type": "integer", "minimum": 0},
					"food":   {"type": "integer", "minimum": 0},
					"tech":   {"type": "integer", "minimum": 0}
				}
			},
			"requesting": {
				"type": "object",
				"additionalProperties": false,
				"properties": {
					"water":  {"type": "integer", "minimum": 0},
					"energy": {"type": "integer", "minimum": 0},
					"food":   {"type": "integer", "minimum": 0},
					"tech":   {"type": "integer", "minimum": 0}
				}
			},
			"duration_ticks": {"type": "integer", "minimum": 2},
			"reasoning":      {"type": "string"}
		}
	}`

	policySchemaJSON = `{
		"type": "object",
		"required": ["policy_name", "speech"],
		"properties": {
			"policy_name":    {"type": "string", "minLength": 1},
			"speech":         {"type": "string"},
			"effects":        {"type": "object", "additionalProperties": {"type": "number"}},
			"duration_ticks": {"type": "integer", "minimum": 1}
		}
	}`

	ballotSchemaJSON = `{
		"type": "object",
		"required": ["vote"],
		"properties": {
			"vote":      {"type": "string"},
			"reasoning": {"type": "string"}
		}
	}`
)

var (
	tradeSchema  = jsonschema.MustCompileString("trade.json", tradeSchemaJSON)
	policySchema = jsonschema.MustCompileString("policy.json", policySchemaJSON)
	ballotSchema = jsonschema.MustCompileString("ballot.json", ballotSchemaJSON)
)

// LLM is an Advisor that asks a language model to govern. Responses are
// schema-validated and clamped before anything touches the ledger.
type LLM struct {
	client   *llm.Client
	code     string
	maxTrade int
}

// NewLLM wraps an API client as the advisor for one region. A nil or
// disabled client yields ErrUnavailable from every method.
func NewLLM(client *llm.Client, code string, maxTrade int) *LLM {
	return &LLM{client: client, code: code, maxTrade: maxTrade}
}

func (l *LLM) regionName() string {
	if name := region.Names[l.code]; name != "" {
		return name
	}
	return l.code
}

// ProposeTrade asks the model for a barter offer against one counterparty.
func (l *LLM) ProposeTrade(report *finops.Report, counterparty string,
	counterpartySurplus map[region.Resource]finops.Surplus) (*TradeProposal, error) {

	if !l.client.Enabled() {
		return nil, ErrUnavailable
	}

	system := fmt.Sprintf(`You are the Governor of %s (%s), one of ten states in a federated economy. You negotiate resource trades with other states. Resources: water, energy, food, tech.

Respond ONLY with a single JSON object:
{"offering": {"<resource>": <amount>}, "requesting": {"<resource>": <amount>}, "duration_ticks": <integer>, "reasoning": "<one sentence>"}

Amounts are positive integers, at most %d per resource. Offer only from your surpluses; request what your state needs most. Empty objects mean you decline to trade. Include duration_ticks (2 or more) only when you want a standing treaty exchanging those amounts every tick; omit it for a one-shot trade.`,
		l.regionName(), l.code, l.maxTrade)

	var b strings.Builder
	writeReport(&b, report)
	fmt.Fprintf(&b, "Counterparty %s (%s) has surplus:\n", region.Names[counterparty], counterparty)
	for _, res := range region.ResourceOrder {
		if sur, ok := counterpartySurplus[res]; ok {
			fmt.Fprintf(&b, "- %s: %d available\n", res, sur.AmountAvailable)
		}
	}
	b.WriteString("\nPropose a trade with this counterparty. Respond with a single JSON object.")

	raw, err := l.complete(system, b.String(), 512, tradeSchema)
	if err != nil {
		return nil, err
	}

	var proposal TradeProposal
	if err := json.Unmarshal(raw, &proposal); err != nil {
		return nil, fmt.Errorf("parse trade proposal: %w", err)
	}

	proposal.Offering = clampAmounts(proposal.Offering, l.maxTrade)
	proposal.Requesting = clampAmounts(proposal.Requesting, l.maxTrade)
	if !proposal.Actionable() {
		return nil, nil
	}
	return &proposal, nil
}

// ProposePolicy asks the model for a federal motion.
func (l *LLM) ProposePolicy(report *finops.Report, summary NationalSummary) (*PolicyProposal, error) {
	if !l.client.Enabled() {
		return nil, ErrUnavailable
	}

	system := fmt.Sprintf(`You are the Governor of %s (%s), addressing the Federal Assembly of a ten-state union. Propose one national policy and argue for it in a short speech.

Respond ONLY with a single JSON object:
{"policy_name": "<short title>", "speech": "<2-3 sentences>", "effects": {"<effect_key>": <number>}, "duration_ticks": <integer>}

Effect keys follow the pattern "<resource>_generation" or "gdp_growth". Stay in character; never mention being an AI.`,
		l.regionName(), l.code)

	var b strings.Builder
	writeReport(&b, report)
	b.WriteString("National summary:\n")
	for _, code := range region.Codes {
		digest, ok := summary[code]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "- %s (%s): GDP %.1f, health %.1f, deficits %v, surpluses %v\n",
			digest.Name, code, digest.GDP, digest.Health, digest.Deficits, digest.Surpluses)
	}
	b.WriteString("\nPropose your policy. Respond with a single JSON object.")

	raw, err := l.complete(system, b.String(), 768, policySchema)
	if err != nil {
		return nil, err
	}

	var proposal PolicyProposal
	if err := json.Unmarshal(raw, &proposal); err != nil {
		return nil, fmt.Errorf("parse policy proposal: %w", err)
	}

	proposal.Proposer = l.code
	if proposal.DurationTicks <= 0 {
		proposal.DurationTicks = heuristicPolicyDuration
	}
	return &proposal, nil
}

// Vote asks the model for a YES or NO on a motion. Unrecognized values are
// passed through; the assembly counts them as YES.
func (l *LLM) Vote(report *finops.Report, proposal *PolicyProposal) (*Ballot, error) {
	if !l.client.Enabled() {
		return nil, ErrUnavailable
	}
	if proposal == nil {
		return nil, fmt.Errorf("advisor: nil proposal")
	}

	system := fmt.Sprintf(`You are the Governor of %s (%s), voting in the Federal Assembly.

Respond ONLY with a single JSON object:
{"vote": "YES" or "NO", "reasoning": "<one sentence>"}`,
		l.regionName(), l.code)

	var b strings.Builder
	fmt.Fprintf(&b, "Motion: %q proposed by %s\n", proposal.PolicyName, proposal.Proposer)
	if proposal.Speech != "" {
		fmt.Fprintf(&b, "Speech: %s\n", proposal.Speech)
	}
	if len(proposal.Effects) > 0 {
		fmt.Fprintf(&b, "Declared effects: %v\n", proposal.Effects)
	}
	b.WriteString("\n")
	writeReport(&b, report)
	b.WriteString("Cast your vote. Respond with a single JSON object.")

	raw, err := l.complete(system, b.String(), 256, ballotSchema)
	if err != nil {
		return nil, err
	}

	var ballot Ballot
	if err := json.Unmarshal(raw, &ballot); err != nil {
		return nil, fmt.Errorf("parse ballot: %w", err)
	}
	ballot.Vote = strings.ToUpper(strings.TrimSpace(ballot.Vote))
	return &ballot, nil
}

// complete runs one model call and returns the schema-validated JSON body.
func (l *LLM) complete(system, user string, maxTokens int, schema *jsonschema.Schema) ([]byte, error) {
	resp, err := l.client.Complete(llm.Request{
		System:    system,
		Prompt:    user,
		MaxTokens: maxTokens,
		ForceJSON: true,
	})
	if err != nil {
		return nil, fmt.Errorf("advisor call: %w", err)
	}

	raw, err := extractJSON(resp)
	if err != nil {
		return nil, err
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return nil, fmt.Errorf("response schema: %w", err)
	}
	return raw, nil
}

// extractJSON pulls the outermost JSON object out of a model response,
// tolerating prose or markdown fences around it.
func extractJSON(resp string) ([]byte, error) {
	start := strings.Index(resp, "{")
	end := strings.LastIndex(resp, "}")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("no JSON object found in response")
	}
	return []byte(resp[start : end+1]), nil
}

// clampAmounts drops non-positive entries and caps the rest at maxTrade,
// walking canonical order so rebuilt maps are reproducible.
func clampAmounts(m map[region.Resource]int, maxTrade int) map[region.Resource]int {
	if len(m) == 0 {
		return nil
	}
	out := make(map[region.Resource]int, len(m))
	for _, res := range region.ResourceOrder {
		amt, ok := m[res]
		if !ok || amt <= 0 {
			continue
		}
		if amt > maxTrade {
			amt = maxTrade
		}
		out[res] = amt
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// writeReport renders a region's financial report for a prompt.
func writeReport(b *strings.Builder, report *finops.Report) {
	fmt.Fprintf(b, "Your state report (tick %d): health %.1f\n", report.Tick, report.HealthScore)
	for _, res := range region.ResourceOrder {
		if def, ok := report.Deficits[res]; ok {
			fmt.Fprintf(b, "- DEFICIT %s: need %d (priority %.2f)\n",
				res, def.AmountNeeded, def.PriorityScore)
		}
	}
	for _, res := range region.ResourceOrder {
		if sur, ok := report.Surpluses[res]; ok {
			fmt.Fprintf(b, "- SURPLUS %s: %d available\n", res, sur.AmountAvailable)
		}
	}
	b.WriteString("\n")
}
