// Package treaty manages multi-tick bilateral exchange agreements: creation
// under a per-region cap, per-tick enforcement with breach detection, and the
// trust adjustments that follow.
package treaty

import (
	"fmt"
	"log/slog"

	"github.com/talgya/worldsim/internal/region"
)

// DefaultDuration applies when a proposal carries no duration.
const DefaultDuration = 20

// Breach is one append-only entry in a treaty's breach log.
type Breach struct {
	Tick      int             `json:"tick"`
	Breacher  string          `json:"breacher"`
	Resource  region.Resource `json:"resource"`
	Promised  int             `json:"promised"`
	Available int             `json:"available"`
}

// Treaty is a standing agreement: From delivers PerTickOffer to To each tick,
// To delivers PerTickRequest back. Once TicksRemaining hits zero the treaty
// deactivates, moves to the archive, and is never mutated again.
type Treaty struct {
	ID             string                  `json:"treaty_id"`
	From           string                  `json:"from_region"`
	To             string                  `json:"to_region"`
	PerTickOffer   map[region.Resource]int `json:"per_tick_offer"`
	PerTickRequest map[region.Resource]int `json:"per_tick_request"`
	DurationTicks  int                     `json:"duration_ticks"`
	TicksRemaining int                     `json:"ticks_remaining"`
	Conditions     string                  `json:"conditions"`
	Active         bool                    `json:"is_active"`
	Breaches       []Breach                `json:"breaches"`
	CreatedTick    int                     `json:"created_tick"`
}

// Clone returns a deep copy safe to read outside the world lock.
func (t *Treaty) Clone() *Treaty {
	cp := *t
	cp.PerTickOffer = copyAmounts(t.PerTickOffer)
	cp.PerTickRequest = copyAmounts(t.PerTickRequest)
	cp.Breaches = append([]Breach(nil), t.Breaches...)
	return &cp
}

// Proposal is the negotiated input to Create.
type Proposal struct {
	From           string
	To             string
	PerTickOffer   map[region.Resource]int
	PerTickRequest map[region.Resource]int
	DurationTicks  int
	Conditions     string
}

// Transfer records one delivered leg resource in an enforcement result.
type Transfer struct {
	Direction string          `json:"direction"`
	Resource  region.Resource `json:"resource"`
	Amount    int             `json:"amount"`
	Status    string          `json:"status"`
}

// BreachReport records one failed leg resource in an enforcement result.
type BreachReport struct {
	Breacher  string          `json:"breacher"`
	Resource  region.Resource `json:"resource"`
	Shortfall int             `json:"shortfall"`
}

// Result is the per-treaty enforcement record for one tick.
type Result struct {
	TreatyID  string         `json:"treaty_id"`
	From      string         `json:"from"`
	To        string         `json:"to"`
	Transfers []Transfer     `json:"transfers"`
	Breaches  []BreachReport `json:"breaches"`
}

// Manager owns the active treaty set and the expired archive.
type Manager struct {
	maxPerRegion  int
	breachPenalty float64
	honorBonus    float64

	active  []*Treaty
	expired []*Treaty
	counter int
}

// NewManager builds a manager enforcing the per-region active-treaty cap and
// the given trust deltas.
func NewManager(maxPerRegion int, breachPenalty, honorBonus float64) *Manager {
	return &Manager{
		maxPerRegion:  maxPerRegion,
		breachPenalty: breachPenalty,
		honorBonus:    honorBonus,
	}
}

// Create registers a treaty from a proposal. Returns nil — a normal outcome
// the caller must check, not an error — when either party already holds the
// maximum number of active treaties in any role.
func (m *Manager) Create(p Proposal, currentTick int) *Treaty {
	if m.countFor(p.From) >= m.maxPerRegion || m.countFor(p.To) >= m.maxPerRegion {
		slog.Info("treaty refused: party at active cap", "from", p.From, "to", p.To)
		return nil
	}

	duration := p.DurationTicks
	if duration <= 0 {
		duration = DefaultDuration
	}

	m.counter++
	t := &Treaty{
		ID:             fmt.Sprintf("Treaty_%03d_%s_%s", m.counter, p.From, p.To),
		From:           p.From,
		To:             p.To,
		PerTickOffer:   copyAmounts(p.PerTickOffer),
		PerTickRequest: copyAmounts(p.PerTickRequest),
		DurationTicks:  duration,
		TicksRemaining: duration,
		Conditions:     p.Conditions,
		Active:         true,
		CreatedTick:    currentTick,
	}
	m.active = append(m.active, t)
	slog.Info("treaty created", "treaty", t.ID, "duration", duration)
	return t
}

// Enforce runs every active treaty once for this tick, decrements remaining
// durations, and archives anything that just expired.
func (m *Manager) Enforce(currentTick int, ledger region.Ledger) []Result {
	var results []Result
	var stillActive []*Treaty

	for _, t := range m.active {
		if !t.Active {
			continue
		}
		results = append(results, m.enforceOne(t, ledger, currentTick))

		t.TicksRemaining--
		if t.TicksRemaining <= 0 {
			t.Active = false
			m.expired = append(m.expired, t)
			slog.Info("treaty expired", "treaty", t.ID)
			continue
		}
		stillActive = append(stillActive, t)
	}

	m.active = stillActive
	return results
}

// enforceOne attempts both legs. Each leg's resources deliver in full or
// breach with a recorded shortfall — never partially. The second leg reads
// stock after the first leg's credit, so goods received in leg one raise
// capacity for leg two.
func (m *Manager) enforceOne(t *Treaty, ledger region.Ledger, currentTick int) Result {
	result := Result{TreatyID: t.ID, From: t.From, To: t.To}

	m.enforceLeg(t, ledger, currentTick, t.From, t.To, t.PerTickOffer, &result)
	m.enforceLeg(t, ledger, currentTick, t.To, t.From, t.PerTickRequest, &result)

	return result
}

func (m *Manager) enforceLeg(t *Treaty, ledger region.Ledger, currentTick int,
	sender, receiver string, obligations map[region.Resource]int, result *Result) {

	snd := ledger[sender]
	rcv := ledger[receiver]

	for _, res := range region.ResourceOrder {
		amount, promised := obligations[res]
		if !promised {
			continue
		}

		available := 0
		if snd != nil {
			available = snd.Stock(res)
		}

		if available >= amount {
			if snd != nil && rcv != nil {
				snd.AdjustStock(res, -amount)
				rcv.AdjustStock(res, amount)
			}
			result.Transfers = append(result.Transfers, Transfer{
				Direction: sender + " -> " + receiver,
				Resource:  res,
				Amount:    amount,
				Status:    "DELIVERED",
			})
			continue
		}

		t.Breaches = append(t.Breaches, Breach{
			Tick:      currentTick,
			Breacher:  sender,
			Resource:  res,
			Promised:  amount,
			Available: available,
		})
		result.Breaches = append(result.Breaches, BreachReport{
			Breacher:  sender,
			Resource:  res,
			Shortfall: amount - available,
		})
		slog.Info("treaty breached",
			"treaty", t.ID,
			"breacher", sender,
			"resource", res,
			"shortfall", amount-available,
		)
	}
}

// TrustAdjustments folds enforcement results into per-region trust deltas:
// each breach charges its breacher the penalty; a fully honored treaty pays
// both parties the bonus. Partial honor earns no bonus.
func (m *Manager) TrustAdjustments(results []Result) map[string]float64 {
	adjustments := make(map[string]float64)

	for _, r := range results {
		if _, ok := adjustments[r.From]; !ok {
			adjustments[r.From] = 0
		}
		if _, ok := adjustments[r.To]; !ok {
			adjustments[r.To] = 0
		}

		if len(r.Breaches) > 0 {
			for _, b := range r.Breaches {
				adjustments[b.Breacher] -= m.breachPenalty
			}
			continue
		}
		adjustments[r.From] += m.honorBonus
		adjustments[r.To] += m.honorBonus
	}

	return adjustments
}

// ForRegion returns the active treaties a region participates in, either role.
func (m *Manager) ForRegion(code string) []*Treaty {
	var out []*Treaty
	for _, t := range m.active {
		if t.From == code || t.To == code {
			out = append(out, t)
		}
	}
	return out
}

// Active returns the active treaties in creation order.
func (m *Manager) Active() []*Treaty {
	return append([]*Treaty(nil), m.active...)
}

// Expired returns the archived treaties in expiry order.
func (m *Manager) Expired() []*Treaty {
	return append([]*Treaty(nil), m.expired...)
}

// TotalCreated reports how many treaties this manager has ever created.
func (m *Manager) TotalCreated() int { return m.counter }

// Restore reinstates persisted treaties and the ID counter on load.
func (m *Manager) Restore(active, expired []*Treaty, counter int) {
	m.active = append([]*Treaty(nil), active...)
	m.expired = append([]*Treaty(nil), expired...)
	m.counter = counter
}

func (m *Manager) countFor(code string) int {
	n := 0
	for _, t := range m.active {
		if t.From == code || t.To == code {
			n++
		}
	}
	return n
}

func copyAmounts(src map[region.Resource]int) map[region.Resource]int {
	cp := make(map[region.Resource]int, len(src))
	for k, v := range src {
		cp[k] = v
	}
	return cp
}
