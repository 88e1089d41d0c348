// Package climate drives randomized climate shocks: weighted selection over a
// fixed catalog, minimum spacing between triggers, and per-event exclusion
// while active.
package climate

import (
	"errors"
	"log/slog"

	"github.com/talgya/worldsim/internal/entropy"
	"github.com/talgya/worldsim/internal/region"
)

var (
	ErrUnknownEvent = errors.New("climate: unknown event")
	ErrEventActive  = errors.New("climate: event already active")
)

// Impact records one resource's before/lost/after at trigger time.
type Impact struct {
	Before int `json:"before"`
	Lost   int `json:"lost"`
	After  int `json:"after"`
}

// Outcome is one climate entry in the tick report.
type Outcome struct {
	Type     string                     `json:"type"` // TRIGGERED or EXPIRED
	EventID  string                     `json:"event_id"`
	Name     string                     `json:"name,omitempty"`
	Target   string                     `json:"target_region,omitempty"`
	Duration int                        `json:"duration,omitempty"`
	Impacts  map[region.Resource]Impact `json:"impacts,omitempty"`
}

// Engine holds the per-run shock state. Randomness comes from the injected
// source only, so a pinned seed replays every draw.
type Engine struct {
	rng *entropy.Source

	triggerProb   float64
	minInterval   int
	lastEventTick int
	active        map[string]int // event ID -> ticks remaining
}

// NewEngine builds a climate engine. lastEventTick starts one interval in the
// past so a shock may fire on tick 0.
func NewEngine(rng *entropy.Source, triggerProb float64, minInterval int) *Engine {
	return &Engine{
		rng:           rng,
		triggerProb:   triggerProb,
		minInterval:   minInterval,
		lastEventTick: -minInterval,
		active:        make(map[string]int),
	}
}

// Step processes one tick: maybe trigger a new event, then age every active
// event by one tick. A just-triggered event ages in the same tick, and a
// trigger and an expiry may both appear in one step's outcomes.
func (e *Engine) Step(tick int, ledger region.Ledger) []Outcome {
	var outcomes []Outcome

	if tick-e.lastEventTick >= e.minInterval && e.rng.Float64() < e.triggerProb {
		if ev := e.selectEvent(); ev != nil {
			outcomes = append(outcomes, e.trigger(ev, ledger))
			e.lastEventTick = tick
		}
	}

	for _, ev := range Catalog {
		left, ok := e.active[ev.ID]
		if !ok {
			continue
		}
		left--
		if left <= 0 {
			delete(e.active, ev.ID)
			outcomes = append(outcomes, Outcome{Type: "EXPIRED", EventID: ev.ID, Name: ev.Name, Target: ev.Target})
			slog.Info("climate event expired", "event", ev.ID)
		} else {
			e.active[ev.ID] = left
		}
	}

	return outcomes
}

// ForceTrigger starts a named event immediately, bypassing probability and
// spacing. Duplicate triggers of an active event are rejected.
func (e *Engine) ForceTrigger(eventID string, ledger region.Ledger) (Outcome, error) {
	ev := ByID(eventID)
	if ev == nil {
		return Outcome{}, ErrUnknownEvent
	}
	if _, active := e.active[eventID]; active {
		return Outcome{}, ErrEventActive
	}
	return e.trigger(ev, ledger), nil
}

// selectEvent draws one candidate by weight, excluding active events. The
// remaining weights renormalize implicitly. Returns nil when every event is
// already active.
func (e *Engine) selectEvent() *Event {
	weights := make([]float64, len(Catalog))
	for i, ev := range Catalog {
		if _, active := e.active[ev.ID]; active {
			continue
		}
		weights[i] = ev.Weight
	}
	idx := e.rng.WeightedIndex(weights)
	if idx < 0 {
		return nil
	}
	return &Catalog[idx]
}

// trigger applies the event's one-shot impact to its target and registers it
// as active for its full duration.
func (e *Engine) trigger(ev *Event, ledger region.Ledger) Outcome {
	out := Outcome{
		Type:     "TRIGGERED",
		EventID:  ev.ID,
		Name:     ev.Name,
		Target:   ev.Target,
		Duration: ev.Duration,
	}

	if target, ok := ledger[ev.Target]; ok {
		out.Impacts = make(map[region.Resource]Impact, len(ev.ResourceImpact))
		for _, res := range region.ResourceOrder {
			factor, hit := ev.ResourceImpact[res]
			if !hit {
				continue
			}
			before := target.Stock(res)
			lost := int(abs(float64(before) * factor))
			target.SetStock(res, before-lost)
			out.Impacts[res] = Impact{Before: before, Lost: lost, After: target.Stock(res)}
		}
		for key, delta := range ev.InfraImpact {
			applyInfra(target, key, delta)
		}
	}

	e.active[ev.ID] = ev.Duration
	slog.Info("climate event triggered",
		"event", ev.ID,
		"target", ev.Target,
		"duration", ev.Duration,
		"severity", ev.Severity,
	)
	return out
}

// Active returns a copy of the active event set.
func (e *Engine) Active() map[string]int {
	cp := make(map[string]int, len(e.active))
	for k, v := range e.active {
		cp[k] = v
	}
	return cp
}

// IsActive reports whether the named event is currently running.
func (e *Engine) IsActive(eventID string) bool {
	_, ok := e.active[eventID]
	return ok
}

// AffectedRegions returns the set of region codes under an active event.
func (e *Engine) AffectedRegions() map[string]bool {
	affected := make(map[string]bool, len(e.active))
	for id := range e.active {
		if ev := ByID(id); ev != nil {
			affected[ev.Target] = true
		}
	}
	return affected
}

func applyInfra(r *region.Region, key string, delta int) {
	dec := func(v int) int {
		v += delta
		if v < 0 {
			return 0
		}
		return v
	}
	switch key {
	case "solar_farms":
		r.Infrastructure.SolarFarms = dec(r.Infrastructure.SolarFarms)
	case "canals":
		r.Infrastructure.Canals = dec(r.Infrastructure.Canals)
	case "tech_parks":
		r.Infrastructure.TechParks = dec(r.Infrastructure.TechParks)
	case "hospitals":
		r.Infrastructure.Hospitals = dec(r.Infrastructure.Hospitals)
	case "roads":
		r.Infrastructure.Roads = dec(r.Infrastructure.Roads)
	case "power_plants":
		r.Infrastructure.PowerPlants = dec(r.Infrastructure.PowerPlants)
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
