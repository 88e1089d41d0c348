package engine

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/talgya/worldsim/internal/climate"
	"github.com/talgya/worldsim/internal/region"
)

// Intervene applies a named admin shock immediately and queues its record
// for the next tick report. Targeted actions require a region code; national
// actions ignore it.
func (w *World) Intervene(action, target string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var msg string
	switch action {
	case "drought", "flood", "energy_crisis", "tech_boom", "health_crisis", "monsoon_failure":
		r, ok := w.Ledger[target]
		if !ok {
			return "", fmt.Errorf("region %q not found", target)
		}
		msg = applyRegional(action, r)
	case "gdp_crash", "stimulus":
		msg = w.applyNational(action)
	default:
		return "", fmt.Errorf("unknown action %q", action)
	}

	w.pending = append(w.pending, InterventionRecord{
		ID:      uuid.NewString(),
		Action:  action,
		Target:  target,
		Message: msg,
	})
	slog.Info("intervention applied", "action", action, "target", target)
	return msg, nil
}

// ForceClimateEvent starts a named climate event immediately, outside the
// normal probability roll. Duplicate active events are rejected.
func (w *World) ForceClimateEvent(eventID string) (climate.Outcome, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	out, err := w.Climate.ForceTrigger(eventID, w.Ledger)
	if err != nil {
		return climate.Outcome{}, err
	}

	w.climateLog = append(w.climateLog, out)
	if len(w.climateLog) > climateLogCap {
		w.climateLog = w.climateLog[len(w.climateLog)-climateLogCap:]
	}
	w.pending = append(w.pending, InterventionRecord{
		ID:      uuid.NewString(),
		Action:  "climate_event",
		Target:  out.EventID,
		Message: fmt.Sprintf("%s strikes %s", out.Name, out.Target),
	})
	slog.Info("climate event forced", "event", out.EventID, "target", out.Target)
	return out, nil
}

// drainInterventions hands queued admin actions to the tick report.
func (w *World) drainInterventions() []InterventionRecord {
	if len(w.pending) == 0 {
		return nil
	}
	drained := w.pending
	w.pending = nil
	return drained
}

func applyRegional(action string, r *region.Region) string {
	switch action {
	case "drought":
		scaleStock(r, region.Water, 0.3)
		scaleGDP(r, 0.8)
		adjustWelfare(r, -12, 10)
		return fmt.Sprintf("Severe drought strikes %s", r.Name)
	case "flood":
		scaleStock(r, region.Food, 0.2)
		scaleStock(r, region.Water, 1.5)
		scaleGDP(r, 0.77)
		adjustWelfare(r, -18, 10)
		return fmt.Sprintf("Catastrophic flooding inundates %s", r.Name)
	case "energy_crisis":
		scaleStock(r, region.Energy, 0.25)
		scaleGDP(r, 0.73)
		adjustWelfare(r, -10, 10)
		return fmt.Sprintf("Energy crisis grips %s", r.Name)
	case "tech_boom":
		scaleStock(r, region.Tech, 2.5)
		scaleGDP(r, 1.25)
		adjustWelfare(r, 8, 10)
		return fmt.Sprintf("Technology boom lifts %s", r.Name)
	case "health_crisis":
		adjustWelfare(r, -30, 0)
		scaleGDP(r, 0.85)
		return fmt.Sprintf("Public health emergency sweeps %s", r.Name)
	case "monsoon_failure":
		scaleStock(r, region.Water, 0.15)
		scaleStock(r, region.Food, 0.4)
		scaleGDP(r, 0.7)
		adjustWelfare(r, -20, 10)
		return fmt.Sprintf("The monsoon fails over %s", r.Name)
	}
	return ""
}

func (w *World) applyNational(action string) string {
	factor, welfare, msg := 0.7, -8.0, "Nationwide economic crash"
	if action == "stimulus" {
		factor, welfare, msg = 1.15, 5.0, "National stimulus package lifts every region"
	}
	for _, code := range w.Ledger.CodesPresent() {
		r := w.Ledger[code]
		scaleGDP(r, factor)
		adjustWelfare(r, welfare, 10)
	}
	return msg
}

func scaleStock(r *region.Region, res region.Resource, factor float64) {
	r.SetStock(res, int(float64(r.Stock(res))*factor))
}

// scaleGDP multiplies GDP, clamped to [5, 100]. Even a crash leaves a floor
// of economic activity.
func scaleGDP(r *region.Region, factor float64) {
	v := r.GDPScore * factor
	if v < 5 {
		v = 5
	}
	if v > 100 {
		v = 100
	}
	r.GDPScore = round1(v)
}

// adjustWelfare shifts welfare, clamped to [floor, 100]. Health emergencies
// pass a zero floor; everything else bottoms out at 10.
func adjustWelfare(r *region.Region, delta, floor float64) {
	v := r.WelfareScore + delta
	if v < floor {
		v = floor
	}
	if v > 100 {
		v = 100
	}
	r.WelfareScore = round1(v)
}
