package engine

import "log/slog"

const climateLogCap = 100

// stepClimate rolls for climate events and applies any that trigger.
func (w *World) stepClimate(report *TickReport) {
	outcomes := w.Climate.Step(w.Tick, w.Ledger)
	if len(outcomes) == 0 {
		return
	}
	report.ClimateEvents = outcomes

	for _, o := range outcomes {
		w.climateLog = append(w.climateLog, o)
		slog.Debug("climate outcome",
			"tick", w.Tick, "type", o.Type, "event", o.EventID, "target", o.Target)
	}
	if len(w.climateLog) > climateLogCap {
		w.climateLog = w.climateLog[len(w.climateLog)-climateLogCap:]
	}
}
