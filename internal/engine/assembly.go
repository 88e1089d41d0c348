package engine

// stepAssembly convenes the federal assembly on its fixed cadence.
func (w *World) stepAssembly(report *TickReport) {
	if w.cfg.AssemblyInterval <= 0 || w.Tick%w.cfg.AssemblyInterval != 0 {
		return
	}
	report.Assembly = w.Parliament.Convene(w.Advisors, w.reports, w.Ledger, w.Tick)
}
