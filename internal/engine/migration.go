package engine

import "log/slog"

// stepMigration drains population from low-welfare regions into the most
// attractive destination.
//
// Every source is judged against the state as this step began, so two
// sources can pick the same destination in one tick. MigrationRescan makes
// each source re-read live state instead, seeing earlier moves.
func (w *World) stepMigration(report *TickReport) {
	codes := w.Ledger.CodesPresent()

	welfare := make(map[string]float64, len(codes))
	pop := make(map[string]int, len(codes))
	for _, code := range codes {
		r := w.Ledger[code]
		welfare[code] = r.WelfareScore
		pop[code] = r.Population
	}

	for _, code := range codes {
		if w.cfg.MigrationRescan {
			for _, c := range codes {
				welfare[c] = w.Ledger[c].WelfareScore
				pop[c] = w.Ledger[c].Population
			}
		}

		if welfare[code] >= w.cfg.WelfareMigrationThreshold {
			continue
		}

		dest := ""
		best := 0.0
		for _, cand := range codes {
			if cand == code {
				continue
			}
			if welfare[cand] > best && welfare[cand] > welfare[code] {
				dest, best = cand, welfare[cand]
			}
		}
		if dest == "" {
			continue
		}

		migrants := int(float64(pop[code]) * w.cfg.MigrationRate)
		if migrants <= 0 {
			continue
		}

		w.Ledger[code].Population -= migrants
		w.Ledger[dest].Population += migrants
		report.Migrations = append(report.Migrations, Migration{From: code, To: dest, Migrants: migrants})
		slog.Info("migration", "tick", w.Tick, "from", code, "to", dest, "migrants", migrants)
	}
}
