// Command seedgen emits a synthetic baseline dataset in the WORLDSIM CSV
// layout: one row per state per tick, covering resources, economy, trade,
// and climate columns. Useful for dashboard development and offline
// analysis without running a full simulation.
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/talgya/worldsim/internal/synth"
)

func main() {
	out := flag.String("out", "india_ecosystem_dataset.csv", "output CSV path (- for stdout)")
	ticks := flag.Int("ticks", 1000, "number of ticks to generate")
	seed := flag.Int64("seed", 42, "noise seed")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if *ticks <= 0 {
		slog.Error("--ticks must be positive", "ticks", *ticks)
		os.Exit(1)
	}

	w := os.Stdout
	if *out != "-" {
		f, err := os.Create(*out)
		if err != nil {
			slog.Error("failed to create output file", "path", *out, "error", err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}

	gen := synth.NewGenerator(*seed)
	if err := gen.WriteCSV(w, *ticks); err != nil {
		slog.Error("dataset generation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("dataset written", "path", *out, "ticks", *ticks, "seed", *seed)
}
