// Package synth generates the synthetic historical dataset the dashboard's
// analytics views render before a live run has accumulated history. Layered
// simplex noise gives each state smooth, distinct trajectories around its
// seed baselines.
package synth

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/worldsim/internal/climate"
	"github.com/talgya/worldsim/internal/region"
)

// Header is the dataset's column layout, fixed for dashboard compatibility.
var Header = []string{
	"tick", "state", "population",
	"water_supply", "food_supply", "energy_supply",
	"water_generated", "food_generated", "energy_generated",
	"water_consumed", "food_consumed", "energy_consumed",
	"state_gdp", "gdp_growth_rate", "welfare_index", "inequality_index",
	"migration_in", "migration_out",
	"order_type", "resource_type", "trade_quantity", "trade_price", "trade_executed",
	"climate_event", "shock_intensity",
}

// Generator produces one dataset per seed. The same seed always yields the
// same rows.
type Generator struct {
	supply  opensimplex.Noise
	economy opensimplex.Noise
	trade   opensimplex.Noise
	shock   opensimplex.Noise
}

// NewGenerator builds a generator from independent noise layers.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		supply:  opensimplex.NewNormalized(seed),
		economy: opensimplex.NewNormalized(seed + 1),
		trade:   opensimplex.NewNormalized(seed + 2),
		shock:   opensimplex.NewNormalized(seed + 3),
	}
}

// WriteCSV emits ticks rows per state, one state-row per tick, in canonical
// state order within each tick.
func (g *Generator) WriteCSV(w io.Writer, ticks int) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	seed := region.Seed()
	prevGDP := make(map[string]float64, len(region.Codes))

	for tick := 1; tick <= ticks; tick++ {
		for si, code := range region.Codes {
			base := seed[code]
			if base == nil {
				continue
			}
			row := g.row(tick, si, base, prevGDP)
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("write row tick %d state %s: %w", tick, code, err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// row synthesizes one state-tick record. The x axis separates states, the y
// axis walks ticks; small frequencies keep series smooth.
func (g *Generator) row(tick, stateIdx int, base *region.Region, prevGDP map[string]float64) []string {
	x := float64(stateIdx) * 17.3
	y := float64(tick) * 0.05

	wobble := func(n opensimplex.Noise, off float64) float64 {
		return n.Eval2(x+off, y) // in [0,1]
	}

	supplyFactor := 0.6 + 0.8*wobble(g.supply, 0)
	water := float64(base.Stock(region.Water)) * supplyFactor
	food := float64(base.Stock(region.Food)) * (0.6 + 0.8*wobble(g.supply, 11))
	energy := float64(base.Stock(region.Energy)) * (0.6 + 0.8*wobble(g.supply, 23))

	gen := func(res region.Resource, off float64) float64 {
		return math.Abs(float64(base.GenerationRates[res])) * (0.8 + 0.4*wobble(g.supply, off))
	}
	con := func(res region.Resource, off float64) float64 {
		return float64(base.ConsumptionRates[res]) * (0.8 + 0.4*wobble(g.supply, off))
	}

	gdp := base.GDPScore * (0.75 + 0.5*wobble(g.economy, 0))
	growth := 0.0
	if prev, ok := prevGDP[base.Code]; ok && prev > 0 {
		growth = (gdp - prev) / prev * 100
	}
	prevGDP[base.Code] = gdp

	welfare := clamp01(base.WelfareScore/100*(0.8+0.4*wobble(g.economy, 7)))
	inequality := clamp01(0.25 + 0.3*wobble(g.economy, 13))

	migration := wobble(g.economy, 19)
	migrationIn := int(migration * 40000)
	migrationOut := int((1 - migration) * 40000)

	orderType := "BID"
	if wobble(g.trade, 0) > 0.5 {
		orderType = "ASK"
	}
	resource := region.ResourceOrder[int(wobble(g.trade, 5)*3.999)]
	quantity := 50 + wobble(g.trade, 9)*1500
	price := 5 + wobble(g.trade, 13)*45
	executed := 0
	if wobble(g.trade, 17) > 0.35 {
		executed = 1
	}

	eventName := "None"
	intensity := 0.0
	if s := wobble(g.shock, 0); s > 0.88 {
		ev := climate.Catalog[int(wobble(g.shock, 5)*float64(len(climate.Catalog)-1))]
		eventName = ev.Name
		intensity = clamp01((s - 0.88) / 0.12)
	}

	return []string{
		itoa(tick),
		base.Name,
		itoa(base.Population),
		f1(water), f1(food), f1(energy),
		f1(gen(region.Water, 31)), f1(gen(region.Food, 37)), f1(gen(region.Energy, 41)),
		f1(con(region.Water, 43)), f1(con(region.Food, 47)), f1(con(region.Energy, 53)),
		f2(gdp), f2(growth), f4(welfare), f4(inequality),
		itoa(migrationIn), itoa(migrationOut),
		orderType, string(resource), f2(quantity), f2(price), itoa(executed),
		eventName, f4(intensity),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func itoa(v int) string { return fmt.Sprintf("%d", v) }
func f1(v float64) string { return fmt.Sprintf("%.1f", v) }
func f2(v float64) string { return fmt.Sprintf("%.2f", v) }
func f4(v float64) string { return fmt.Sprintf("%.4f", v) }
