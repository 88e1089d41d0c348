package engine

import (
	"log/slog"

	"github.com/talgya/worldsim/internal/region"
)

// stepResources applies generation minus consumption to every stock.
// Stocks floor at zero; regions run dry rather than going negative.
func (w *World) stepResources(report *TickReport) {
	for _, code := range w.Ledger.CodesPresent() {
		r := w.Ledger[code]
		updated := make(map[region.Resource]int, len(region.ResourceOrder))
		for _, res := range region.ResourceOrder {
			next := r.Stock(res) + r.GenerationRates[res] - r.ConsumptionRates[res]
			if next < 0 {
				next = 0
			}
			r.SetStock(res, next)
			updated[res] = next
		}
		report.ResourceUpdates[code] = updated
	}
}

// stepPolicies applies each region's standing internal policies.
//
// A food subsidy converts energy into food: the bonus is proportional to
// current food stock, and half of it is paid back as energy. A water tax
// grows the water stock by a small levy-funded fraction.
func (w *World) stepPolicies() {
	for _, code := range w.Ledger.CodesPresent() {
		r := w.Ledger[code]

		if s := r.InternalPolicies["food_subsidy"]; s > 0 {
			foodBonus := int(float64(r.Stock(region.Food)) * s * 0.1)
			energyCost := int(float64(foodBonus) * 0.5)
			r.AdjustStock(region.Food, foodBonus)
			r.AdjustStock(region.Energy, -energyCost)
			if foodBonus != 0 {
				slog.Debug("food subsidy applied",
					"region", code, "food_bonus", foodBonus, "energy_cost", energyCost)
			}
		}

		if t := r.InternalPolicies["water_tax"]; t > 0 {
			gain := int(float64(r.Stock(region.Water)) * t * 0.05)
			r.AdjustStock(region.Water, gain)
		}
	}
}
