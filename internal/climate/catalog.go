package climate

import "github.com/talgya/worldsim/internal/region"

// Event is one catalog entry. Resource impact is a one-shot fractional loss
// applied at trigger time; infrastructure impact is an absolute decrement.
// RecoveryRate is carried for reporting but drives no mechanics.
type Event struct {
	ID          string
	Name        string
	Type        string
	Target      string
	Secondary   string // informational; impact applies to Target only
	Severity    string
	Weight      float64
	Duration    int
	Description string

	ResourceImpact map[region.Resource]float64
	InfraImpact    map[string]int
	RecoveryRate   float64
}

// Catalog is the fixed event set, in canonical draw order.
var Catalog = []Event{
	{
		ID: "Drought_RJ", Name: "Thar Desert Drought", Type: "drought",
		Target: "RJ", Severity: "critical", Weight: 0.20, Duration: 10,
		Description:    "Severe drought hits Rajasthan. Water reserves depleted by 50%.",
		ResourceImpact: map[region.Resource]float64{region.Water: -0.50},
		RecoveryRate:   0.05,
	},
	{
		ID: "Cyclone_WB", Name: "Bay of Bengal Cyclone", Type: "cyclone",
		Target: "WB", Severity: "severe", Weight: 0.15, Duration: 8,
		Description:    "Category 4 cyclone devastates West Bengal coast. Food reserves and infrastructure damaged.",
		ResourceImpact: map[region.Resource]float64{region.Food: -0.30},
		InfraImpact:    map[string]int{"roads": -1, "hospitals": -1},
		RecoveryRate:   0.08,
	},
	{
		ID: "Flood_BR", Name: "Bihar Monsoon Floods", Type: "flood",
		Target: "BR", Severity: "severe", Weight: 0.18, Duration: 6,
		Description:    "Catastrophic monsoon flooding wipes out 40% of Bihar's food reserves.",
		ResourceImpact: map[region.Resource]float64{region.Food: -0.40},
		RecoveryRate:   0.10,
	},
	{
		ID: "Heatwave_UP", Name: "Northern Plains Heatwave", Type: "heatwave",
		Target: "UP", Severity: "moderate", Weight: 0.15, Duration: 5,
		Description:    "Extreme heatwave across UP drains water and overwhelms energy grid.",
		ResourceImpact: map[region.Resource]float64{region.Water: -0.25, region.Energy: -0.15},
		RecoveryRate:   0.12,
	},
	{
		ID: "Monsoon_Failure_TN", Name: "Tamil Nadu Northeast Monsoon Failure", Type: "drought",
		Target: "TN", Severity: "critical", Weight: 0.15, Duration: 12,
		Description:    "Northeast monsoon fails completely. Tamil Nadu faces acute water crisis.",
		ResourceImpact: map[region.Resource]float64{region.Water: -0.45},
		RecoveryRate:   0.04,
	},
	{
		ID: "Industrial_Accident_GJ", Name: "Gujarat Industrial Disaster", Type: "industrial",
		Target: "GJ", Severity: "moderate", Weight: 0.10, Duration: 7,
		Description:    "Major industrial accident damages Gujarat's energy infrastructure.",
		ResourceImpact: map[region.Resource]float64{region.Energy: -0.20},
		InfraImpact:    map[string]int{"power_plants": -1},
		RecoveryRate:   0.10,
	},
	{
		ID: "Kaveri_Dispute_KA_TN", Name: "Kaveri River Water Dispute", Type: "political",
		Target: "KA", Secondary: "TN", Severity: "moderate", Weight: 0.07, Duration: 15,
		Description:    "Political dispute over Kaveri river water sharing affects both Karnataka and Tamil Nadu.",
		ResourceImpact: map[region.Resource]float64{region.Water: -0.15},
		RecoveryRate:   0.03,
	},
}

// ByID returns the catalog entry for an event ID, nil if unknown.
func ByID(id string) *Event {
	for i := range Catalog {
		if Catalog[i].ID == id {
			return &Catalog[i]
		}
	}
	return nil
}
