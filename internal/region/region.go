// Package region holds the per-state ledger: resources, scores, demographics,
// and the canonical iteration order shared by every subsystem.
package region

// Resource names one of the four tradeable stocks.
type Resource string

const (
	Water  Resource = "water"
	Energy Resource = "energy"
	Food   Resource = "food"
	Tech   Resource = "tech"
)

// ResourceOrder is the canonical resource iteration order. Map iteration in
// Go is randomized, so every outcome-affecting loop walks this slice instead.
var ResourceOrder = []Resource{Water, Energy, Food, Tech}

// Codes is the canonical region iteration order.
var Codes = []string{"PB", "MH", "TN", "KA", "GJ", "UP", "BR", "WB", "RJ", "MP"}

// Names maps region codes to display names.
var Names = map[string]string{
	"PB": "Punjab",
	"MH": "Maharashtra",
	"TN": "Tamil Nadu",
	"KA": "Karnataka",
	"GJ": "Gujarat",
	"UP": "Uttar Pradesh",
	"BR": "Bihar",
	"WB": "West Bengal",
	"RJ": "Rajasthan",
	"MP": "Madhya Pradesh",
}

// Demographics feed the scoring formulas but are not independently validated.
type Demographics struct {
	WorkforceEfficiency float64 `json:"workforce_efficiency"`
	UnrestLevel         float64 `json:"unrest_level"`
	MigrationPressure   float64 `json:"migration_pressure"`
	LiteracyRate        float64 `json:"literacy_rate"`
	Urbanization        float64 `json:"urbanization"`
}

// FinOpsMetrics are informational budget figures carried from seed data.
type FinOpsMetrics struct {
	ProjectedDeficit   string  `json:"projected_deficit,omitempty"`
	BudgetSurplus      int     `json:"budget_surplus"`
	BurnRate           float64 `json:"burn_rate"`
	RevenuePerTick     int     `json:"revenue_per_tick"`
	ExpenditurePerTick int     `json:"expenditure_per_tick"`
}

// Infrastructure counts built assets per region. Informational.
type Infrastructure struct {
	SolarFarms  int `json:"solar_farms"`
	Canals      int `json:"canals"`
	TechParks   int `json:"tech_parks"`
	Hospitals   int `json:"hospitals"`
	Roads       int `json:"roads"`
	PowerPlants int `json:"power_plants"`
}

// Region is one state's mutable ledger entry. Ten are created at init and
// mutated every tick; none are ever destroyed.
type Region struct {
	Code string `json:"code"`
	Name string `json:"name"`

	Population   int     `json:"population"`
	GDPScore     float64 `json:"gdp_score"`
	WelfareScore float64 `json:"welfare_score"`
	TrustScore   float64 `json:"trust_score"` // clamped to [0,100]

	Resources        map[Resource]int `json:"resources"`
	GenerationRates  map[Resource]int `json:"resource_generation_rates"`
	ConsumptionRates map[Resource]int `json:"resource_consumption_rates"`

	FinOps           FinOpsMetrics      `json:"finops_metrics"`
	Demographics     Demographics       `json:"demographics"`
	Infrastructure   Infrastructure     `json:"infrastructure"`
	InternalPolicies map[string]float64 `json:"internal_policies"`
}

// Stock returns the current amount of a resource, zero if absent.
func (r *Region) Stock(res Resource) int {
	return r.Resources[res]
}

// SetStock writes a resource amount, clamping negatives to zero.
func (r *Region) SetStock(res Resource, amount int) {
	if amount < 0 {
		amount = 0
	}
	r.Resources[res] = amount
}

// AdjustStock adds delta to a resource, clamping the result at zero.
func (r *Region) AdjustStock(res Resource, delta int) {
	r.SetStock(res, r.Resources[res]+delta)
}

// AdjustTrust adds delta to the trust score, clamped to [0,100].
func (r *Region) AdjustTrust(delta float64) {
	r.TrustScore = clamp(r.TrustScore+delta, 0, 100)
}

// Clone deep-copies the region so snapshots never alias live ledger state.
func (r *Region) Clone() *Region {
	cp := *r
	cp.Resources = copyResMap(r.Resources)
	cp.GenerationRates = copyResMap(r.GenerationRates)
	cp.ConsumptionRates = copyResMap(r.ConsumptionRates)
	cp.InternalPolicies = make(map[string]float64, len(r.InternalPolicies))
	for k, v := range r.InternalPolicies {
		cp.InternalPolicies[k] = v
	}
	return &cp
}

func copyResMap(m map[Resource]int) map[Resource]int {
	cp := make(map[Resource]int, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Ledger is the authoritative region set, keyed by code. Exactly one logical
// writer mutates it (the tick loop); concurrent readers get Clone copies.
type Ledger map[string]*Region

// CodesPresent returns the ledger's codes in canonical order.
func (l Ledger) CodesPresent() []string {
	out := make([]string, 0, len(l))
	for _, code := range Codes {
		if _, ok := l[code]; ok {
			out = append(out, code)
		}
	}
	return out
}

// TotalPopulation sums population across all regions.
func (l Ledger) TotalPopulation() int {
	total := 0
	for _, r := range l {
		total += r.Population
	}
	return total
}

// Clone deep-copies the whole ledger.
func (l Ledger) Clone() Ledger {
	cp := make(Ledger, len(l))
	for code, r := range l {
		cp[code] = r.Clone()
	}
	return cp
}
