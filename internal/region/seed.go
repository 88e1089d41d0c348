package region

// Seed builds the built-in fallback ledger. Used whenever the persistence
// collaborator is absent or holds no regions.
func Seed() Ledger {
	return Ledger{
		"PB": {
			Code: "PB", Name: "Punjab",
			Population: 28000000, GDPScore: 55.0, WelfareScore: 72.0, TrustScore: 100,
			Resources:        map[Resource]int{Water: 8000, Energy: 3000, Food: 15000, Tech: 1000},
			GenerationRates:  map[Resource]int{Water: -200, Energy: 150, Food: 800, Tech: 50},
			ConsumptionRates: map[Resource]int{Water: 600, Energy: 200, Food: 300, Tech: 80},
			FinOps:           FinOpsMetrics{ProjectedDeficit: "water", BudgetSurplus: 2000, BurnRate: 0.12, RevenuePerTick: 3500, ExpenditurePerTick: 1500},
			Demographics:     Demographics{WorkforceEfficiency: 0.75, UnrestLevel: 0.10, MigrationPressure: 0.05, LiteracyRate: 0.76, Urbanization: 0.37},
			Infrastructure:   Infrastructure{SolarFarms: 0, Canals: 2, TechParks: 0, Hospitals: 1, Roads: 3, PowerPlants: 1},
			InternalPolicies: map[string]float64{"food_subsidy": 0.15, "water_tax": 0.05, "energy_tariff": 0.10, "tech_investment": 0.05},
		},
		"MH": {
			Code: "MH", Name: "Maharashtra",
			Population: 125000000, GDPScore: 85.4, WelfareScore: 65.0, TrustScore: 100,
			Resources:        map[Resource]int{Water: 4500, Energy: 12000, Food: 6000, Tech: 8000},
			GenerationRates:  map[Resource]int{Water: 100, Energy: 600, Food: 200, Tech: 400},
			ConsumptionRates: map[Resource]int{Water: 800, Energy: 500, Food: 700, Tech: 200},
			FinOps:           FinOpsMetrics{ProjectedDeficit: "water", BudgetSurplus: 5000, BurnRate: 0.08, RevenuePerTick: 8500, ExpenditurePerTick: 3500},
			Demographics:     Demographics{WorkforceEfficiency: 0.85, UnrestLevel: 0.15, MigrationPressure: -0.10, LiteracyRate: 0.82, Urbanization: 0.52},
			Infrastructure:   Infrastructure{SolarFarms: 1, Canals: 1, TechParks: 3, Hospitals: 2, Roads: 4, PowerPlants: 3},
			InternalPolicies: map[string]float64{"food_subsidy": 0.08, "water_tax": 0.12, "energy_tariff": 0.08, "tech_investment": 0.20},
		},
		"TN": {
			Code: "TN", Name: "Tamil Nadu",
			Population: 77000000, GDPScore: 78.0, WelfareScore: 70.0, TrustScore: 100,
			Resources:        map[Resource]int{Water: 3500, Energy: 7000, Food: 5000, Tech: 9000},
			GenerationRates:  map[Resource]int{Water: 80, Energy: 350, Food: 250, Tech: 500},
			ConsumptionRates: map[Resource]int{Water: 500, Energy: 400, Food: 450, Tech: 150},
			FinOps:           FinOpsMetrics{ProjectedDeficit: "water", BudgetSurplus: 3500, BurnRate: 0.09, RevenuePerTick: 7000, ExpenditurePerTick: 3500},
			Demographics:     Demographics{WorkforceEfficiency: 0.88, UnrestLevel: 0.12, MigrationPressure: -0.05, LiteracyRate: 0.80, Urbanization: 0.48},
			Infrastructure:   Infrastructure{SolarFarms: 1, Canals: 1, TechParks: 4, Hospitals: 2, Roads: 3, PowerPlants: 2},
			InternalPolicies: map[string]float64{"food_subsidy": 0.10, "water_tax": 0.15, "energy_tariff": 0.07, "tech_investment": 0.25},
		},
		"KA": {
			Code: "KA", Name: "Karnataka",
			Population: 67000000, GDPScore: 75.0, WelfareScore: 68.0, TrustScore: 100,
			Resources:        map[Resource]int{Water: 5000, Energy: 6000, Food: 4500, Tech: 10000},
			GenerationRates:  map[Resource]int{Water: 150, Energy: 300, Food: 200, Tech: 550},
			ConsumptionRates: map[Resource]int{Water: 400, Energy: 350, Food: 400, Tech: 120},
			FinOps:           FinOpsMetrics{ProjectedDeficit: "food", BudgetSurplus: 4000, BurnRate: 0.07, RevenuePerTick: 7500, ExpenditurePerTick: 3500},
			Demographics:     Demographics{WorkforceEfficiency: 0.90, UnrestLevel: 0.08, MigrationPressure: -0.12, LiteracyRate: 0.75, Urbanization: 0.42},
			Infrastructure:   Infrastructure{SolarFarms: 1, Canals: 1, TechParks: 5, Hospitals: 2, Roads: 3, PowerPlants: 2},
			InternalPolicies: map[string]float64{"food_subsidy": 0.12, "water_tax": 0.08, "energy_tariff": 0.06, "tech_investment": 0.30},
		},
		"GJ": {
			Code: "GJ", Name: "Gujarat",
			Population: 64000000, GDPScore: 72.0, WelfareScore: 67.0, TrustScore: 100,
			Resources:        map[Resource]int{Water: 4000, Energy: 11000, Food: 5500, Tech: 6000},
			GenerationRates:  map[Resource]int{Water: 120, Energy: 550, Food: 280, Tech: 300},
			ConsumptionRates: map[Resource]int{Water: 450, Energy: 300, Food: 380, Tech: 150},
			FinOps:           FinOpsMetrics{ProjectedDeficit: "water", BudgetSurplus: 3800, BurnRate: 0.08, RevenuePerTick: 6500, ExpenditurePerTick: 2700},
			Demographics:     Demographics{WorkforceEfficiency: 0.82, UnrestLevel: 0.07, MigrationPressure: -0.08, LiteracyRate: 0.79, Urbanization: 0.43},
			Infrastructure:   Infrastructure{SolarFarms: 3, Canals: 1, TechParks: 2, Hospitals: 2, Roads: 4, PowerPlants: 4},
			InternalPolicies: map[string]float64{"food_subsidy": 0.08, "water_tax": 0.10, "energy_tariff": 0.05, "tech_investment": 0.15},
		},
		"UP": {
			Code: "UP", Name: "Uttar Pradesh",
			Population: 230000000, GDPScore: 45.0, WelfareScore: 48.0, TrustScore: 100,
			Resources:        map[Resource]int{Water: 7000, Energy: 5000, Food: 8000, Tech: 2000},
			GenerationRates:  map[Resource]int{Water: 200, Energy: 200, Food: 400, Tech: 80},
			ConsumptionRates: map[Resource]int{Water: 1200, Energy: 800, Food: 1500, Tech: 300},
			FinOps:           FinOpsMetrics{ProjectedDeficit: "food", BudgetSurplus: 500, BurnRate: 0.18, RevenuePerTick: 4000, ExpenditurePerTick: 3500},
			Demographics:     Demographics{WorkforceEfficiency: 0.55, UnrestLevel: 0.25, MigrationPressure: 0.20, LiteracyRate: 0.68, Urbanization: 0.22},
			Infrastructure:   Infrastructure{SolarFarms: 0, Canals: 1, TechParks: 1, Hospitals: 1, Roads: 2, PowerPlants: 2},
			InternalPolicies: map[string]float64{"food_subsidy": 0.25, "water_tax": 0.03, "energy_tariff": 0.12, "tech_investment": 0.05},
		},
		"BR": {
			Code: "BR", Name: "Bihar",
			Population: 125000000, GDPScore: 25.0, WelfareScore: 38.0, TrustScore: 100,
			Resources:        map[Resource]int{Water: 6000, Energy: 2000, Food: 4000, Tech: 500},
			GenerationRates:  map[Resource]int{Water: 180, Energy: 80, Food: 200, Tech: 20},
			ConsumptionRates: map[Resource]int{Water: 700, Energy: 400, Food: 900, Tech: 100},
			FinOps:           FinOpsMetrics{ProjectedDeficit: "energy", BudgetSurplus: -200, BurnRate: 0.22, RevenuePerTick: 1500, ExpenditurePerTick: 1700},
			Demographics:     Demographics{WorkforceEfficiency: 0.45, UnrestLevel: 0.30, MigrationPressure: 0.35, LiteracyRate: 0.62, Urbanization: 0.12},
			Infrastructure:   Infrastructure{SolarFarms: 0, Canals: 0, TechParks: 0, Hospitals: 0, Roads: 1, PowerPlants: 1},
			InternalPolicies: map[string]float64{"food_subsidy": 0.30, "water_tax": 0.02, "energy_tariff": 0.15, "tech_investment": 0.02},
		},
		"WB": {
			Code: "WB", Name: "West Bengal",
			Population: 100000000, GDPScore: 50.0, WelfareScore: 55.0, TrustScore: 100,
			Resources:        map[Resource]int{Water: 10000, Energy: 4000, Food: 7000, Tech: 3000},
			GenerationRates:  map[Resource]int{Water: 500, Energy: 180, Food: 350, Tech: 120},
			ConsumptionRates: map[Resource]int{Water: 600, Energy: 350, Food: 650, Tech: 150},
			FinOps:           FinOpsMetrics{ProjectedDeficit: "energy", BudgetSurplus: 1200, BurnRate: 0.11, RevenuePerTick: 4500, ExpenditurePerTick: 3300},
			Demographics:     Demographics{WorkforceEfficiency: 0.65, UnrestLevel: 0.18, MigrationPressure: 0.08, LiteracyRate: 0.77, Urbanization: 0.32},
			Infrastructure:   Infrastructure{SolarFarms: 0, Canals: 3, TechParks: 1, Hospitals: 1, Roads: 2, PowerPlants: 1},
			InternalPolicies: map[string]float64{"food_subsidy": 0.12, "water_tax": 0.03, "energy_tariff": 0.10, "tech_investment": 0.08},
		},
		"RJ": {
			Code: "RJ", Name: "Rajasthan",
			Population: 79000000, GDPScore: 42.0, WelfareScore: 50.0, TrustScore: 100,
			Resources:        map[Resource]int{Water: 1500, Energy: 14000, Food: 3000, Tech: 2000},
			GenerationRates:  map[Resource]int{Water: 30, Energy: 700, Food: 100, Tech: 100},
			ConsumptionRates: map[Resource]int{Water: 500, Energy: 200, Food: 500, Tech: 100},
			FinOps:           FinOpsMetrics{ProjectedDeficit: "water", BudgetSurplus: 1000, BurnRate: 0.14, RevenuePerTick: 3000, ExpenditurePerTick: 2000},
			Demographics:     Demographics{WorkforceEfficiency: 0.60, UnrestLevel: 0.20, MigrationPressure: 0.15, LiteracyRate: 0.66, Urbanization: 0.25},
			Infrastructure:   Infrastructure{SolarFarms: 5, Canals: 0, TechParks: 1, Hospitals: 1, Roads: 2, PowerPlants: 1},
			InternalPolicies: map[string]float64{"food_subsidy": 0.15, "water_tax": 0.25, "energy_tariff": 0.03, "tech_investment": 0.08},
		},
		"MP": {
			Code: "MP", Name: "Madhya Pradesh",
			Population: 85000000, GDPScore: 48.0, WelfareScore: 52.0, TrustScore: 100,
			Resources:        map[Resource]int{Water: 6500, Energy: 6000, Food: 6500, Tech: 3500},
			GenerationRates:  map[Resource]int{Water: 250, Energy: 280, Food: 300, Tech: 150},
			ConsumptionRates: map[Resource]int{Water: 500, Energy: 350, Food: 550, Tech: 120},
			FinOps:           FinOpsMetrics{BudgetSurplus: 1800, BurnRate: 0.10, RevenuePerTick: 4200, ExpenditurePerTick: 2400},
			Demographics:     Demographics{WorkforceEfficiency: 0.62, UnrestLevel: 0.12, MigrationPressure: 0.02, LiteracyRate: 0.70, Urbanization: 0.28},
			Infrastructure:   Infrastructure{SolarFarms: 1, Canals: 2, TechParks: 1, Hospitals: 1, Roads: 3, PowerPlants: 2},
			InternalPolicies: map[string]float64{"food_subsidy": 0.10, "water_tax": 0.06, "energy_tariff": 0.08, "tech_investment": 0.10},
		},
	}
}
