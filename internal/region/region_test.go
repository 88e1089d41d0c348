package region

import "testing"

func TestSeedCanonicalOrder(t *testing.T) {
	l := Seed()
	if len(l) != 10 {
		t.Fatalf("seed regions = %d, want 10", len(l))
	}
	got := l.CodesPresent()
	if len(got) != len(Codes) {
		t.Fatalf("CodesPresent returned %d codes, want %d", len(got), len(Codes))
	}
	for i, code := range Codes {
		if got[i] != code {
			t.Fatalf("CodesPresent[%d] = %s, want %s", i, got[i], code)
		}
		if l[code].Code != code {
			t.Errorf("region %s carries code %s", code, l[code].Code)
		}
		if l[code].TrustScore != 100 {
			t.Errorf("region %s seed trust = %v, want 100", code, l[code].TrustScore)
		}
	}
}

func TestAdjustStockClampsAtZero(t *testing.T) {
	r := Seed()["RJ"]
	r.AdjustStock(Water, -999999)
	if got := r.Stock(Water); got != 0 {
		t.Fatalf("water after oversized drain = %d, want 0", got)
	}
	r.AdjustStock(Water, 250)
	if got := r.Stock(Water); got != 250 {
		t.Fatalf("water after refill = %d, want 250", got)
	}
}

func TestAdjustTrustClamps(t *testing.T) {
	r := Seed()["PB"]
	r.AdjustTrust(50)
	if r.TrustScore != 100 {
		t.Fatalf("trust above cap = %v, want 100", r.TrustScore)
	}
	r.AdjustTrust(-500)
	if r.TrustScore != 0 {
		t.Fatalf("trust below floor = %v, want 0", r.TrustScore)
	}
}

func TestCloneDoesNotAliasLedger(t *testing.T) {
	l := Seed()
	cp := l.Clone()

	l["PB"].AdjustStock(Food, -1000)
	l["PB"].Population += 5
	l["PB"].InternalPolicies["food_subsidy"] = 0.99

	if cp["PB"].Stock(Food) != 15000 {
		t.Fatalf("clone food mutated to %d", cp["PB"].Stock(Food))
	}
	if cp["PB"].Population != 28000000 {
		t.Fatalf("clone population mutated to %d", cp["PB"].Population)
	}
	if cp["PB"].InternalPolicies["food_subsidy"] != 0.15 {
		t.Fatalf("clone policy mutated to %v", cp["PB"].InternalPolicies["food_subsidy"])
	}
}

func TestTotalPopulation(t *testing.T) {
	l := Seed()
	if got := l.TotalPopulation(); got != 980000000 {
		t.Fatalf("total population = %d, want 980000000", got)
	}
}
