package fare

import "testing"

func TestEstimatePerTier(t *testing.T) {
	cases := []struct {
		rideType string
		miles    float64
		want     float64
	}{
		{"economy", 10, 14.50},
		{"standard", 10, 17.50},
		{"premium", 10, 22.50},
		{"xl", 10, 27.50},
		{"standard", 0, 2.50},
		{"standard", 3.333, 7.50}, // rounded to cents
	}
	for _, c := range cases {
		got, err := Estimate(c.miles, c.rideType)
		if err != nil {
			t.Fatalf("Estimate(%v, %s): %v", c.miles, c.rideType, err)
		}
		if got != c.want {
			t.Errorf("Estimate(%v, %s) = %.2f, want %.2f", c.miles, c.rideType, got, c.want)
		}
	}
}

func TestEstimateRejectsBadInput(t *testing.T) {
	if _, err := Estimate(5, "helicopter"); err == nil {
		t.Fatal("expected error for unknown ride type")
	}
	if _, err := Estimate(-1, "standard"); err == nil {
		t.Fatal("expected error for negative distance")
	}
}

func TestLookupCoversAllTypes(t *testing.T) {
	for _, typ := range Types() {
		got, ok := Lookup(typ.ID)
		if !ok || got.PerMile != typ.PerMile {
			t.Fatalf("Lookup(%s) = %+v ok=%v", typ.ID, got, ok)
		}
	}
}
