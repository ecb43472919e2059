package pricing

import (
	"math"
	"testing"
)

func TestVATTableCategoryFallsBackToDefault(t *testing.T) {
	table := VATTable{
		DefaultRate: 19,
		Categories:  map[string]float64{"reduced": 7, "pv_zero": 0},
	}

	nearlyEqual(t, "reduced", table.RateFor("reduced"), 7)
	nearlyEqual(t, "pv_zero", table.RateFor("pv_zero"), 0)
	nearlyEqual(t, "unknown falls back", table.RateFor("accessories"), 19)
	nearlyEqual(t, "empty falls back", table.RateFor(""), 19)
}

func TestVATGrossFromNet(t *testing.T) {
	nearlyEqual(t, "gross", GrossFromNet(1000, 19), 1190)
	nearlyEqual(t, "zero rate", GrossFromNet(1000, 0), 1000)
}

func TestVATRoundTripWithinTolerance(t *testing.T) {
	for _, net := range []float64{0, 0.01, 12.34, 928.50, 19999.99} {
		for _, rate := range []float64{0, 7, 19} {
			back := NetFromGross(GrossFromNet(net, rate), rate)
			if math.Abs(back-net) > 0.01 {
				t.Fatalf("round trip net=%v rate=%v drifted to %v", net, rate, back)
			}
		}
	}
}
