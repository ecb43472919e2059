package pricing

import (
	"errors"
	"math"
	"testing"
)

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func TestParseMethodRejectsUnknownMethod(t *testing.T) {
	_, err := ParseMethod("per_weight")

	var confErr *ConfigurationError
	if !errors.As(err, &confErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if confErr.Field != "calculation_method" {
		t.Fatalf("expected field calculation_method, got %q", confErr.Field)
	}
}

func TestResolveAmountPerUnitIsLinear(t *testing.T) {
	q1, err := resolveAmount(180, MethodPerUnit, Context{Quantity: 7})
	if err != nil {
		t.Fatalf("resolve q=7: %v", err)
	}
	q2, err := resolveAmount(180, MethodPerUnit, Context{Quantity: 13})
	if err != nil {
		t.Fatalf("resolve q=13: %v", err)
	}
	sum, err := resolveAmount(180, MethodPerUnit, Context{Quantity: 20})
	if err != nil {
		t.Fatalf("resolve q=20: %v", err)
	}

	nearlyEqual(t, "resolve(7)+resolve(13)", q1+q2, sum)
}

func TestResolveAmountPerUnitZeroQuantityIsZeroNotError(t *testing.T) {
	amount, err := resolveAmount(180, MethodPerUnit, Context{Quantity: 0})
	if err != nil {
		t.Fatalf("quantity 0 must not error: %v", err)
	}
	nearlyEqual(t, "amount", amount, 0)
}

func TestResolveAmountNegativeQuantityFails(t *testing.T) {
	if _, err := resolveAmount(180, MethodPerUnit, Context{Quantity: -1}); err == nil {
		t.Fatal("expected error for negative per-unit quantity")
	}
	if _, err := resolveAmount(12.5, MethodPerLength, Context{Quantity: -0.5}); err == nil {
		t.Fatal("expected error for negative per-length length")
	}
}

func TestResolveAmountPerLengthAllowsFractionalMeters(t *testing.T) {
	amount, err := resolveAmount(12.5, MethodPerLength, Context{Quantity: 3.2})
	if err != nil {
		t.Fatalf("resolve fractional length: %v", err)
	}
	nearlyEqual(t, "amount", amount, 40)
}

func TestResolveAmountLumpSumIgnoresQuantity(t *testing.T) {
	one, err := resolveAmount(2800, MethodLumpSum, Context{Quantity: 1})
	if err != nil {
		t.Fatalf("resolve q=1: %v", err)
	}
	thousand, err := resolveAmount(2800, MethodLumpSum, Context{Quantity: 1000})
	if err != nil {
		t.Fatalf("resolve q=1000: %v", err)
	}

	nearlyEqual(t, "lump sum q=1", one, 2800)
	nearlyEqual(t, "lump sum q=1000", thousand, 2800)
}

func TestResolveAmountPerCapacityScalesBySystemSize(t *testing.T) {
	amount, err := resolveAmount(95, MethodPerCapacity, Context{Quantity: 1, SystemCapacityKWp: 8.6})
	if err != nil {
		t.Fatalf("resolve per-capacity: %v", err)
	}
	nearlyEqual(t, "amount", amount, 817)
}

func TestResolveAmountPerCapacityRequiresPositiveCapacity(t *testing.T) {
	for _, capacity := range []float64{0, -4.3} {
		_, err := resolveAmount(95, MethodPerCapacity, Context{SystemCapacityKWp: capacity})

		var confErr *ConfigurationError
		if !errors.As(err, &confErr) {
			t.Fatalf("capacity %v: expected ConfigurationError, got %v", capacity, err)
		}
	}
}
