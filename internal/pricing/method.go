package pricing

// Method identifies the unit-pricing convention of a catalog component.
// The set is closed: adding a method means extending resolveAmount, not
// adding another string comparison somewhere else.
type Method string

const (
	// MethodPerUnit prices by piece count.
	MethodPerUnit Method = "per_unit"
	// MethodPerLength prices by length in meters; fractional lengths are fine.
	MethodPerLength Method = "per_length"
	// MethodLumpSum is a flat price; the quantity is ignored, never multiplied.
	MethodLumpSum Method = "lump_sum"
	// MethodPerCapacity prices by system capacity in kWp.
	MethodPerCapacity Method = "per_capacity"
)

// ParseMethod validates a raw calculation method string from the catalog.
// Unknown methods fail loudly; a silent per-unit fallback has caused real
// pricing bugs in the past.
func ParseMethod(raw string) (Method, error) {
	switch Method(raw) {
	case MethodPerUnit, MethodPerLength, MethodLumpSum, MethodPerCapacity:
		return Method(raw), nil
	}
	return "", configErrorf("calculation_method", "unrecognized calculation method %q", raw)
}

// Context carries the per-calculation inputs of a single component resolution.
type Context struct {
	// Quantity is a count for per-unit components and a length in meters for
	// per-length components. Lump-sum and per-capacity components ignore it.
	Quantity float64
	// SystemCapacityKWp is required for per-capacity components only.
	SystemCapacityKWp float64
	// MarginOverride, when set, wins over every configured margin scope.
	MarginOverride *MarginRule
}

// resolveAmount scales a unit price (selling or purchase) according to the
// calculation method. Both sides of a line item go through the same scaling
// so margin semantics stay stable with varying quantities.
func resolveAmount(price float64, method Method, pctx Context) (float64, error) {
	switch method {
	case MethodPerUnit:
		if pctx.Quantity < 0 {
			return 0, configErrorf("quantity", "per-unit quantity must not be negative, got %v", pctx.Quantity)
		}
		return price * pctx.Quantity, nil
	case MethodPerLength:
		if pctx.Quantity < 0 {
			return 0, configErrorf("quantity", "per-length length must not be negative, got %v", pctx.Quantity)
		}
		return price * pctx.Quantity, nil
	case MethodLumpSum:
		return price, nil
	case MethodPerCapacity:
		if pctx.SystemCapacityKWp <= 0 {
			return 0, configErrorf("system_capacity_kwp", "per-capacity pricing requires a positive system capacity, got %v", pctx.SystemCapacityKWp)
		}
		return price * pctx.SystemCapacityKWp, nil
	}
	return 0, configErrorf("calculation_method", "unrecognized calculation method %q", string(method))
}
