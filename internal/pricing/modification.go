package pricing

// ModKind distinguishes discounts from surcharges.
type ModKind string

const (
	KindDiscount  ModKind = "discount"
	KindSurcharge ModKind = "surcharge"
)

// ModMode distinguishes percentage modifications from fixed amounts.
type ModMode string

const (
	ModePercentage ModMode = "percentage"
	ModeFixed      ModMode = "fixed"
)

// Modification is one discount or surcharge applied to a subtotal.
type Modification struct {
	Kind  ModKind `json:"kind"`
	Mode  ModMode `json:"mode"`
	Value float64 `json:"value"`
	Label string  `json:"label"`
}

// LedgerEntry records the running price before and after one applied
// modification, for audit and offer display.
type LedgerEntry struct {
	Label  string  `json:"label"`
	Kind   ModKind `json:"kind,omitempty"`
	Mode   ModMode `json:"mode,omitempty"`
	Value  float64 `json:"value"`
	Before float64 `json:"before"`
	After  float64 `json:"after"`
	// Clamp marks the synthetic entry written when a negative final price
	// was floored at zero.
	Clamp bool `json:"clamp,omitempty"`
}

const clampLabel = "price floored at zero"

// ApplyModifications applies an ordered modification set to a subtotal using
// the documented business formula
//
//	(Base) × (1-Disc%) × (1+Sur%) − FixedDisc + FixedSur
//
// The four stages run in that fixed order regardless of how the caller
// assembled the list; entries of the same stage apply cumulatively in list
// order. The result is floored at zero, and the floor is recorded in the
// ledger as a clamp event.
func ApplyModifications(subtotal float64, mods []Modification) (float64, []LedgerEntry, error) {
	for _, m := range mods {
		if m.Kind != KindDiscount && m.Kind != KindSurcharge {
			return 0, nil, configErrorf("modification_kind", "unrecognized modification kind %q", string(m.Kind))
		}
		if m.Mode != ModePercentage && m.Mode != ModeFixed {
			return 0, nil, configErrorf("modification_mode", "unrecognized modification mode %q", string(m.Mode))
		}
		if m.Value < 0 {
			return 0, nil, configErrorf("modification_value", "modification %q has negative value %v", m.Label, m.Value)
		}
	}

	price := subtotal
	ledger := make([]LedgerEntry, 0, len(mods)+1)

	apply := func(m Modification) {
		before := price
		switch {
		case m.Mode == ModePercentage && m.Kind == KindDiscount:
			price *= 1 - m.Value/100
		case m.Mode == ModePercentage && m.Kind == KindSurcharge:
			price *= 1 + m.Value/100
		case m.Mode == ModeFixed && m.Kind == KindDiscount:
			price -= m.Value
		case m.Mode == ModeFixed && m.Kind == KindSurcharge:
			price += m.Value
		}
		ledger = append(ledger, LedgerEntry{
			Label:  m.Label,
			Kind:   m.Kind,
			Mode:   m.Mode,
			Value:  m.Value,
			Before: before,
			After:  price,
		})
	}

	// Stage order is load-bearing; see the formula above.
	for _, stage := range []struct {
		mode ModMode
		kind ModKind
	}{
		{ModePercentage, KindDiscount},
		{ModePercentage, KindSurcharge},
		{ModeFixed, KindDiscount},
		{ModeFixed, KindSurcharge},
	} {
		for _, m := range mods {
			if m.Mode == stage.mode && m.Kind == stage.kind {
				apply(m)
			}
		}
	}

	if price < 0 {
		ledger = append(ledger, LedgerEntry{
			Label:  clampLabel,
			Before: price,
			After:  0,
			Clamp:  true,
		})
		price = 0
	}

	return price, ledger, nil
}
