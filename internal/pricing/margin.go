package pricing

import "fmt"

// MarginType distinguishes percentage margins from fixed amounts.
type MarginType string

const (
	MarginPercentage MarginType = "percentage"
	MarginFixed      MarginType = "fixed"
)

// MarginRule is one margin configuration entry.
type MarginRule struct {
	Type  MarginType `json:"type"`
	Value float64    `json:"value"`
}

// Margin scopes in override priority order.
const (
	ScopeOverride = "override"
	ScopeProduct  = "product"
	ScopeCategory = "category"
	ScopeGlobal   = "global"
	ScopeNone     = "none"
)

// MarginTable holds the three-tier margin configuration of one snapshot.
// It is read-only for the duration of a calculation.
type MarginTable struct {
	Global   *MarginRule
	Category map[string]MarginRule
	Product  map[string]MarginRule
}

// Effective returns the margin rule chosen by product > category > global
// priority, along with the scope it came from. When no tier configures a
// margin the zero rule is returned with ScopeNone: selling price equals
// purchase cost.
func (t MarginTable) Effective(componentID, category string) (MarginRule, string) {
	if rule, ok := t.Product[componentID]; ok {
		return rule, ScopeProduct
	}
	if rule, ok := t.Category[category]; ok {
		return rule, ScopeCategory
	}
	if t.Global != nil {
		return *t.Global, ScopeGlobal
	}
	return MarginRule{Type: MarginPercentage, Value: 0}, ScopeNone
}

// applyMargin turns a quantity-scaled purchase cost into a selling price.
// A negative selling price is clamped to the purchase cost; the caller
// records the clamp as a warning, not an error.
func applyMargin(cost float64, rule MarginRule) (float64, bool, error) {
	var selling float64
	switch rule.Type {
	case MarginPercentage:
		selling = cost * (1 + rule.Value/100)
	case MarginFixed:
		selling = cost + rule.Value
	default:
		return 0, false, configErrorf("margin_type", "unrecognized margin type %q", string(rule.Type))
	}

	if selling < 0 {
		return cost, true, nil
	}
	return selling, false, nil
}

func (r MarginRule) describe() string {
	if r.Type == MarginFixed {
		return fmt.Sprintf("fixed %+.2f", r.Value)
	}
	return fmt.Sprintf("%.2f%%", r.Value)
}
