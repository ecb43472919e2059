package pricing

import (
	"fmt"

	"github.com/heliotek/offerwerk/internal/catalog"
)

// LineItem is the priced result of a single component.
type LineItem struct {
	ComponentID string  `json:"component_id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Method      Method  `json:"calculation_method"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	// ListTotal is the catalog unit price scaled by the calculation
	// method, shown on offers as the list price of the line.
	ListTotal float64 `json:"list_total"`
	// PurchaseCost is the quantity-scaled purchase cost the margin was
	// applied to.
	PurchaseCost float64    `json:"purchase_cost"`
	MarginScope  string     `json:"margin_scope"`
	MarginRule   MarginRule `json:"margin_rule"`
	// Total is the selling price of the line.
	Total    float64  `json:"total"`
	Warnings []string `json:"warnings,omitempty"`
}

// priceLine combines unit-price resolution and margin resolution for one
// component. The purchase cost is scaled by the same calculation method
// before the margin formula runs: scale first, margin second. Applying the
// margin to the unit cost and scaling afterwards only coincides for
// per-unit components.
func priceLine(comp catalog.Component, pctx Context, margins MarginTable) (LineItem, error) {
	method, err := ParseMethod(comp.Method)
	if err != nil {
		return LineItem{}, err
	}

	item := LineItem{
		ComponentID: comp.ID,
		Name:        comp.Name,
		Category:    comp.Category,
		Method:      method,
		Quantity:    pctx.Quantity,
		UnitPrice:   comp.UnitPrice,
	}

	listTotal, err := resolveAmount(comp.UnitPrice, method, pctx)
	if err != nil {
		return LineItem{}, err
	}
	item.ListTotal = listTotal

	scaledCost, err := resolveAmount(comp.PurchaseCost, method, pctx)
	if err != nil {
		return LineItem{}, err
	}
	item.PurchaseCost = scaledCost

	rule, scope := margins.Effective(comp.ID, comp.Category)
	if pctx.MarginOverride != nil {
		rule, scope = *pctx.MarginOverride, ScopeOverride
	}
	item.MarginRule = rule
	item.MarginScope = scope

	selling, clamped, err := applyMargin(scaledCost, rule)
	if err != nil {
		return LineItem{}, err
	}
	if clamped {
		item.Warnings = append(item.Warnings, fmt.Sprintf(
			"component %s: margin %s would price below zero, clamped to purchase cost", comp.ID, rule.describe()))
	}
	item.Total = selling

	return item, nil
}
