package keys

import (
	"fmt"

	"github.com/heliotek/offerwerk/internal/pricing"
)

// Key prefixes per breakdown scope.
const (
	PrefixPV       = "PV"
	PrefixHeatPump = "HP"
	PrefixCombined = "COMBINED"
)

// FromBreakdown registers every number of a subsystem breakdown under the
// given prefix. Key names derive deterministically from structural paths;
// identical breakdowns always yield identical key sets.
func FromBreakdown(r *Registry, prefix string, b *pricing.Breakdown) error {
	source := fmt.Sprintf("%s breakdown", b.System)

	totals := []struct {
		suffix    string
		value     float64
		formatted string
	}{
		{"SUBTOTAL", b.Subtotal, FormatEUR(b.Subtotal)},
		{"NET_TOTAL", b.NetTotal, FormatEUR(b.NetTotal)},
		{"VAT_RATE", b.VATRate, FormatPercent(b.VATRate)},
		{"VAT_AMOUNT", b.VATAmount, FormatEUR(b.VATAmount)},
		{"GROSS_TOTAL", b.GrossTotal, FormatEUR(b.GrossTotal)},
	}
	for _, t := range totals {
		if err := r.Register(prefix+"_"+t.suffix, t.value, t.formatted, "totals", source); err != nil {
			return err
		}
	}

	for _, line := range b.Lines {
		base := prefix + "_" + Normalize(line.Name)
		lineSource := fmt.Sprintf("%s line item %s", b.System, line.ComponentID)

		if err := r.Register(base+"_QUANTITY", line.Quantity, FormatNumber(line.Quantity), line.Category, lineSource); err != nil {
			return err
		}
		if err := r.Register(base+"_UNIT_PRICE", line.UnitPrice, FormatEUR(line.UnitPrice), line.Category, lineSource); err != nil {
			return err
		}
		if err := r.Register(base+"_TOTAL", line.Total, FormatEUR(line.Total), line.Category, lineSource); err != nil {
			return err
		}
	}

	return registerLedger(r, prefix, string(b.System)+" ledger", b.Ledger)
}

// FromCombined builds the complete key set of a combined offer: both
// subsystem namespaces plus the combined totals and ledger.
func FromCombined(cb *pricing.CombinedBreakdown) (*Registry, error) {
	r := NewRegistry()
	if err := FromBreakdown(r, PrefixPV, cb.PV); err != nil {
		return nil, err
	}
	if err := FromBreakdown(r, PrefixHeatPump, cb.HeatPump); err != nil {
		return nil, err
	}

	source := "combined breakdown"
	totals := []struct {
		suffix    string
		value     float64
		formatted string
	}{
		{"SUBTOTAL", cb.Subtotal, FormatEUR(cb.Subtotal)},
		{"NET_TOTAL", cb.NetTotal, FormatEUR(cb.NetTotal)},
		{"VAT_AMOUNT", cb.VATAmount, FormatEUR(cb.VATAmount)},
		{"GROSS_TOTAL", cb.GrossTotal, FormatEUR(cb.GrossTotal)},
	}
	for _, t := range totals {
		if err := r.Register(PrefixCombined+"_"+t.suffix, t.value, t.formatted, "totals", source); err != nil {
			return nil, err
		}
	}

	if err := registerLedger(r, PrefixCombined, "combined ledger", cb.Ledger); err != nil {
		return nil, err
	}
	return r, nil
}

func registerLedger(r *Registry, prefix, source string, ledger []pricing.LedgerEntry) error {
	for _, entry := range ledger {
		base := prefix + "_MOD_" + Normalize(entry.Label)
		if err := r.Register(base+"_BEFORE", entry.Before, FormatEUR(entry.Before), "modifications", source); err != nil {
			return err
		}
		if err := r.Register(base+"_AFTER", entry.After, FormatEUR(entry.After), "modifications", source); err != nil {
			return err
		}
	}
	return nil
}
