package pricing

import (
	"context"
	"fmt"

	"github.com/heliotek/offerwerk/internal/audit"
)

// CombinedRequest prices a PV system and a heat-pump system as one offer
// with its own modification layer on top.
type CombinedRequest struct {
	Actor         string         `json:"actor,omitempty"`
	PV            Request        `json:"pv"`
	HeatPump      Request        `json:"heat_pump"`
	Modifications []Modification `json:"modifications,omitempty"`
}

// CombinedBreakdown holds both subsystem breakdowns next to the combined
// totals; the renderer shows per-subsystem figures alongside the combined
// ones.
type CombinedBreakdown struct {
	PV       *Breakdown `json:"pv"`
	HeatPump *Breakdown `json:"heat_pump"`
	// Subtotal is the sum of the subsystem net totals before the combined
	// modification pass.
	Subtotal   float64       `json:"subtotal"`
	Ledger     []LedgerEntry `json:"ledger"`
	NetTotal   float64       `json:"net_total"`
	VATAmount  float64       `json:"vat_amount"`
	GrossTotal float64       `json:"gross_total"`
	Warnings   []string      `json:"warnings,omitempty"`
}

const combinedEntity = "combined"

// CalculateCombined runs both subsystem engines independently and applies a
// second modification pass on the sum of their net totals. The subsystem
// breakdowns are exactly what a standalone calculation would produce.
//
// Combined VAT follows the proportional rule: when the combined pass
// changes the net total by some factor, each subsystem's VAT shrinks or
// grows by the same factor, so mixed VAT rates stay consistent.
func (e *Engine) CalculateCombined(ctx context.Context, req CombinedRequest, snap Snapshot) (*CombinedBreakdown, error) {
	pvReq := req.PV
	pvReq.System = SystemPV
	if pvReq.Actor == "" {
		pvReq.Actor = req.Actor
	}
	pv, err := e.Calculate(ctx, pvReq, snap)
	if err != nil {
		return nil, fmt.Errorf("pv subsystem: %w", err)
	}

	hpReq := req.HeatPump
	hpReq.System = SystemHeatPump
	if hpReq.Actor == "" {
		hpReq.Actor = req.Actor
	}
	hp, err := e.Calculate(ctx, hpReq, snap)
	if err != nil {
		return nil, fmt.Errorf("heat pump subsystem: %w", err)
	}

	cb := &CombinedBreakdown{
		PV:       pv,
		HeatPump: hp,
		Subtotal: pv.NetTotal + hp.NetTotal,
	}
	cb.Warnings = append(cb.Warnings, pv.Warnings...)
	cb.Warnings = append(cb.Warnings, hp.Warnings...)

	net, ledger, err := ApplyModifications(cb.Subtotal, req.Modifications)
	if err != nil {
		return nil, err
	}
	cb.Ledger = ledger
	cb.NetTotal = net

	actor := req.Actor
	if actor == "" {
		actor = defaultActor
	}
	for _, entry := range ledger {
		reason := entry.Label
		if entry.Clamp {
			reason = clampLabel
			cb.Warnings = append(cb.Warnings, "combined system: negative final price clamped to zero")
		}
		e.sink.Record(audit.NewEntry(actor, combinedEntity, "running_price", entry.Before, entry.After, reason))
	}

	multiplier := 1.0
	if cb.Subtotal > 0 {
		multiplier = cb.NetTotal / cb.Subtotal
	}
	cb.VATAmount = (pv.VATAmount + hp.VATAmount) * multiplier
	cb.GrossTotal = cb.NetTotal + cb.VATAmount
	if cb.VATAmount != 0 {
		e.sink.Record(audit.NewEntry(actor, combinedEntity, "gross_total", cb.NetTotal, cb.GrossTotal, "vat scaled proportionally across subsystems"))
	}

	return cb, nil
}
