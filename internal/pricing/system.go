package pricing

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/heliotek/offerwerk/internal/audit"
	"github.com/heliotek/offerwerk/internal/catalog"
)

// SystemKind selects the subsystem variant of the pricing engine.
type SystemKind string

const (
	SystemPV       SystemKind = "pv"
	SystemHeatPump SystemKind = "heat_pump"
)

// systemCategories lists the component categories each subsystem accepts.
// A component outside its subsystem's set is skipped with a warning so a
// partial offer can still be produced.
var systemCategories = map[SystemKind]map[string]bool{
	SystemPV: {
		"module":       true,
		"inverter":     true,
		"storage":      true,
		"mounting":     true,
		"cabling":      true,
		"installation": true,
		"planning":     true,
		"service":      true,
	},
	SystemHeatPump: {
		"heat_pump":    true,
		"buffer_tank":  true,
		"hydraulics":   true,
		"accessories":  true,
		"installation": true,
		"planning":     true,
		"service":      true,
	},
}

// ItemRequest names one catalog component and its quantity. The quantity is
// interpreted per the component's calculation method.
type ItemRequest struct {
	ComponentID    string      `json:"component_id"`
	Quantity       float64     `json:"quantity"`
	MarginOverride *MarginRule `json:"margin_override,omitempty"`
}

// Subsidy is an additive fixed credit, for instance a heat-pump grant. It
// participates in the ordered modification formula as a fixed discount, not
// as a separate arithmetic.
type Subsidy struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// Request is the full input of one subsystem calculation.
type Request struct {
	System            SystemKind     `json:"system"`
	Actor             string         `json:"actor,omitempty"`
	Items             []ItemRequest  `json:"items"`
	SystemCapacityKWp float64        `json:"system_capacity_kwp,omitempty"`
	Modifications     []Modification `json:"modifications,omitempty"`
	Subsidies         []Subsidy      `json:"subsidies,omitempty"`
	// VATCategory selects the VAT rate; empty means the default rate.
	VATCategory string `json:"vat_category,omitempty"`
}

// Breakdown is the immutable result of one subsystem calculation. A
// re-calculation produces a new Breakdown; nothing mutates one in place.
type Breakdown struct {
	System      SystemKind    `json:"system"`
	Lines       []LineItem    `json:"lines"`
	Subtotal    float64       `json:"subtotal"`
	Ledger      []LedgerEntry `json:"ledger"`
	NetTotal    float64       `json:"net_total"`
	VATCategory string        `json:"vat_category"`
	VATRate     float64       `json:"vat_rate"`
	VATAmount   float64       `json:"vat_amount"`
	GrossTotal  float64       `json:"gross_total"`
	Warnings    []string      `json:"warnings,omitempty"`
}

// Snapshot is the versioned, immutable-for-the-call configuration a
// calculation runs against. The engine never reaches into ambient mutable
// configuration directly.
type Snapshot struct {
	Version int64
	Margins MarginTable
	VAT     VATTable
}

// CatalogReader is the read-only catalog collaborator.
type CatalogReader interface {
	Component(ctx context.Context, id string) (catalog.Component, error)
}

// Engine orchestrates unit-price resolution, margin resolution,
// modifications and VAT over a component list.
type Engine struct {
	catalog CatalogReader
	sink    audit.Sink
	log     *zap.Logger
}

// NewEngine assembles an engine. A nil sink disables auditing, a nil logger
// disables logging.
func NewEngine(cat CatalogReader, sink audit.Sink, log *zap.Logger) *Engine {
	if sink == nil {
		sink = audit.NopSink{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{catalog: cat, sink: sink, log: log}
}

const defaultActor = "pricing-engine"

// Calculate produces the full breakdown for one subsystem.
func (e *Engine) Calculate(ctx context.Context, req Request, snap Snapshot) (*Breakdown, error) {
	accepted, ok := systemCategories[req.System]
	if !ok {
		return nil, configErrorf("system", "unrecognized system kind %q", string(req.System))
	}

	actor := req.Actor
	if actor == "" {
		actor = defaultActor
	}

	b := &Breakdown{
		System:      req.System,
		Lines:       make([]LineItem, 0, len(req.Items)),
		VATCategory: req.VATCategory,
	}

	for _, item := range req.Items {
		comp, err := e.catalog.Component(ctx, item.ComponentID)
		if errors.Is(err, catalog.ErrNotFound) {
			// One missing input never aborts the whole offer.
			warning := fmt.Sprintf("component %s not found in catalog, line skipped", item.ComponentID)
			b.Warnings = append(b.Warnings, warning)
			e.log.Warn("catalog lookup miss", zap.String("component_id", item.ComponentID), zap.String("system", string(req.System)))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("resolve component %s: %w", item.ComponentID, err)
		}

		if !accepted[comp.Category] {
			warning := fmt.Sprintf("component %s has category %q not accepted by %s system, line skipped", comp.ID, comp.Category, req.System)
			b.Warnings = append(b.Warnings, warning)
			e.log.Warn("component category rejected", zap.String("component_id", comp.ID), zap.String("category", comp.Category))
			continue
		}

		line, err := priceLine(comp, Context{
			Quantity:          item.Quantity,
			SystemCapacityKWp: req.SystemCapacityKWp,
			MarginOverride:    item.MarginOverride,
		}, snap.Margins)
		if err != nil {
			return nil, err
		}

		if line.MarginScope != ScopeNone && line.Total != line.PurchaseCost {
			e.sink.Record(audit.NewEntry(actor, comp.ID, "selling_price", line.PurchaseCost, line.Total,
				fmt.Sprintf("margin %s (%s scope)", line.MarginRule.describe(), line.MarginScope)))
		}

		b.Warnings = append(b.Warnings, line.Warnings...)
		b.Lines = append(b.Lines, line)
		b.Subtotal += line.Total
	}

	mods := append([]Modification(nil), req.Modifications...)
	for _, sub := range req.Subsidies {
		mods = append(mods, Modification{
			Kind:  KindDiscount,
			Mode:  ModeFixed,
			Value: sub.Amount,
			Label: sub.Label,
		})
	}

	net, ledger, err := ApplyModifications(b.Subtotal, mods)
	if err != nil {
		return nil, err
	}
	b.Ledger = ledger
	b.NetTotal = net
	for _, entry := range ledger {
		reason := entry.Label
		if entry.Clamp {
			reason = clampLabel
			b.Warnings = append(b.Warnings, fmt.Sprintf("%s system: negative final price clamped to zero", req.System))
		}
		e.sink.Record(audit.NewEntry(actor, string(req.System), "running_price", entry.Before, entry.After, reason))
	}

	b.VATRate = snap.VAT.RateFor(req.VATCategory)
	b.GrossTotal = GrossFromNet(b.NetTotal, b.VATRate)
	b.VATAmount = b.GrossTotal - b.NetTotal
	if b.VATAmount != 0 {
		e.sink.Record(audit.NewEntry(actor, string(req.System), "gross_total", b.NetTotal, b.GrossTotal,
			fmt.Sprintf("vat %.2f%% (category %q)", b.VATRate, req.VATCategory)))
	}

	return b, nil
}
