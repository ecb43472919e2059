// Package rates loads the margin hierarchy and VAT table as a versioned,
// immutable snapshot. Pricing calculations receive the snapshot as an
// argument and never read ambient configuration directly; configuration is
// edited elsewhere, and every edit bumps the version.
package rates

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/heliotek/offerwerk/internal/pricing"
)

// Store reads pricing configuration from sqlite.
type Store struct {
	db *sql.DB
}

// NewStore wraps a database handle into a configuration store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Scope identifiers as stored in margin_config.
const (
	scopeGlobal   = "global"
	scopeCategory = "category"
	scopeProduct  = "product"
)

// Snapshot assembles the current margin and VAT configuration together with
// its version. The caller holds the result for the duration of one
// calculation.
func (s *Store) Snapshot(ctx context.Context) (pricing.Snapshot, error) {
	snap := pricing.Snapshot{
		Margins: pricing.MarginTable{
			Category: make(map[string]pricing.MarginRule),
			Product:  make(map[string]pricing.MarginRule),
		},
	}

	version, err := s.version(ctx)
	if err != nil {
		return pricing.Snapshot{}, err
	}
	snap.Version = version

	if err := s.loadMargins(ctx, &snap); err != nil {
		return pricing.Snapshot{}, err
	}
	if err := s.loadVAT(ctx, &snap); err != nil {
		return pricing.Snapshot{}, err
	}

	return snap, nil
}

// Version returns the current configuration version without loading the
// full snapshot, for cheap cache validation.
func (s *Store) Version(ctx context.Context) (int64, error) {
	return s.version(ctx)
}

func (s *Store) version(ctx context.Context) (int64, error) {
	var version int64
	err := s.db.QueryRowContext(ctx, `SELECT version FROM config_meta WHERE id = 1`).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("config_meta singleton not found")
	}
	if err != nil {
		return 0, fmt.Errorf("query config version: %w", err)
	}
	return version, nil
}

func (s *Store) loadMargins(ctx context.Context, snap *pricing.Snapshot) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT scope, COALESCE(identifier, ''), margin_type, margin_value
		FROM margin_config
	`)
	if err != nil {
		return fmt.Errorf("query margin config: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var scope, identifier, marginType string
		var value float64
		if err := rows.Scan(&scope, &identifier, &marginType, &value); err != nil {
			return fmt.Errorf("scan margin config: %w", err)
		}

		rule := pricing.MarginRule{Type: pricing.MarginType(marginType), Value: value}
		switch scope {
		case scopeGlobal:
			global := rule
			snap.Margins.Global = &global
		case scopeCategory:
			snap.Margins.Category[identifier] = rule
		case scopeProduct:
			snap.Margins.Product[identifier] = rule
		default:
			return fmt.Errorf("margin config row has unrecognized scope %q", scope)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate margin config: %w", err)
	}
	return nil
}

func (s *Store) loadVAT(ctx context.Context, snap *pricing.Snapshot) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category, rate_percent, is_default
		FROM vat_rates
	`)
	if err != nil {
		return fmt.Errorf("query vat rates: %w", err)
	}
	defer rows.Close()

	snap.VAT.Categories = make(map[string]float64)
	for rows.Next() {
		var category string
		var rate float64
		var isDefault bool
		if err := rows.Scan(&category, &rate, &isDefault); err != nil {
			return fmt.Errorf("scan vat rate: %w", err)
		}
		if isDefault {
			snap.VAT.DefaultRate = rate
		}
		snap.VAT.Categories[category] = rate
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate vat rates: %w", err)
	}
	return nil
}
