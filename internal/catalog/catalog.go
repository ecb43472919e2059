package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a component id has no catalog entry.
var ErrNotFound = errors.New("component not found")

// Component is an immutable catalog entry. The pricing engine only reads it;
// catalog maintenance happens elsewhere.
type Component struct {
	ID       string
	Name     string
	Category string
	// Method is the raw calculation method string; the pricing engine
	// validates it against the closed method set.
	Method       string
	UnitPrice    float64
	PurchaseCost float64

	// Descriptive attributes. They feed offer documents and future
	// calculation variants but do not alter the base arithmetic.
	Technology        string
	EfficiencyPercent float64
	WarrantyYears     int
	CapacityKWp       float64

	Active bool
}

// Store reads components from the sqlite catalog.
type Store struct {
	db *sql.DB
}

// NewStore wraps a database handle into a read-only catalog store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const componentColumns = `
	id, name, category, calculation_method, unit_price, purchase_cost,
	COALESCE(technology, ''), COALESCE(efficiency_percent, 0),
	COALESCE(warranty_years, 0), COALESCE(capacity_kwp, 0), active
`

// Component fetches one catalog entry by id.
func (s *Store) Component(ctx context.Context, id string) (Component, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+componentColumns+`
		FROM components
		WHERE id = ?
	`, id)

	c, err := scanComponent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Component{}, fmt.Errorf("component %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return Component{}, fmt.Errorf("query component %q: %w", id, err)
	}
	return c, nil
}

// List returns all active catalog entries ordered by category and name.
func (s *Store) List(ctx context.Context) ([]Component, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+componentColumns+`
		FROM components
		WHERE active
		ORDER BY category, name
	`)
	if err != nil {
		return nil, fmt.Errorf("query components: %w", err)
	}
	defer rows.Close()

	components := make([]Component, 0)
	for rows.Next() {
		c, err := scanComponent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan component: %w", err)
		}
		components = append(components, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate components: %w", err)
	}

	return components, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanComponent(row rowScanner) (Component, error) {
	var c Component
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Category,
		&c.Method,
		&c.UnitPrice,
		&c.PurchaseCost,
		&c.Technology,
		&c.EfficiencyPercent,
		&c.WarrantyYears,
		&c.CapacityKWp,
		&c.Active,
	)
	return c, err
}
