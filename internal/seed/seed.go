// Package seed installs the default pricing configuration and a starter
// catalog on first boot. Every statement is idempotent; running the seed
// twice changes nothing.
package seed

import (
	"database/sql"
	"fmt"
)

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

type component struct {
	id, name, category, method string
	unitPrice, purchaseCost    float64
	technology                 string
	efficiencyPercent          float64
	warrantyYears              int
	capacityKWp                float64
}

var defaultComponents = []component{
	{"pv-module-430", "PV Modul 430 Wp", "module", "per_unit", 180.00, 144.00, "monocrystalline", 22.0, 25, 0.43},
	{"inverter-10k", "Hybrid Wechselrichter 10 kW", "inverter", "per_unit", 2450.00, 1890.00, "hybrid", 97.5, 10, 0},
	{"storage-10kwh", "Batteriespeicher 10 kWh", "storage", "per_unit", 4900.00, 3750.00, "lfp", 95.0, 10, 0},
	{"mounting-rail", "Montageschiene Alu", "mounting", "per_length", 12.50, 8.20, "", 0, 0, 0},
	{"solar-cable-6mm", "Solarkabel 6 mm²", "cabling", "per_length", 3.80, 2.10, "", 0, 0, 0},
	{"pv-installation", "Installation PV-Anlage", "installation", "lump_sum", 2800.00, 2100.00, "", 0, 0, 0},
	{"pv-planning", "Planung und Auslegung", "planning", "per_capacity", 95.00, 60.00, "", 0, 0, 0},
	{"heatpump-12kw", "Luft-Wasser-Wärmepumpe 12 kW", "heat_pump", "per_unit", 11500.00, 8900.00, "air_water", 0, 7, 12},
	{"buffer-tank-300", "Pufferspeicher 300 l", "buffer_tank", "per_unit", 1350.00, 980.00, "", 0, 5, 0},
	{"hydraulic-install", "Hydraulische Einbindung", "hydraulics", "lump_sum", 1900.00, 1400.00, "", 0, 0, 0},
}

type marginRow struct {
	scope, identifier, marginType string
	value                         float64
}

var defaultMargins = []marginRow{
	{"global", "", "percentage", 15},
	{"category", "module", "percentage", 25},
	{"category", "heat_pump", "percentage", 20},
	{"category", "installation", "percentage", 30},
}

type vatRow struct {
	category  string
	rate      float64
	isDefault bool
}

var defaultVATRates = []vatRow{
	{"standard", 19.0, true},
	{"reduced", 7.0, false},
	// Residential PV installations are zero-rated.
	{"pv_zero", 0.0, false},
}

// Run executes the startup seed in an idempotent way.
func Run(db *sql.DB) (Stats, error) {
	tx, err := db.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := seedComponents(tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := seedMargins(tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := seedVATRates(tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := seedConfigMeta(tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func seedComponents(tx *sql.Tx, stats *Stats) error {
	for _, c := range defaultComponents {
		result, err := tx.Exec(`
			INSERT INTO components (
				id, name, category, calculation_method, unit_price, purchase_cost,
				technology, efficiency_percent, warranty_years, capacity_kwp, active
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, TRUE)
			ON CONFLICT(id) DO NOTHING
		`, c.id, c.name, c.category, c.method, c.unitPrice, c.purchaseCost,
			c.technology, c.efficiencyPercent, c.warrantyYears, c.capacityKWp)
		if err != nil {
			return fmt.Errorf("insert component %s: %w", c.id, err)
		}
		countAffected(result, stats)
	}
	return nil
}

func seedMargins(tx *sql.Tx, stats *Stats) error {
	for _, m := range defaultMargins {
		result, err := tx.Exec(`
			INSERT INTO margin_config (scope, identifier, margin_type, margin_value)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(scope, identifier) DO NOTHING
		`, m.scope, m.identifier, m.marginType, m.value)
		if err != nil {
			return fmt.Errorf("insert margin config %s/%s: %w", m.scope, m.identifier, err)
		}
		countAffected(result, stats)
	}
	return nil
}

func seedVATRates(tx *sql.Tx, stats *Stats) error {
	for _, v := range defaultVATRates {
		result, err := tx.Exec(`
			INSERT INTO vat_rates (category, rate_percent, is_default)
			VALUES (?, ?, ?)
			ON CONFLICT(category) DO NOTHING
		`, v.category, v.rate, v.isDefault)
		if err != nil {
			return fmt.Errorf("insert vat rate %s: %w", v.category, err)
		}
		countAffected(result, stats)
	}
	return nil
}

func seedConfigMeta(tx *sql.Tx, stats *Stats) error {
	result, err := tx.Exec(`
		INSERT INTO config_meta (id, version) VALUES (1, 1)
		ON CONFLICT(id) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("insert config_meta singleton: %w", err)
	}
	countAffected(result, stats)
	return nil
}

func countAffected(result sql.Result, stats *Stats) {
	if affected, err := result.RowsAffected(); err == nil {
		stats.Inserts += int(affected)
	}
}
