package audit

import (
	"database/sql"
	"fmt"
)

// Store persists audit entries in the append-only audit_log table.
type Store struct {
	db *sql.DB
}

// NewStore wraps a database handle into an audit store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Insert appends one entry. There is no update or delete path.
func (s *Store) Insert(e Entry) error {
	_, err := s.db.Exec(`
		INSERT INTO audit_log (id, recorded_at, actor, entity_id, field, old_value, new_value, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID.String(), e.Timestamp.Format("2006-01-02 15:04:05.000"), e.Actor, e.EntityID, e.Field, e.OldValue, e.NewValue, e.Reason)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}
