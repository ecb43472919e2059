package audit

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one append-only record of a price-affecting change. Entries are
// never edited or deleted.
type Entry struct {
	ID        uuid.UUID
	Timestamp time.Time
	Actor     string
	EntityID  string
	Field     string
	OldValue  float64
	NewValue  float64
	Reason    string
}

// NewEntry stamps an entry with a fresh id and the current time.
func NewEntry(actor, entityID, field string, oldValue, newValue float64, reason string) Entry {
	return Entry{
		ID:        uuid.New(),
		Timestamp: time.Now().UTC(),
		Actor:     actor,
		EntityID:  entityID,
		Field:     field,
		OldValue:  oldValue,
		NewValue:  newValue,
		Reason:    reason,
	}
}

// Sink accepts audit entries. Implementations must never block the pricing
// calculation; persistence is best-effort relative to the primary result.
type Sink interface {
	Record(Entry)
}

// NopSink discards every entry. Useful in tests and offline calculations.
type NopSink struct{}

func (NopSink) Record(Entry) {}
