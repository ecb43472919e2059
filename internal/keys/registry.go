// Package keys exposes a pricing breakdown as a flat namespace of named
// values for template substitution in offer documents.
package keys

import (
	"fmt"
	"sort"
	"strings"
)

// Entry is one registered dynamic key. The formatted value is what the
// document renderer prints; the raw value serves programmatic consumers
// such as economic analysis.
type Entry struct {
	Name      string
	Value     float64
	Formatted string
	Category  string
	Source    string
}

// ConflictError reports two sources mapping onto the same key name. Keys
// are never auto-suffixed or silently overwritten; a conflict is a
// naming-scheme defect that must be fixed at the source.
type ConflictError struct {
	Name   string
	First  string
	Second string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("dynamic key conflict: %q already registered by %s, rejected for %s", e.Name, e.First, e.Second)
}

// Registry is the collision-checked key set of a single calculation. It is
// scoped to one breakdown; a new calculation gets a new registry.
type Registry struct {
	entries map[string]Entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register adds a key with a pre-formatted display value. A duplicate name
// fails with a ConflictError naming both sources.
func (r *Registry) Register(name string, value float64, formatted, category, source string) error {
	if existing, ok := r.entries[name]; ok {
		return &ConflictError{Name: name, First: existing.Source, Second: source}
	}
	r.entries[name] = Entry{
		Name:      name,
		Value:     value,
		Formatted: formatted,
		Category:  category,
		Source:    source,
	}
	return nil
}

// Has reports whether a key exists, so downstream consumers never have to
// invent placeholder names.
func (r *Registry) Has(name string) bool {
	_, ok := r.entries[name]
	return ok
}

// Names returns all registered key names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Formatted returns the key to display-value mapping for the renderer.
func (r *Registry) Formatted() map[string]string {
	out := make(map[string]string, len(r.entries))
	for name, e := range r.entries {
		out[name] = e.Formatted
	}
	return out
}

// Raw returns the key to numeric-value mapping for programmatic consumers.
func (r *Registry) Raw() map[string]float64 {
	out := make(map[string]float64, len(r.entries))
	for name, e := range r.entries {
		out[name] = e.Value
	}
	return out
}

// Normalize converts a structural path element to the canonical
// uppercase-with-underscores key form. Runs of non-alphanumeric characters
// collapse into a single underscore.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastUnderscore := true
	for _, r := range strings.ToUpper(strings.TrimSpace(s)) {
		switch {
		case r >= 'A' && r <= 'Z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
