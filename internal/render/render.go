// Package render implements the consumer side of the dynamic key contract:
// placeholder substitution by exact key lookup, tolerant of missing keys.
package render

import (
	"regexp"

	"go.uber.org/zap"
)

var placeholderPattern = regexp.MustCompile(`\{\{([A-Z0-9_]+)\}\}`)

// DefaultFallback is printed in place of a placeholder whose key does not
// exist in the mapping.
const DefaultFallback = "—"

// Substitute replaces {{KEY}} placeholders in a document template with the
// formatted values of the key mapping. A missing key is replaced with the
// fallback text and logged; it is never fatal, matching the wider policy of
// not aborting a whole document for one missing input.
func Substitute(template string, values map[string]string, fallback string, log *zap.Logger) string {
	if fallback == "" {
		fallback = DefaultFallback
	}
	if log == nil {
		log = zap.NewNop()
	}

	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		if value, ok := values[name]; ok {
			return value
		}
		log.Warn("dynamic key missing, using fallback text", zap.String("key", name))
		return fallback
	})
}
