package pricing

import "fmt"

// ConfigurationError reports an input that makes a calculation impossible,
// such as an unknown calculation method or a missing system capacity.
// It is fatal to the calculation that raised it and is never retried.
type ConfigurationError struct {
	Field  string
	Detail string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("pricing configuration error: %s: %s", e.Field, e.Detail)
}

func configErrorf(field, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Field: field, Detail: fmt.Sprintf(format, args...)}
}
