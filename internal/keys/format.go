package keys

import (
	"math"
	"strconv"
	"strings"
)

// FormatEUR formats an amount as a German-style currency string like
// "1.234,56 €": dot as thousands separator, comma as decimal separator.
func FormatEUR(amount float64) string {
	return FormatNumber(amount) + " €"
}

// FormatPercent formats a rate like "19,00 %".
func FormatPercent(rate float64) string {
	return FormatNumber(rate) + " %"
}

// FormatNumber renders a value with two decimals and German separators.
func FormatNumber(v float64) string {
	neg := v < 0
	cents := int64(math.Round(math.Abs(v) * 100))
	whole := cents / 100
	frac := cents % 100

	s := strconv.FormatInt(whole, 10)

	var b strings.Builder
	// Pre-allocate: digits + separators + sign + decimals.
	b.Grow(len(s) + len(s)/3 + 4)
	if neg && cents != 0 {
		b.WriteByte('-')
	}

	// Insert separators from the left.
	rem := len(s) % 3
	if rem == 0 {
		rem = 3
	}
	b.WriteString(s[:rem])
	for i := rem; i < len(s); i += 3 {
		b.WriteByte('.')
		b.WriteString(s[i : i+3])
	}

	b.WriteByte(',')
	if frac < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.FormatInt(frac, 10))

	return b.String()
}
