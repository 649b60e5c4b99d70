package upi

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CleanAmount trims raw and drops every character that is not a digit or a
// decimal point. It does not check that the residue is a number.
func CleanAmount(raw string) string {
	return strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, strings.TrimSpace(raw))
}

// ParseAmount cleans raw and parses it. ok is false for anything that is not
// a positive number once cleaned: empty input, a lone ".", more than one ".",
// zero, or an explicitly negative value.
func ParseAmount(raw string) (decimal.Decimal, bool) {
	if strings.HasPrefix(strings.TrimSpace(raw), "-") {
		return decimal.Zero, false
	}
	s := CleanAmount(raw)
	if !isNumeric(s) {
		return decimal.Zero, false
	}
	switch {
	case strings.HasPrefix(s, "."):
		s = "0" + s
	case strings.HasSuffix(s, "."):
		s += "0"
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}

// FormatAmount renders d with exactly two fractional digits.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// isNumeric accepts digits with at most one '.' and at least one digit.
func isNumeric(s string) bool {
	digits, dots := 0, 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '.':
			dots++
		case c >= '0' && c <= '9':
			digits++
		default:
			return false
		}
	}
	return digits > 0 && dots <= 1
}

// ValidAmountInput reports whether s may stand in the amount field at all:
// only digits and at most one decimal point. Empty is allowed.
func ValidAmountInput(s string) bool {
	return s == "" || s == "." || isNumeric(s)
}
