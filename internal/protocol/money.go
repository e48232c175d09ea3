package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// parseAmount converts a decimal string ("100", "100.5", "100.50",
// "-5") to integer cents. It accepts plain decimals with at most two
// fractional digits; more fractional digits ("1.234") or exponent
// notation ("1e2") are rejected as malformed. It never routes through float64, so
// "0.10" always parses to exactly 10 cents. A leading "-" is syntactically
// valid and parses through to a negative cents value; rejecting negative
// amounts is the domain layer's job (ValidateAmount/ErrInvalidAmount), not
// the parser's — that keeps ParseError and InvalidAmount distinct per
// spec.md §7.
func parseAmount(s string) (int64, bool) {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" && !hasFrac {
		return 0, false
	}
	if whole == "" {
		whole = "0"
	}

	wholeVal, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, false
	}

	var fracCents int64
	if hasFrac {
		if len(frac) == 0 || len(frac) > 2 {
			return 0, false
		}
		if len(frac) == 1 {
			frac += "0"
		}
		fracVal, err := strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, false
		}
		fracCents = fracVal
	}

	cents := wholeVal*100 + fracCents
	if neg {
		cents = -cents
	}
	return cents, true
}

// formatAmount renders cents as a two-fractional-digit decimal string,
// matching the %.2f rendering required by spec.md §6.
func formatAmount(cents int64) string {
	return fmt.Sprintf("%.2f", float64(cents)/100.0)
}
