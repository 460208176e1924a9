// Package money holds the decimal helpers shared by the ingestion and fee
// packages. Amounts are shopspring decimals end to end; floats never touch
// persisted values.
package money

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultPlaces is the rounding precision used when none is configured.
const DefaultPlaces int32 = 2

var hundred = decimal.NewFromInt(100)

var decoration = regexp.MustCompile(`[$,]+`)

// StripDecoration removes currency symbols and thousands separators.
// Values without decoration are returned unchanged.
func StripDecoration(raw string) string {
	if !strings.ContainsAny(raw, "$,") {
		return raw
	}
	return decoration.ReplaceAllString(raw, "")
}

// Parse converts a cell value into a decimal. Accounting negatives written
// as "(12.50)" are honoured. The second return is false when the value is
// not numeric; the decimal is zero in that case.
func Parse(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(StripDecoration(raw))
	if s == "" {
		return decimal.Zero, true
	}
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if negative {
		d = d.Neg()
	}
	return d, true
}

// Hundred is the full allocation percentage.
func Hundred() decimal.Decimal { return hundred }
