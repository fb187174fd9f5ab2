// file: internals/helpers/money/money.go
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Parse accepts "5000", "5000.5", "5000.50". More than two fractional digits is an error.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	if !HasCents(d) {
		return decimal.Zero, fmt.Errorf("amount %q has more than 2 decimal places", s)
	}
	return d, nil
}

// HasCents reports whether d fits in two fractional digits.
func HasCents(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(2))
}

func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Percent returns part/whole*100 rounded to 2 places, 0 when whole is 0.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Mul(hundred).Div(whole).Round(2)
}

func IsWhole(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(0))
}
