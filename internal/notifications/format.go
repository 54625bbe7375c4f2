package notifications

import (
	"strings"

	"github.com/shopspring/decimal"
)

// formatBRL renders an amount the way Brazilian storefronts do: 1.234,56.
func formatBRL(amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}
	whole, cents, _ := strings.Cut(fixed, ".")

	var grouped strings.Builder
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(digit)
	}
	return "R$ " + sign + grouped.String() + "," + cents
}
