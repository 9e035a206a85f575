package pricing

import "github.com/shopspring/decimal"

// Format renders an amount for display, rounded half-up to cents.
func Format(d decimal.Decimal) string {
	return "R$ " + d.StringFixed(2)
}
