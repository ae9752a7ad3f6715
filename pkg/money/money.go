// Package money converts between the float amounts the POS works in, the cent
// integers the database stores, and the 2-decimal strings printed on receipts.
//
// Arithmetic stays in float64; rounding happens only in Format and ToCents.
package money

import (
	"github.com/shopspring/decimal"
)

// Format renders an amount with exactly two decimals, rounding half away from zero.
func Format(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}

// FormatWithCurrency prefixes the formatted amount with a currency code or symbol.
func FormatWithCurrency(currency string, amount float64) string {
	if currency == "" {
		return Format(amount)
	}
	return currency + " " + Format(amount)
}

// Round2 returns amount rounded to two decimals.
func Round2(amount float64) float64 {
	f, _ := decimal.NewFromFloat(amount).Round(2).Float64()
	return f
}

// ToCents converts a float amount to integer minor units.
func ToCents(amount float64) int64 {
	return decimal.NewFromFloat(amount).Shift(2).Round(0).IntPart()
}

// FromCents converts minor units back to a float amount.
func FromCents(cents int64) float64 {
	return float64(cents) / 100
}

// Sum adds cent values exactly and returns the float amount.
func Sum(cents ...int64) float64 {
	total := decimal.Zero
	for _, c := range cents {
		total = total.Add(decimal.New(c, -2))
	}
	f, _ := total.Float64()
	return f
}
