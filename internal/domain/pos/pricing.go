package pos

import "math"

// All money in this package is float64. Rounding to two places happens only
// when an amount is rendered (see pkg/money).

const epsilon = 1e-9

type Totals struct {
	Subtotal       float64 `json:"subtotal"`
	DiscountAmount float64 `json:"discount_amount"`
	Taxable        float64 `json:"taxable"`
	TaxAmount      float64 `json:"tax_amount"`
	GrandTotal     float64 `json:"grand_total"`
	Items          int     `json:"items"`
}

// EffectivePrice is the discounted unit price when one is set, the unit price otherwise.
func EffectivePrice(l CartLine) float64 {
	if l.DiscountedUnitPrice != nil {
		return *l.DiscountedUnitPrice
	}
	return l.UnitPrice
}

func LineTotal(l CartLine) float64 {
	return EffectivePrice(l) * float64(l.Quantity)
}

func Subtotal(cart []CartLine) float64 {
	var sum float64
	for _, l := range cart {
		sum += LineTotal(l)
	}
	return sum
}

// DiscountAmount is the order-level reduction, clamped to [0, subtotal].
func DiscountAmount(subtotal float64, d Discount) float64 {
	var amt float64
	switch d.Type {
	case DiscountPercentage:
		amt = subtotal * d.Value / 100
	case DiscountFixed:
		amt = d.Value
	default:
		return 0
	}
	return math.Max(0, math.Min(amt, subtotal))
}

func ComputeTotals(t TabState) Totals {
	subtotal := Subtotal(t.Cart)
	discount := DiscountAmount(subtotal, t.Discount)
	taxable := subtotal - discount
	tax := taxable * t.TaxRate / 100

	items := 0
	for _, l := range t.Cart {
		items += l.Quantity
	}
	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		Taxable:        taxable,
		TaxAmount:      tax,
		GrandTotal:     taxable + tax,
		Items:          items,
	}
}

// ApplyLineDiscount sets the line's discount and recomputes DiscountedUnitPrice.
// Amount discounts never take the price below zero.
func ApplyLineDiscount(l CartLine, typ DiscountType, value float64) CartLine {
	l = l.clone()
	l.DiscountType = typ
	l.DiscountValue = value

	var price float64
	switch typ {
	case DiscountPercentage:
		price = l.UnitPrice * (1 - value/100)
	case DiscountFixed:
		price = math.Max(0, l.UnitPrice-value)
	default:
		l.DiscountType = DiscountNone
		l.DiscountValue = 0
		l.DiscountedUnitPrice = nil
		return l
	}
	l.DiscountedUnitPrice = &price
	return l
}

// ChangeDue returns tendered minus total, or ErrInsufficientPayment.
func ChangeDue(total, tendered float64) (float64, error) {
	if tendered+epsilon < total {
		return 0, ErrInsufficientPayment
	}
	change := tendered - total
	if change < 0 {
		change = 0
	}
	return change, nil
}
