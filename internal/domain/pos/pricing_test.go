package pos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Money is float64 with display-time rounding. Assertions on computed amounts
// use InDelta; exact decimal rounding is covered in pkg/money.
const tol = 1e-9

func price(v float64) *float64 { return &v }

func TestComputeTotalsAmountDiscountAndTax(t *testing.T) {
	tab := TabState{
		Cart:     []CartLine{{LineID: "p1", ProductID: "p1", UnitPrice: 100, Quantity: 2}},
		Discount: Discount{Type: DiscountFixed, Value: 10},
		TaxRate:  5,
	}
	got := ComputeTotals(tab)

	assert.InDelta(t, 200, got.Subtotal, tol)
	assert.InDelta(t, 10, got.DiscountAmount, tol)
	assert.InDelta(t, 190, got.Taxable, tol)
	assert.InDelta(t, 9.5, got.TaxAmount, tol)
	assert.InDelta(t, 199.5, got.GrandTotal, tol)
	assert.Equal(t, 2, got.Items)
}

func TestComputeTotalsInvariants(t *testing.T) {
	cases := []struct {
		name string
		tab  TabState
	}{
		{"empty", TabState{}},
		{"percentage", TabState{
			Cart:     []CartLine{{UnitPrice: 19.99, Quantity: 3}, {UnitPrice: 0.1, Quantity: 7}},
			Discount: Discount{Type: DiscountPercentage, Value: 12.5},
			TaxRate:  16,
		}},
		{"amount above subtotal", TabState{
			Cart:     []CartLine{{UnitPrice: 5, Quantity: 1}},
			Discount: Discount{Type: DiscountFixed, Value: 50},
			TaxRate:  16,
		}},
		{"line discount", TabState{
			Cart: []CartLine{{UnitPrice: 40, Quantity: 2, DiscountedUnitPrice: price(35)}},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeTotals(tc.tab)
			assert.GreaterOrEqual(t, got.GrandTotal, 0.0)
			assert.InDelta(t, got.Subtotal-got.DiscountAmount+got.TaxAmount, got.GrandTotal, tol)
		})
	}
}

func TestLineTotalPrefersDiscountedPrice(t *testing.T) {
	assert.InDelta(t, 70, LineTotal(CartLine{UnitPrice: 40, Quantity: 2, DiscountedUnitPrice: price(35)}), tol)
	assert.InDelta(t, 80, LineTotal(CartLine{UnitPrice: 40, Quantity: 2}), tol)
	assert.InDelta(t, 0, LineTotal(CartLine{UnitPrice: 40, Quantity: 2, DiscountedUnitPrice: price(0)}), tol)
}

func TestApplyLineDiscountAmountClampsAtZero(t *testing.T) {
	for _, tc := range []struct{ unit, value, want float64 }{
		{100, 10, 90},
		{100, 100, 0},
		{100, 250, 0},
		{0.3, 0.1, 0.2},
	} {
		l := ApplyLineDiscount(CartLine{UnitPrice: tc.unit}, DiscountFixed, tc.value)
		require.NotNil(t, l.DiscountedUnitPrice)
		assert.InDelta(t, tc.want, *l.DiscountedUnitPrice, tol)
	}
}

func TestApplyLineDiscountPercentageAndNone(t *testing.T) {
	l := ApplyLineDiscount(CartLine{UnitPrice: 80}, DiscountPercentage, 25)
	assert.InDelta(t, 60, *l.DiscountedUnitPrice, tol)

	cleared := ApplyLineDiscount(l, DiscountNone, 5)
	assert.Nil(t, cleared.DiscountedUnitPrice)
	assert.Equal(t, DiscountNone, cleared.DiscountType)
	assert.NotNil(t, l.DiscountedUnitPrice, "original line must not be mutated")
}

func TestChangeDue(t *testing.T) {
	change, err := ChangeDue(199.5, 199.5)
	require.NoError(t, err)
	assert.Zero(t, change)

	change, err = ChangeDue(199.5, 200)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, change, tol)

	_, err = ChangeDue(199.5, 199.49)
	assert.ErrorIs(t, err, ErrInsufficientPayment)
}

func TestDiscountAmountPercentageIsNotClampedBelowSubtotal(t *testing.T) {
	assert.InDelta(t, 50, DiscountAmount(200, Discount{Type: DiscountPercentage, Value: 25}), tol)
	assert.InDelta(t, 0, DiscountAmount(200, Discount{Type: DiscountNone, Value: 25}), tol)
	assert.InDelta(t, 200, DiscountAmount(200, Discount{Type: DiscountPercentage, Value: 150}), tol)
}
