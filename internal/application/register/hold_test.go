package register

import (
	"testing"
	"time"

	"github.com/sangkips/tillpoint-api/internal/domain/pos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filledRegister(t *testing.T, tax float64) *Register {
	t.Helper()
	r := NewRegister(nil, tax)
	discounted := 40.0
	cart := []pos.CartLine{
		{LineID: "p1", ProductID: "p1", Name: "Soap", Quantity: 2, UnitPrice: 50, OriginalPrice: 50,
			DiscountType: pos.DiscountFixed, DiscountValue: 10, DiscountedUnitPrice: &discounted},
		{LineID: "p2#IMEI-1", ProductID: "p2", Name: "Phone", Quantity: 1, UnitPrice: 200, OriginalPrice: 200,
			IdentifierType: pos.IdentifierIMEI, IdentifierValue: "IMEI-1"},
	}
	customer := "cust-1"
	discount := pos.Discount{Type: pos.DiscountPercentage, Value: 5}
	rate := 8.0
	ui := pos.UIFlags{HoldModal: true}
	_, err := r.UpdateTab("tab-1", pos.TabPatch{Cart: &cart, CustomerID: &customer, Discount: &discount, TaxRate: &rate, UI: &ui})
	require.NoError(t, err)
	return r
}

func TestHoldThenUnholdRestoresIdenticalTab(t *testing.T) {
	r := filledRegister(t, 16)
	before, err := r.Tab("tab-1")
	require.NoError(t, err)

	bill, err := r.Hold("tab-1", "Table 4")
	require.NoError(t, err)
	assert.Equal(t, "Table 4", bill.Label)
	assert.Equal(t, before, bill.Snapshot)

	cleared, _ := r.Tab("tab-1")
	assert.Empty(t, cleared.Cart)
	assert.Empty(t, cleared.CustomerID)
	assert.Equal(t, pos.DiscountNone, cleared.Discount.Type)
	assert.Zero(t, cleared.TaxRate)
	assert.Equal(t, before.UI, cleared.UI)

	restored, err := r.Unhold("tab-1")
	require.NoError(t, err)
	assert.Equal(t, before, restored)
	assert.Empty(t, r.HeldBills())
}

func TestHoldRequiresItems(t *testing.T) {
	r := NewRegister(nil, 0)
	_, err := r.Hold("tab-1", "empty")
	assert.ErrorIs(t, err, pos.ErrEmptyCart)

	_, err = r.Hold("tab-7", "x")
	assert.ErrorIs(t, err, ErrUnknownTab)
}

func TestUnholdWithoutHeldBill(t *testing.T) {
	r := NewRegister(nil, 0)
	_, err := r.Unhold("tab-1")
	assert.ErrorIs(t, err, ErrNoHeldBill)
}

func TestUnholdRefusesNonEmptyCart(t *testing.T) {
	r := filledRegister(t, 0)
	_, err := r.Hold("tab-1", "")
	require.NoError(t, err)

	cart := []pos.CartLine{{LineID: "p9", ProductID: "p9", Quantity: 1, UnitPrice: 1}}
	_, err = r.UpdateTab("tab-1", pos.TabPatch{Cart: &cart})
	require.NoError(t, err)

	_, err = r.Unhold("tab-1")
	assert.ErrorIs(t, err, ErrCartNotEmpty)
	assert.Len(t, r.HeldBills(), 1)
}

func TestNewerHoldReplacesOlder(t *testing.T) {
	r := filledRegister(t, 0)
	_, err := r.Hold("tab-1", "first")
	require.NoError(t, err)

	cart := []pos.CartLine{{LineID: "p9", ProductID: "p9", Quantity: 3, UnitPrice: 1}}
	_, err = r.UpdateTab("tab-1", pos.TabPatch{Cart: &cart})
	require.NoError(t, err)
	_, err = r.Hold("tab-1", "second")
	require.NoError(t, err)

	bills := r.HeldBills()
	require.Len(t, bills, 1)
	assert.Equal(t, "second", bills[0].Label)
	assert.Equal(t, 3, bills[0].Snapshot.Cart[0].Quantity)
}

func TestHeldBillsAreSortedByHoldTime(t *testing.T) {
	r := NewRegister(nil, 0)
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return clock }

	cart := []pos.CartLine{{LineID: "p1", ProductID: "p1", Quantity: 1, UnitPrice: 1}}
	second := r.CreateTab()
	_, err := r.UpdateTab(second, pos.TabPatch{Cart: &cart})
	require.NoError(t, err)
	_, err = r.Hold(second, "")
	require.NoError(t, err)

	clock = clock.Add(time.Minute)
	_, err = r.UpdateTab("tab-1", pos.TabPatch{Cart: &cart})
	require.NoError(t, err)
	_, err = r.Hold("tab-1", "")
	require.NoError(t, err)

	bills := r.HeldBills()
	require.Len(t, bills, 2)
	assert.Equal(t, second, bills[0].TabID)
	assert.Equal(t, "tab-1", bills[1].TabID)
	assert.Equal(t, "Held 09:00:00", bills[0].Label)
}
