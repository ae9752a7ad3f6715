package register

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/sangkips/tillpoint-api/internal/domain/pos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checkoutFixture struct {
	backend   *fakeBackend
	stock     *StockCache
	reg       *Register
	resolver  *Resolver
	assembler *Assembler
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	f := seededBackend()
	stock := loadedStock(f)
	fx := &checkoutFixture{
		backend:  f,
		stock:    stock,
		reg:      NewRegister(stock, 16),
		resolver: NewResolver(f, f, stock),
		assembler: NewAssembler(AssemblerDeps{
			Invoices:   f,
			Effects:    f,
			Receipts:   f,
			Dispatcher: f,
			Printer:    f,
			Stock:      stock,
		}),
	}
	t.Cleanup(fx.assembler.Wait)
	return fx
}

// fill puts two bars of soap (100) and one handset (20000) in tab-1.
func (fx *checkoutFixture) fill(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := fx.resolver.Scan(ctx, fx.reg, "tab-1", soap.Barcode, true)
		require.NoError(t, err)
	}
	_, err := fx.resolver.SelectIdentifier(ctx, fx.reg, "tab-1", handset.ID, "IMEI-111")
	require.NoError(t, err)
	_, err = fx.reg.SetTaxRate("tab-1", 0)
	require.NoError(t, err)
}

func TestCheckoutChangeDue(t *testing.T) {
	tests := []struct {
		name     string
		tendered float64
		change   float64
		err      error
	}{
		{"exact tender", 20100, 0, nil},
		{"over tender", 20500, 400, nil},
		{"under tender", 20099.99, 0, pos.ErrInsufficientPayment},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newCheckoutFixture(t)
			fx.fill(t)

			res, err := fx.assembler.Checkout(context.Background(), fx.reg, "tab-1", "user-1",
				PaymentInput{Method: "cash", Tendered: tt.tendered})
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				assert.Empty(t, fx.backend.invoiceCalls)
				assert.Len(t, fx.reg.ActiveTab().Cart, 2)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.change, res.ChangeDue, 1e-9)
			assert.InDelta(t, 20100, res.Totals.GrandTotal, 1e-9)
		})
	}
}

func TestCheckoutClearsTabAndFiresEffects(t *testing.T) {
	fx := newCheckoutFixture(t)
	fx.fill(t)

	res, err := fx.assembler.Checkout(context.Background(), fx.reg, "tab-1", "user-1",
		PaymentInput{Method: "Cash", Tendered: 20100, Preference: "print"})
	require.NoError(t, err)

	assert.Equal(t, "INV-0001", res.Invoice.InvoiceNo)
	assert.Empty(t, res.Tab.Cart)
	assert.Equal(t, 16.0, res.Tab.TaxRate)
	assert.Empty(t, fx.reg.ActiveTab().Cart)

	require.Len(t, fx.backend.invoiceCalls, 1)
	req := fx.backend.invoiceCalls[0]
	assert.Equal(t, "cash", req.PaymentMethod)
	assert.Equal(t, "user-1", req.UserID)
	require.Len(t, req.Items, 2)
	assert.Equal(t, "IMEI-111", req.Items[1].IdentifierValue)
	assert.Equal(t, pos.IdentifierIMEI, req.Items[1].IdentifierType)

	fx.assembler.Wait()
	assert.Equal(t, map[string]int{soap.ID: 2, handset.ID: 1}, fx.backend.deducted)
	assert.Equal(t, []string{"IMEI-111"}, fx.backend.markedSold)
	assert.Equal(t, soap.Stock-2, fx.stock.Available(soap.ID, -1))
}

func TestCheckoutFailureKeepsCart(t *testing.T) {
	fx := newCheckoutFixture(t)
	fx.fill(t)
	fx.backend.invoiceErr = errors.New("backend unavailable")
	before := fx.reg.ActiveTab()

	_, err := fx.assembler.Checkout(context.Background(), fx.reg, "tab-1", "user-1",
		PaymentInput{Method: "cash", Tendered: 30000})
	require.Error(t, err)
	assert.Equal(t, before, fx.reg.ActiveTab())
	fx.assembler.Wait()
	assert.Empty(t, fx.backend.deducted)

	fx.backend.invoiceErr = nil
	_, err = fx.assembler.Checkout(context.Background(), fx.reg, "tab-1", "user-1",
		PaymentInput{Method: "cash", Tendered: 30000})
	require.NoError(t, err)
}

func TestCheckoutRejections(t *testing.T) {
	fx := newCheckoutFixture(t)
	ctx := context.Background()

	_, err := fx.assembler.Checkout(ctx, fx.reg, "tab-1", "user-1", PaymentInput{Method: "cash", Tendered: 10})
	assert.ErrorIs(t, err, pos.ErrEmptyCart)

	_, err = fx.assembler.Checkout(ctx, fx.reg, "tab-9", "user-1", PaymentInput{Method: "cash"})
	assert.ErrorIs(t, err, ErrUnknownTab)

	fx.fill(t)
	_, err = fx.assembler.Checkout(ctx, fx.reg, "tab-1", "user-1", PaymentInput{Method: "credit"})
	assert.ErrorIs(t, err, ErrCustomerRequired)

	var verrs validator.ValidationErrors
	_, err = fx.assembler.Checkout(ctx, fx.reg, "tab-1", "user-1", PaymentInput{Tendered: -1, Preference: "fax", Email: "nope"})
	require.ErrorAs(t, err, &verrs)
	fields := map[string]string{}
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	assert.Equal(t, map[string]string{"Method": "required", "Tendered": "gte", "Preference": "oneof", "Email": "email"}, fields)

	assert.Empty(t, fx.backend.invoiceCalls)
}

func TestCheckoutCreditSaleWithCustomer(t *testing.T) {
	fx := newCheckoutFixture(t)
	fx.fill(t)
	_, err := fx.reg.SetCustomer("tab-1", "cust-1")
	require.NoError(t, err)

	res, err := fx.assembler.Checkout(context.Background(), fx.reg, "tab-1", "user-1",
		PaymentInput{Method: "credit", Preference: "print"})
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.ChangeDue)
	assert.Equal(t, "cust-1", fx.backend.invoiceCalls[0].CustomerID)
}

func TestCheckoutReceiptChannels(t *testing.T) {
	fx := newCheckoutFixture(t)
	fx.fill(t)
	fx.backend.emailErr = errors.New("smtp down")

	res, err := fx.assembler.Checkout(context.Background(), fx.reg, "tab-1", "user-1", PaymentInput{
		Method:     "cash",
		Tendered:   20100,
		Preference: "both",
		Formats:    []string{"advance-thermal", "a4"},
		Email:      "buyer@example.com",
		Phone:      "+254700000001",
	})
	require.NoError(t, err)

	require.Len(t, res.Channels, 4)
	assert.Equal(t, ChannelStatus{Channel: "print", Format: "advance-thermal", OK: true}, res.Channels[0])
	assert.Equal(t, ChannelStatus{Channel: "print", Format: "a4", OK: true}, res.Channels[1])
	assert.Equal(t, "email", res.Channels[2].Channel)
	assert.False(t, res.Channels[2].OK)
	assert.Equal(t, "smtp down", res.Channels[2].Error)
	assert.Equal(t, ChannelStatus{Channel: "sms", Target: "+254700000001", OK: true}, res.Channels[3])

	require.Len(t, res.Receipts, 1)
	assert.Equal(t, "<html>a4</html>", res.Receipts[0].Body)
	assert.Equal(t, [][]byte{[]byte("ESC/POS advance-thermal")}, fx.backend.printed)
}

func TestCheckoutEReceiptOnlySkipsPrinting(t *testing.T) {
	fx := newCheckoutFixture(t)
	fx.fill(t)

	res, err := fx.assembler.Checkout(context.Background(), fx.reg, "tab-1", "user-1",
		PaymentInput{Method: "cash", Tendered: 20100, Preference: "e-receipt"})
	require.NoError(t, err)
	assert.Empty(t, fx.backend.printed)
	require.Len(t, res.Channels, 1)
	assert.Equal(t, "e-receipt", res.Channels[0].Channel)
	assert.False(t, res.Channels[0].OK)
}

func TestCheckoutWithoutPrinterReportsChannel(t *testing.T) {
	fx := newCheckoutFixture(t)
	fx.assembler.printer = nil
	fx.fill(t)

	res, err := fx.assembler.Checkout(context.Background(), fx.reg, "tab-1", "user-1",
		PaymentInput{Method: "cash", Tendered: 20100})
	require.NoError(t, err)
	require.Len(t, res.Channels, 1)
	assert.Equal(t, "no printer configured", res.Channels[0].Error)
	assert.Empty(t, res.Tab.Cart)
}
