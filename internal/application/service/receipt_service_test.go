package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tillpoint-api/internal/domain/entity"
	"github.com/sangkips/tillpoint-api/internal/domain/enum"
	"github.com/sangkips/tillpoint-api/pkg/printer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInvoice() *entity.Invoice {
	imei := "356938035643809"
	discounted := int64(1800000)
	notes := "Deliver after 5pm"
	phone := "+254700000001"
	return &entity.Invoice{
		ID:             uuid.New(),
		InvoiceNo:      "INV-20260301-0007",
		InvoiceDate:    time.Date(2026, 3, 1, 14, 5, 0, 0, time.UTC),
		SubTotal:       1810000,
		DiscountAmount: 10000,
		TaxRate:        16,
		TaxAmount:      288000,
		Total:          2088000,
		PaymentMethod:  "cash",
		PaymentStatus:  enum.PaymentStatusPartial,
		AmountPaid:     2000000,
		Tendered:       2000000,
		Notes:          &notes,
		User:           &entity.User{FirstName: "Ada", LastName: "Lovelace"},
		Customer:       &entity.Customer{Name: "Amina", Phone: &phone},
		Items: []entity.InvoiceItem{
			{Name: "Soap", Quantity: 2, UnitPrice: 5000, OriginalPrice: 5000, Total: 10000},
			{
				Name:                "Handset",
				Quantity:            1,
				UnitPrice:           2000000,
				OriginalPrice:       2000000,
				DiscountType:        "percentage",
				DiscountValue:       10,
				DiscountedUnitPrice: &discounted,
				Total:               1800000,
				IdentifierType:      enum.IdentifierTypeIMEI,
				IdentifierValue:     &imei,
			},
		},
	}
}

func sampleSettings() *entity.BusinessSettings {
	return &entity.BusinessSettings{BusinessName: "Corner Shop", Address: "Moi Avenue", TaxPIN: "P051", Currency: "KES", ReceiptFooter: "Goods once sold are not returnable"}
}

func TestBuildReceipt(t *testing.T) {
	r := BuildReceipt(sampleInvoice(), sampleSettings(), &entity.AdditionalInfo{Terms: "Warranty 12 months", Notes: "ignored"})

	assert.Equal(t, "Corner Shop", r.Header.StoreName)
	assert.Equal(t, "2026-03-01 14:05", r.Date)
	assert.Equal(t, "Ada Lovelace", r.Cashier)
	assert.Equal(t, "+254700000001", r.CustomerPhone)
	assert.Equal(t, "Partial", r.PaymentStatus)
	assert.Equal(t, 880.0, r.Due)
	assert.Equal(t, "Deliver after 5pm", r.Notes)
	assert.Equal(t, "Warranty 12 months", r.Terms)
	require.Len(t, r.Items, 2)
	assert.Equal(t, "10%", r.Items[1].Discount)
	assert.Equal(t, 18000.0, r.Items[1].UnitPrice)
	assert.Equal(t, "IMEI: 356938035643809", r.Items[1].Identifier)

	bare := BuildReceipt(&entity.Invoice{InvoiceNo: "X"}, nil, nil)
	assert.Equal(t, "Receipt", bare.Header.StoreName)
}

func TestThermalLayouts(t *testing.T) {
	r := BuildReceipt(sampleInvoice(), sampleSettings(), &entity.AdditionalInfo{Terms: "Warranty 12 months"})

	basic := string(FormatThermal(r, 48, false))
	assert.Contains(t, basic, "INV-20260301-0007")
	assert.Contains(t, basic, "KES 20880.00")
	assert.Contains(t, basic, "Balance due:")
	assert.Contains(t, basic, "Goods once sold are not returnable")
	assert.NotContains(t, basic, "IMEI: 356938035643809")
	assert.NotContains(t, basic, "Warranty 12 months")

	advanced := string(FormatThermal(r, 48, true))
	assert.Contains(t, advanced, "IMEI: 356938035643809")
	assert.Contains(t, advanced, "was 20000.00, disc 10%")
	assert.Contains(t, advanced, "Warranty 12 months")
}

func TestRenderA4(t *testing.T) {
	r := BuildReceipt(sampleInvoice(), sampleSettings(), &entity.AdditionalInfo{Terms: "Warranty <12> months"})

	basic, err := RenderA4(r, false)
	require.NoError(t, err)
	html := string(basic)
	assert.Contains(t, html, "<title>Invoice INV-20260301-0007</title>")
	assert.Contains(t, html, "Bill to:</strong> Amina (+254700000001)")
	assert.Contains(t, html, "KES 20880.00")
	assert.NotContains(t, html, "Terms &amp; Conditions")

	adv, err := RenderA4(r, true)
	require.NoError(t, err)
	html = string(adv)
	assert.Contains(t, html, "Terms &amp; Conditions")
	assert.Contains(t, html, "Warranty &lt;12&gt; months")
	assert.Contains(t, html, "IMEI: 356938035643809")
}

func TestReceiptServiceRender(t *testing.T) {
	inv := sampleInvoice()
	invoices := &memInvoices{rows: []*entity.Invoice{inv}}
	svc := NewReceiptService(invoices, &memSettings{business: sampleSettings()}, 0)
	ctx := context.Background()

	ct, body, err := svc.Render(ctx, inv.ID, enum.ReceiptFormatThermal)
	require.NoError(t, err)
	assert.Equal(t, ContentTypeESCPOS, ct)
	assert.Contains(t, string(body), "Corner Shop")

	ct, body, err = svc.Render(ctx, inv.ID, enum.ReceiptFormatAdvanceA4)
	require.NoError(t, err)
	assert.Equal(t, ContentTypeHTML, ct)
	assert.True(t, strings.HasPrefix(string(body), "<!DOCTYPE html>"))

	_, _, err = svc.Render(ctx, uuid.New(), enum.ReceiptFormatA4)
	assert.Equal(t, http.StatusNotFound, appCode(t, err))
}

func TestPrinterServicePrintsThermalOnly(t *testing.T) {
	inv := sampleInvoice()
	receipts := NewReceiptService(&memInvoices{rows: []*entity.Invoice{inv}}, &memSettings{}, 32)
	buf := printer.NewBufferPrinter(nil)
	svc := NewPrinterService(buf, receipts, "buffer")
	ctx := context.Background()

	_, err := svc.PrintInvoice(ctx, inv.ID, enum.ReceiptFormatA4)
	assert.Equal(t, http.StatusBadRequest, appCode(t, err))

	r, err := svc.PrintInvoice(ctx, inv.ID, enum.ReceiptFormatAdvanceThermal)
	require.NoError(t, err)
	assert.Equal(t, inv.InvoiceNo, r.InvoiceNo)
	require.Len(t, buf.Jobs(), 1)
	assert.Contains(t, string(buf.Jobs()[0]), "IMEI: 356938035643809")

	status := svc.GetStatus()
	assert.True(t, status.Configured)
	assert.Equal(t, "buffer", status.Type)
}

func TestPrinterServiceTestPrintFailure(t *testing.T) {
	receipts := NewReceiptService(&memInvoices{}, &memSettings{}, 32)
	svc := NewPrinterService(printer.NewBufferPrinter(errors.New("paper out")), receipts, "usb")

	r, err := svc.TestPrint()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "paper out")
	assert.Equal(t, "TEST-0001", r.InvoiceNo)
}
