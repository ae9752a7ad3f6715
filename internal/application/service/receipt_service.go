package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/tillpoint-api/internal/domain/entity"
	"github.com/sangkips/tillpoint-api/internal/domain/enum"
	"github.com/sangkips/tillpoint-api/internal/domain/repository"
	"github.com/sangkips/tillpoint-api/pkg/apperror"
	"github.com/sangkips/tillpoint-api/pkg/money"
	"github.com/sangkips/tillpoint-api/pkg/printer"
)

// Content types returned by Render.
const (
	ContentTypeHTML   = "text/html; charset=utf-8"
	ContentTypeESCPOS = "application/vnd.escpos"
)

// ReceiptService lays invoices out as A4 HTML pages or ESC/POS thermal slips
type ReceiptService struct {
	invoiceRepo  repository.InvoiceRepository
	settingsRepo repository.SettingsRepository
	width        int
}

// NewReceiptService creates a new receipt service. width is the thermal paper
// width in characters (32 for 58mm, 48 for 80mm).
func NewReceiptService(invoiceRepo repository.InvoiceRepository, settingsRepo repository.SettingsRepository, width int) *ReceiptService {
	if width <= 0 {
		width = 48
	}
	return &ReceiptService{
		invoiceRepo:  invoiceRepo,
		settingsRepo: settingsRepo,
		width:        width,
	}
}

// Render fetches an invoice and renders it in the requested format
func (s *ReceiptService) Render(ctx context.Context, invoiceID uuid.UUID, format enum.ReceiptFormat) (string, []byte, error) {
	receipt, err := s.Receipt(ctx, invoiceID)
	if err != nil {
		return "", nil, err
	}
	return s.RenderReceipt(receipt, format)
}

// RenderReceipt renders an already built receipt
func (s *ReceiptService) RenderReceipt(r *entity.Receipt, format enum.ReceiptFormat) (string, []byte, error) {
	if format.Thermal() {
		return ContentTypeESCPOS, FormatThermal(r, s.width, format.Advanced()), nil
	}
	html, err := RenderA4(r, format.Advanced())
	if err != nil {
		return "", nil, err
	}
	return ContentTypeHTML, html, nil
}

// Receipt loads an invoice with its settings and composes the printable view
func (s *ReceiptService) Receipt(ctx context.Context, invoiceID uuid.UUID) (*entity.Receipt, error) {
	invoice, err := s.invoiceRepo.GetWithItems(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	settings, err := s.settingsRepo.GetBusiness(ctx)
	if err != nil {
		return nil, err
	}
	info, err := s.settingsRepo.GetAdditional(ctx)
	if err != nil {
		return nil, err
	}
	return BuildReceipt(invoice, settings, info), nil
}

// BuildReceipt composes a receipt from an invoice. settings and info may be nil.
func BuildReceipt(inv *entity.Invoice, settings *entity.BusinessSettings, info *entity.AdditionalInfo) *entity.Receipt {
	r := &entity.Receipt{
		InvoiceNo:      inv.InvoiceNo,
		Date:           inv.InvoiceDate.Format("2006-01-02 15:04"),
		PaymentType:    inv.PaymentMethod,
		PaymentStatus:  inv.PaymentStatus.String(),
		SubTotal:       money.FromCents(inv.SubTotal),
		DiscountAmount: money.FromCents(inv.DiscountAmount),
		TaxRate:        inv.TaxRate,
		TaxAmount:      money.FromCents(inv.TaxAmount),
		Total:          money.FromCents(inv.Total),
		Paid:           money.FromCents(inv.AmountPaid),
		Tendered:       money.FromCents(inv.Tendered),
		Change:         money.FromCents(inv.ChangeDue),
		Due:            money.FromCents(inv.Due()),
	}
	if inv.Notes != nil {
		r.Notes = *inv.Notes
	}

	if settings != nil {
		r.Header = entity.ReceiptHeader{
			StoreName: settings.BusinessName,
			Address:   settings.Address,
			Phone:     settings.Phone,
			Email:     settings.Email,
			TaxID:     settings.TaxPIN,
		}
		if settings.LogoURL != nil {
			r.Header.LogoURL = *settings.LogoURL
		}
		r.Currency = settings.Currency
		r.Footer = settings.ReceiptFooter
	}
	if r.Header.StoreName == "" {
		r.Header.StoreName = "Receipt"
	}
	if info != nil {
		r.Terms = info.Terms
		if r.Notes == "" {
			r.Notes = info.Notes
		}
	}

	if inv.User != nil {
		r.Cashier = inv.User.FullName()
	}
	if inv.Customer != nil {
		r.Customer = inv.Customer.Name
		if inv.Customer.Phone != nil {
			r.CustomerPhone = *inv.Customer.Phone
		}
	}

	for _, it := range inv.Items {
		item := entity.ReceiptItem{
			Name:          it.Name,
			Quantity:      it.Quantity,
			UnitPrice:     money.FromCents(it.UnitPrice),
			OriginalPrice: money.FromCents(it.OriginalPrice),
			Total:         money.FromCents(it.Total),
		}
		if it.DiscountedUnitPrice != nil {
			item.UnitPrice = money.FromCents(*it.DiscountedUnitPrice)
		}
		switch it.DiscountType {
		case "percentage":
			item.Discount = strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", it.DiscountValue), "0"), ".") + "%"
		case "amount":
			item.Discount = "-" + money.Format(it.DiscountValue)
		}
		if it.IdentifierValue != nil && *it.IdentifierValue != "" {
			item.Identifier = strings.ToUpper(it.IdentifierType.String()) + ": " + *it.IdentifierValue
		}
		r.Items = append(r.Items, item)
	}
	return r
}

// FormatThermal converts a receipt into ESC/POS bytes. The advanced layout
// adds discounts, identifiers, terms and a barcode of the invoice number.
func FormatThermal(r *entity.Receipt, width int, advanced bool) []byte {
	doc := printer.NewDocument(width)
	amt := func(v float64) string { return money.Format(v) }

	doc.SetAlign(printer.AlignCenter).
		SetBold(true).
		SetFontSize(printer.FontDouble).
		Wrap(r.Header.StoreName).
		SetFontSize(printer.FontNormal).
		SetBold(false)

	if r.Header.Address != "" {
		doc.Wrap(r.Header.Address)
	}
	if r.Header.Phone != "" {
		doc.Text(r.Header.Phone)
	}
	if r.Header.TaxID != "" {
		doc.TextF("PIN: %s", r.Header.TaxID)
	}

	doc.SetAlign(printer.AlignLeft).
		Separator('-').
		KeyValue("Invoice:", r.InvoiceNo).
		KeyValue("Date:", r.Date)

	if r.Cashier != "" {
		doc.KeyValue("Cashier:", r.Cashier)
	}
	if r.Customer != "" {
		doc.KeyValue("Customer:", r.Customer)
	}
	if r.PaymentType != "" {
		doc.KeyValue("Payment:", r.PaymentType)
	}

	doc.Separator('-')

	for _, item := range r.Items {
		doc.ItemLine(item.Quantity, item.Name, amt(item.Total))
		if item.Quantity > 1 {
			doc.TextF("  @ %s each", amt(item.UnitPrice))
		}
		if advanced {
			if item.Discount != "" {
				doc.TextF("  was %s, disc %s", amt(item.OriginalPrice), item.Discount)
			}
			if item.Identifier != "" {
				doc.TextF("  %s", item.Identifier)
			}
		}
	}

	doc.Separator('-').
		KeyValue("Subtotal:", amt(r.SubTotal))
	if r.DiscountAmount > 0 {
		doc.KeyValue("Discount:", "-"+amt(r.DiscountAmount))
	}
	if r.TaxAmount > 0 {
		doc.KeyValue(fmt.Sprintf("Tax (%s%%):", money.Format(r.TaxRate)), amt(r.TaxAmount))
	}
	doc.SetBold(true).
		KeyValue("TOTAL:", money.FormatWithCurrency(r.Currency, r.Total)).
		SetBold(false)

	if r.Tendered > 0 {
		doc.KeyValue("Tendered:", amt(r.Tendered))
	}
	if r.Change > 0 {
		doc.KeyValue("Change:", amt(r.Change))
	}
	if r.Due > 0 {
		doc.KeyValue("Balance due:", amt(r.Due))
	}

	doc.Separator('-').
		SetAlign(printer.AlignCenter)

	if advanced {
		if r.Notes != "" {
			doc.Wrap(r.Notes)
		}
		if r.Terms != "" {
			doc.Wrap(r.Terms)
		}
		doc.Barcode(r.InvoiceNo)
	}

	footer := r.Footer
	if footer == "" {
		footer = "Thank you for your business!"
	}
	doc.LineFeed().
		Wrap(footer).
		LineFeed().
		SetAlign(printer.AlignLeft).
		FeedLines(3).
		PartialCut()

	return doc.Bytes()
}

var a4Funcs = template.FuncMap{
	"amount": money.Format,
	"inc":    func(i int) int { return i + 1 },
}

var a4Template = template.Must(template.New("a4").Funcs(a4Funcs).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Invoice {{.R.InvoiceNo}}</title>
<style>
@page { size: A4; margin: 16mm; }
body { font-family: Arial, sans-serif; font-size: 12px; color: #222; }
.header { display: flex; justify-content: space-between; align-items: flex-start; }
.header img { max-height: 80px; }
table { width: 100%; border-collapse: collapse; margin-top: 16px; }
th, td { border-bottom: 1px solid #ddd; padding: 6px; text-align: left; }
td.num, th.num { text-align: right; }
.totals { width: 40%; margin-left: auto; }
.muted { color: #666; font-size: 11px; }
</style>
</head>
<body>
<div class="header">
  <div>
    {{if and .Advanced .R.Header.LogoURL}}<img src="{{.R.Header.LogoURL}}" alt="logo"><br>{{end}}
    <strong>{{.R.Header.StoreName}}</strong><br>
    {{with .R.Header.Address}}{{.}}<br>{{end}}
    {{with .R.Header.Phone}}{{.}}<br>{{end}}
    {{with .R.Header.Email}}{{.}}<br>{{end}}
    {{with .R.Header.TaxID}}PIN: {{.}}{{end}}
  </div>
  <div>
    <h2>INVOICE</h2>
    No: {{.R.InvoiceNo}}<br>
    Date: {{.R.Date}}<br>
    Status: {{.R.PaymentStatus}}<br>
    {{with .R.PaymentType}}Payment: {{.}}<br>{{end}}
    {{with .R.Cashier}}Cashier: {{.}}{{end}}
  </div>
</div>
{{if .R.Customer}}<p><strong>Bill to:</strong> {{.R.Customer}}{{with .R.CustomerPhone}} ({{.}}){{end}}</p>{{end}}
<table>
  <thead>
    <tr>
      <th>#</th><th>Item</th><th class="num">Qty</th>
      {{if .Advanced}}<th class="num">Price</th><th>Discount</th>{{end}}
      <th class="num">Unit</th><th class="num">Total</th>
    </tr>
  </thead>
  <tbody>
  {{range $i, $it := .R.Items}}
    <tr>
      <td>{{inc $i}}</td>
      <td>{{$it.Name}}{{if and $.Advanced $it.Identifier}}<br><span class="muted">{{$it.Identifier}}</span>{{end}}</td>
      <td class="num">{{$it.Quantity}}</td>
      {{if $.Advanced}}<td class="num">{{amount $it.OriginalPrice}}</td><td>{{$it.Discount}}</td>{{end}}
      <td class="num">{{amount $it.UnitPrice}}</td>
      <td class="num">{{amount $it.Total}}</td>
    </tr>
  {{end}}
  </tbody>
</table>
<table class="totals">
  <tr><td>Subtotal</td><td class="num">{{amount .R.SubTotal}}</td></tr>
  {{if gt .R.DiscountAmount 0.0}}<tr><td>Discount</td><td class="num">-{{amount .R.DiscountAmount}}</td></tr>{{end}}
  {{if gt .R.TaxAmount 0.0}}<tr><td>Tax ({{amount .R.TaxRate}}%)</td><td class="num">{{amount .R.TaxAmount}}</td></tr>{{end}}
  <tr><td><strong>Total</strong></td><td class="num"><strong>{{.R.Currency}} {{amount .R.Total}}</strong></td></tr>
  <tr><td>Paid</td><td class="num">{{amount .R.Paid}}</td></tr>
  {{if .Advanced}}{{if gt .R.Change 0.0}}<tr><td>Change</td><td class="num">{{amount .R.Change}}</td></tr>{{end}}{{end}}
  {{if gt .R.Due 0.0}}<tr><td>Balance due</td><td class="num">{{amount .R.Due}}</td></tr>{{end}}
</table>
{{if .Advanced}}
  {{with .R.Notes}}<h4>Notes</h4><p>{{.}}</p>{{end}}
  {{with .R.Terms}}<h4>Terms &amp; Conditions</h4><p>{{.}}</p>{{end}}
{{end}}
{{with .R.Footer}}<p class="muted">{{.}}</p>{{end}}
</body>
</html>
`))

// RenderA4 renders a printable A4 HTML invoice. The browser prints it or
// saves it as PDF.
func RenderA4(r *entity.Receipt, advanced bool) ([]byte, error) {
	var buf bytes.Buffer
	err := a4Template.Execute(&buf, struct {
		R        *entity.Receipt
		Advanced bool
	}{R: r, Advanced: advanced})
	if err != nil {
		return nil, fmt.Errorf("render a4 invoice: %w", err)
	}
	return buf.Bytes(), nil
}
