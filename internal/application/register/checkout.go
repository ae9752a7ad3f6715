package register

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sangkips/tillpoint-api/internal/domain/enum"
	"github.com/sangkips/tillpoint-api/internal/domain/pos"
	"github.com/sangkips/tillpoint-api/pkg/logger"
	"github.com/sirupsen/logrus"
)

const (
	methodCredit  = "credit"
	effectTimeout = 30 * time.Second
)

// PaymentInput is what the cashier submits from the payment modal.
type PaymentInput struct {
	Method     string   `json:"method" validate:"required"`
	Tendered   float64  `json:"tendered" validate:"gte=0"`
	Preference string   `json:"preference" validate:"omitempty,oneof=print e-receipt both"`
	Formats    []string `json:"formats" validate:"omitempty,dive,oneof=a4 advance-a4 thermal advance-thermal"`
	Email      string   `json:"email" validate:"omitempty,email"`
	Phone      string   `json:"phone" validate:"omitempty,min=7,max=20"`
	Notes      string   `json:"notes" validate:"max=500"`
}

// ChannelStatus reports how one receipt channel fared. A failed channel never
// undoes the sale.
type ChannelStatus struct {
	Channel string `json:"channel"`
	Format  string `json:"format,omitempty"`
	Target  string `json:"target,omitempty"`
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
}

// RenderedReceipt is a document returned to the caller rather than printed.
type RenderedReceipt struct {
	Format      string `json:"format"`
	ContentType string `json:"content_type"`
	Body        string `json:"body"`
}

type CheckoutResult struct {
	Invoice   InvoiceResult     `json:"invoice"`
	Totals    pos.Totals        `json:"totals"`
	ChangeDue float64           `json:"change_due"`
	Tab       pos.TabState      `json:"tab"`
	Receipts  []RenderedReceipt `json:"receipts,omitempty"`
	Channels  []ChannelStatus   `json:"channels"`
}

// Assembler turns a tab and a payment into an invoice and its follow-up work.
type Assembler struct {
	invoices   InvoiceGateway
	effects    Effects
	receipts   ReceiptRenderer
	dispatcher Dispatcher
	printer    PrintSink
	stock      *StockCache
	validate   *validator.Validate

	wg sync.WaitGroup
}

type AssemblerDeps struct {
	Invoices   InvoiceGateway
	Effects    Effects
	Receipts   ReceiptRenderer
	Dispatcher Dispatcher
	Printer    PrintSink
	Stock      *StockCache
}

func NewAssembler(deps AssemblerDeps) *Assembler {
	return &Assembler{
		invoices:   deps.Invoices,
		effects:    deps.Effects,
		receipts:   deps.Receipts,
		dispatcher: deps.Dispatcher,
		printer:    deps.Printer,
		stock:      deps.Stock,
		validate:   validator.New(),
	}
}

// Checkout validates the payment against the tab's totals, creates the
// invoice and clears the tab. Validation failures return before any network
// call; an invoice failure leaves the cart intact for a retry.
func (a *Assembler) Checkout(ctx context.Context, reg *Register, tabID, userID string, in PaymentInput) (*CheckoutResult, error) {
	in.Method = strings.ToLower(strings.TrimSpace(in.Method))
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	if err := a.validate.Struct(in); err != nil {
		return nil, err
	}
	pref, _ := enum.ParsePrintPreference(in.Preference)

	tab, err := reg.beginCheckout(tabID)
	if err != nil {
		return nil, err
	}
	sold := false
	defer func() {
		if !sold {
			reg.endCheckout(tabID, false)
		}
	}()

	if len(tab.Cart) == 0 {
		return nil, pos.ErrEmptyCart
	}
	totals := pos.ComputeTotals(tab)

	var change float64
	if in.Method == methodCredit {
		if tab.CustomerID == "" {
			return nil, ErrCustomerRequired
		}
	} else if change, err = pos.ChangeDue(totals.GrandTotal, in.Tendered); err != nil {
		return nil, err
	}

	inv, err := a.invoices.CreateInvoice(ctx, buildInvoiceRequest(tab, userID, in))
	if err != nil {
		return nil, err
	}
	sold = true
	next := reg.endCheckout(tabID, true)

	logger.Get().WithFields(logrus.Fields{
		"invoice_no": inv.InvoiceNo,
		"tab_id":     tabID,
		"total":      inv.Total,
	}).Info("sale completed")

	a.fireEffects(ctx, inv, tab.Cart)

	result := &CheckoutResult{
		Invoice:   *inv,
		Totals:    totals,
		ChangeDue: change,
		Tab:       next,
		Channels:  []ChannelStatus{},
	}
	if pref.Prints() {
		a.produceReceipts(ctx, inv, in.Formats, result)
	}
	if pref.Sends() {
		a.dispatch(ctx, inv, in, result)
	}
	return result, nil
}

func buildInvoiceRequest(tab pos.TabState, userID string, in PaymentInput) InvoiceRequest {
	items := make([]InvoiceLine, 0, len(tab.Cart))
	for _, l := range tab.Cart {
		items = append(items, InvoiceLine{
			ProductID:           l.ProductID,
			Name:                l.Name,
			Quantity:            l.Quantity,
			UnitPrice:           l.UnitPrice,
			OriginalPrice:       l.OriginalPrice,
			DiscountType:        l.DiscountType,
			DiscountValue:       l.DiscountValue,
			DiscountedUnitPrice: l.DiscountedUnitPrice,
			IdentifierType:      l.IdentifierType,
			IdentifierValue:     l.IdentifierValue,
		})
	}
	return InvoiceRequest{
		UserID:        userID,
		CustomerID:    tab.CustomerID,
		Items:         items,
		DiscountType:  string(tab.Discount.Type),
		DiscountValue: tab.Discount.Value,
		TaxRate:       tab.TaxRate,
		PaymentMethod: in.Method,
		Tendered:      in.Tendered,
		Notes:         in.Notes,
	}
}

// fireEffects deducts stock and marks identifiers sold in the background.
// Failures are logged; the invoice stands regardless.
func (a *Assembler) fireEffects(ctx context.Context, inv *InvoiceResult, cart []pos.CartLine) {
	base := context.WithoutCancel(ctx)
	for _, l := range cart {
		if a.stock != nil {
			a.stock.Decrement(l.ProductID, l.Quantity)
		}
		if a.effects == nil {
			continue
		}
		line := l
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			ectx, cancel := context.WithTimeout(base, effectTimeout)
			defer cancel()
			fields := map[string]any{"invoice_no": inv.InvoiceNo, "product_id": line.ProductID}
			if err := a.effects.DeductStock(ectx, line.ProductID, line.Quantity); err != nil {
				logger.LogWarn("register", "DeductStock", "stock deduction failed", fields, err)
			}
			if line.IdentifierValue == "" {
				return
			}
			if err := a.effects.MarkSold(ectx, line.IdentifierValue, inv.ID); err != nil {
				fields["identifier"] = line.IdentifierValue
				logger.LogWarn("register", "MarkSold", "mark sold failed", fields, err)
			}
		}()
	}
}

// Wait blocks until every background effect started so far has finished.
func (a *Assembler) Wait() {
	a.wg.Wait()
}

func (a *Assembler) produceReceipts(ctx context.Context, inv *InvoiceResult, formats []string, result *CheckoutResult) {
	if len(formats) == 0 {
		formats = []string{enum.ReceiptFormatThermal.String()}
	}
	for _, name := range formats {
		format, _ := enum.ParseReceiptFormat(name)
		status := ChannelStatus{Channel: "print", Format: format.String()}
		if err := a.produce(ctx, inv, format, result); err != nil {
			status.Error = err.Error()
			logger.LogWarn("register", "produceReceipts", "receipt channel failed",
				map[string]any{"invoice_no": inv.InvoiceNo, "format": status.Format}, err)
		} else {
			status.OK = true
		}
		result.Channels = append(result.Channels, status)
	}
}

// produce renders one format. Thermal output goes to the printer; A4 is
// handed back as HTML for the browser to print.
func (a *Assembler) produce(ctx context.Context, inv *InvoiceResult, format enum.ReceiptFormat, result *CheckoutResult) error {
	if a.receipts == nil {
		return errors.New("receipt rendering is unavailable")
	}
	ct, body, err := a.receipts.Render(ctx, inv.ID, format)
	if err != nil {
		return err
	}
	if !format.Thermal() {
		result.Receipts = append(result.Receipts, RenderedReceipt{Format: format.String(), ContentType: ct, Body: string(body)})
		return nil
	}
	if a.printer == nil {
		return errors.New("no printer configured")
	}
	return a.printer.Print(body)
}

func (a *Assembler) dispatch(ctx context.Context, inv *InvoiceResult, in PaymentInput, result *CheckoutResult) {
	if in.Email == "" && in.Phone == "" {
		result.Channels = append(result.Channels, ChannelStatus{Channel: "e-receipt", Error: "no email or phone given"})
		return
	}
	if in.Email != "" {
		result.Channels = append(result.Channels, a.send(ctx, inv, "email", in.Email))
	}
	if in.Phone != "" {
		result.Channels = append(result.Channels, a.send(ctx, inv, "sms", in.Phone))
	}
}

func (a *Assembler) send(ctx context.Context, inv *InvoiceResult, channel, target string) ChannelStatus {
	status := ChannelStatus{Channel: channel, Target: target}
	if a.dispatcher == nil {
		status.Error = channel + " dispatch is unavailable"
		return status
	}
	var err error
	if channel == "email" {
		err = a.dispatcher.SendEmail(ctx, inv.ID, target)
	} else {
		err = a.dispatcher.SendSMS(ctx, inv.ID, target)
	}
	if err != nil {
		status.Error = err.Error()
		logger.LogWarn("register", "dispatch", channel+" receipt failed", map[string]any{"invoice_no": inv.InvoiceNo}, err)
		return status
	}
	status.OK = true
	return status
}
