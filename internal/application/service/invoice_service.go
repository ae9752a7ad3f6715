package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tillpoint-api/internal/domain/entity"
	"github.com/sangkips/tillpoint-api/internal/domain/enum"
	"github.com/sangkips/tillpoint-api/internal/domain/pos"
	"github.com/sangkips/tillpoint-api/internal/domain/repository"
	"github.com/sangkips/tillpoint-api/internal/infrastructure/cache"
	"github.com/sangkips/tillpoint-api/pkg/apperror"
	"github.com/sangkips/tillpoint-api/pkg/logger"
	"github.com/sangkips/tillpoint-api/pkg/money"
	"github.com/sangkips/tillpoint-api/pkg/pagination"
	"github.com/sangkips/tillpoint-api/pkg/utils"
)

// PaymentMethodCredit marks a sale on account. Nothing is collected at the till.
const PaymentMethodCredit = "credit"

const invoiceSeqLock = "invoice-seq"

// InvoiceMailer delivers rendered invoices by email
type InvoiceMailer interface {
	Configured() bool
	SendInvoiceEmail(to, businessName, invoiceNo, html string) error
}

// TextSender delivers SMS messages
type TextSender interface {
	Configured() bool
	Send(ctx context.Context, phone, text string) error
}

// InvoiceService creates invoices, records payments and dispatches e-receipts
type InvoiceService struct {
	invoiceRepo  repository.InvoiceRepository
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	settingsRepo repository.SettingsRepository
	cashbook     *CashbookService
	receipts     *ReceiptService
	cache        *cache.Cache
	mailer       InvoiceMailer
	texter       TextSender
	now          func() time.Time
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	settingsRepo repository.SettingsRepository,
	cashbook *CashbookService,
	receipts *ReceiptService,
	c *cache.Cache,
	mailer InvoiceMailer,
	texter TextSender,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:  invoiceRepo,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		settingsRepo: settingsRepo,
		cashbook:     cashbook,
		receipts:     receipts,
		cache:        c,
		mailer:       mailer,
		texter:       texter,
		now:          time.Now,
	}
}

// InvoiceLineInput is one cart line as submitted at checkout
type InvoiceLineInput struct {
	ProductID           uuid.UUID
	Name                string
	Quantity            int
	UnitPrice           float64
	OriginalPrice       float64
	DiscountType        string
	DiscountValue       float64
	DiscountedUnitPrice *float64
	IdentifierType      enum.IdentifierType
	IdentifierValue     string
}

// CreateInvoiceInput represents a checkout submission
type CreateInvoiceInput struct {
	UserID        uuid.UUID
	CustomerID    *uuid.UUID
	Items         []InvoiceLineInput
	DiscountType  string
	DiscountValue float64
	TaxRate       float64
	PaymentMethod string
	Tendered      float64
	Notes         *string
}

// CreateInvoice validates a checkout, recomputes its totals and stores the
// invoice with its items. Stock is not touched here; the register deducts it
// separately once the invoice exists. The collected amount is mirrored into
// the cashbook.
func (s *InvoiceService) CreateInvoice(ctx context.Context, input *CreateInvoiceInput) (*entity.Invoice, error) {
	if len(input.Items) == 0 {
		return nil, apperror.NewUnprocessableError("Cart is empty")
	}
	method := strings.ToLower(strings.TrimSpace(input.PaymentMethod))
	if method == "" {
		return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "payment_method", Message: "Payment method is required"}})
	}

	var customer *entity.Customer
	if input.CustomerID != nil {
		c, err := s.customerRepo.GetByID(ctx, *input.CustomerID)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, apperror.NewNotFoundError("Customer")
		}
		customer = c
	}

	tab, err := s.tabFromInput(ctx, input)
	if err != nil {
		return nil, err
	}
	totals := pos.ComputeTotals(tab)

	totalCents := money.ToCents(totals.GrandTotal)
	tenderedCents := money.ToCents(input.Tendered)
	if tenderedCents < 0 {
		return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "tendered", Message: "Must not be negative"}})
	}
	paid := min(tenderedCents, totalCents)
	if method == PaymentMethodCredit {
		paid = 0
	}
	if paid < totalCents && customer == nil {
		return nil, apperror.NewUnprocessableError("A customer is required for credit or part-paid sales")
	}

	now := s.now()
	invoice := &entity.Invoice{
		UserID:         input.UserID,
		CustomerID:     input.CustomerID,
		InvoiceDate:    now,
		TotalItems:     totals.Items,
		SubTotal:       money.ToCents(totals.Subtotal),
		DiscountType:   string(tab.Discount.Type),
		DiscountValue:  tab.Discount.Value,
		DiscountAmount: money.ToCents(totals.DiscountAmount),
		TaxRate:        tab.TaxRate,
		TaxAmount:      money.ToCents(totals.TaxAmount),
		Total:          totalCents,
		PaymentMethod:  method,
		PaymentStatus:  enum.PaymentStatusFor(paid, totalCents),
		AmountPaid:     paid,
		Tendered:       tenderedCents,
		ChangeDue:      max(tenderedCents-totalCents, 0),
		Notes:          input.Notes,
		Items:          invoiceItems(tab.Cart),
	}

	settings, err := s.settingsRepo.GetBusiness(ctx)
	if err != nil {
		return nil, err
	}
	prefix := "INV"
	if settings != nil && settings.InvoicePrefix != "" {
		prefix = settings.InvoicePrefix
	}

	invoice.InvoiceNo, err = s.nextInvoiceNo(ctx, prefix, now)
	if err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, err
		}
		// sequence drifted from the table; fall back to a random suffix once
		invoice.ID = uuid.Nil
		invoice.InvoiceNo = utils.GenerateInvoiceNo(prefix, now, 0)
		for i := range invoice.Items {
			invoice.Items[i].ID = uuid.Nil
		}
		if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
			return nil, err
		}
	}

	if paid > 0 {
		particulars := "Sale " + invoice.InvoiceNo
		if customer != nil {
			particulars += " - " + customer.Name
		}
		s.recordCash(ctx, &entity.CashbookEntry{
			UserID:      input.UserID,
			Date:        now,
			Particulars: particulars,
			Voucher:     invoice.InvoiceNo,
			Type:        enum.CashbookCashIn,
			Amount:      paid,
			Mode:        method,
			Category:    "Sales",
			SourceType:  SourceInvoice,
			SourceID:    &invoice.ID,
		})
	}

	return s.GetInvoice(ctx, invoice.ID)
}

// tabFromInput rebuilds the cart so the shared pricing rules compute the totals.
func (s *InvoiceService) tabFromInput(ctx context.Context, input *CreateInvoiceInput) (pos.TabState, error) {
	ids := make([]uuid.UUID, 0, len(input.Items))
	for _, it := range input.Items {
		ids = append(ids, it.ProductID)
	}
	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return pos.TabState{}, err
	}
	byID := make(map[uuid.UUID]*entity.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	var fieldErrors []apperror.FieldError
	seenIdentifiers := make(map[string]bool)
	cart := make([]pos.CartLine, 0, len(input.Items))
	for i, it := range input.Items {
		field := fmt.Sprintf("items[%d]", i)
		product, ok := byID[it.ProductID]
		if !ok {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: field + ".product_id", Message: "Product not found"})
			continue
		}
		if it.Quantity <= 0 {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: field + ".quantity", Message: "Quantity must be at least 1"})
			continue
		}
		if it.UnitPrice < 0 {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: field + ".unit_price", Message: "Price must not be negative"})
			continue
		}
		dt := pos.DiscountType(it.DiscountType)
		if dt == "" {
			dt = pos.DiscountNone
		}
		if !dt.Valid() {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: field + ".discount_type", Message: "Expected none, percentage or amount"})
			continue
		}
		if it.DiscountValue < 0 || (dt == pos.DiscountPercentage && it.DiscountValue > 100) {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: field + ".discount_value", Message: pos.ErrInvalidDiscount.Error()})
			continue
		}

		name := it.Name
		if name == "" {
			name = product.Name
		}
		original := it.OriginalPrice
		if original == 0 {
			original = it.UnitPrice
		}
		line := pos.CartLine{
			LineID:        it.ProductID.String(),
			ProductID:     it.ProductID.String(),
			Name:          name,
			UnitPrice:     it.UnitPrice,
			OriginalPrice: original,
			Quantity:      it.Quantity,
		}
		if value := strings.TrimSpace(it.IdentifierValue); value != "" || product.IdentifierType.Serialized() {
			if value == "" {
				fieldErrors = append(fieldErrors, apperror.FieldError{Field: field + ".identifier_value", Message: "Serialized products need an identifier"})
				continue
			}
			if it.Quantity != 1 {
				fieldErrors = append(fieldErrors, apperror.FieldError{Field: field + ".quantity", Message: "Identified units are sold one at a time"})
				continue
			}
			if seenIdentifiers[value] {
				fieldErrors = append(fieldErrors, apperror.FieldError{Field: field + ".identifier_value", Message: "Identifier appears twice"})
				continue
			}
			seenIdentifiers[value] = true
			line.LineID = pos.IdentifiedLineID(line.ProductID, value)
			line.IdentifierType = pos.IdentifierKind(product.IdentifierType.String())
			line.IdentifierValue = value
		}
		if dt != pos.DiscountNone {
			line = pos.ApplyLineDiscount(line, dt, it.DiscountValue)
		} else if it.DiscountedUnitPrice != nil {
			v := *it.DiscountedUnitPrice
			line.DiscountedUnitPrice = &v
		}
		cart = append(cart, line)
	}
	if len(fieldErrors) > 0 {
		return pos.TabState{}, apperror.NewValidationError(fieldErrors)
	}

	tab := pos.TabState{Cart: cart}
	orderType := pos.DiscountType(input.DiscountType)
	if orderType == "" {
		orderType = pos.DiscountNone
	}
	tab, err = pos.SetOrderDiscount(tab, pos.Discount{Type: orderType, Value: input.DiscountValue})
	if err != nil {
		return pos.TabState{}, apperror.NewValidationError([]apperror.FieldError{{Field: "discount", Message: err.Error()}})
	}
	tab, err = pos.SetTaxRate(tab, input.TaxRate)
	if err != nil {
		return pos.TabState{}, apperror.NewValidationError([]apperror.FieldError{{Field: "tax_rate", Message: err.Error()}})
	}
	return tab, nil
}

func invoiceItems(cart []pos.CartLine) []entity.InvoiceItem {
	items := make([]entity.InvoiceItem, 0, len(cart))
	for _, l := range cart {
		pid, _ := uuid.Parse(l.ProductID)
		item := entity.InvoiceItem{
			ProductID:     pid,
			Name:          l.Name,
			Quantity:      l.Quantity,
			UnitPrice:     money.ToCents(l.UnitPrice),
			OriginalPrice: money.ToCents(l.OriginalPrice),
			DiscountType:  string(l.DiscountType),
			DiscountValue: l.DiscountValue,
			Total:         money.ToCents(pos.LineTotal(l)),
		}
		if l.DiscountType == pos.DiscountNone {
			item.DiscountType = ""
		}
		if l.DiscountedUnitPrice != nil {
			c := money.ToCents(*l.DiscountedUnitPrice)
			item.DiscountedUnitPrice = &c
		}
		if l.IdentifierValue != "" {
			v := l.IdentifierValue
			item.IdentifierValue = &v
			item.IdentifierType, _ = enum.ParseIdentifierType(string(l.IdentifierType))
		}
		items = append(items, item)
	}
	return items
}

// nextInvoiceNo hands out the day's next sequence number. The redis counter is
// seeded from the table the first time it is used each day. Without redis the
// count is read under a process-local lock.
func (s *InvoiceService) nextInvoiceNo(ctx context.Context, prefix string, now time.Time) (string, error) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	key := "invoice:seq:" + day.Format("20060102")

	var seq int64
	next := func(ctx context.Context) error {
		count, err := s.invoiceRepo.CountSince(ctx, day)
		if err != nil {
			return err
		}
		if !s.cache.Enabled() {
			seq = count + 1
			return nil
		}
		if err := s.cache.SetIfAbsent(ctx, key, count, 48*time.Hour); err != nil {
			return err
		}
		seq, err = s.cache.Incr(ctx, key, 48*time.Hour)
		return err
	}

	var err error
	for attempt := 0; attempt < 5; attempt++ {
		err = s.cache.WithLock(ctx, invoiceSeqLock, 5*time.Second, next)
		if !errors.Is(err, cache.ErrLockNotObtained) {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(20 * time.Millisecond):
		}
	}
	if errors.Is(err, cache.ErrLockNotObtained) {
		return utils.GenerateInvoiceNo(prefix, now, 0), nil
	}
	if err != nil {
		return "", err
	}
	return utils.GenerateInvoiceNo(prefix, now, seq), nil
}

func (s *InvoiceService) recordCash(ctx context.Context, entry *entity.CashbookEntry) {
	if err := s.cashbook.Record(ctx, entry); err != nil {
		logger.LogError("invoice", "recordCash", "cashbook entry failed", map[string]any{"voucher": entry.Voucher}, err)
	}
}

// GetInvoice retrieves an invoice with items, customer and cashier
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	invoice, err := s.invoiceRepo.GetWithItems(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	return invoice, nil
}

// ListInvoices lists invoices with filtering
func (s *InvoiceService) ListInvoices(ctx context.Context, params *repository.InvoiceFilterParams) (*pagination.PaginatedResult[entity.Invoice], error) {
	invoices, total, err := s.invoiceRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(invoices, pag), nil
}

// ListInvoicesWithCursor lists invoices with cursor-based pagination
func (s *InvoiceService) ListInvoicesWithCursor(ctx context.Context, params *repository.InvoiceCursorFilterParams) (*pagination.CursorPaginatedResult[entity.Invoice], error) {
	invoices, err := s.invoiceRepo.ListWithCursor(ctx, params)
	if err != nil {
		return nil, err
	}

	cursorPag, items := pagination.NewCursorPagination(invoices, params.Cursor.Limit,
		func(i entity.Invoice) string { return i.ID.String() },
		func(i entity.Invoice) time.Time { return i.CreatedAt },
	)
	cursorPag.HasPrev = params.Cursor.Cursor != ""

	return pagination.NewCursorPaginatedResult(items, cursorPag), nil
}

// PayNow records a payment against an open invoice. Amounts above the balance
// due are capped; the cashbook receives the applied amount.
func (s *InvoiceService) PayNow(ctx context.Context, userID, id uuid.UUID, amount float64, method string) (*entity.Invoice, error) {
	if amount <= 0 {
		return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "amount", Message: "Amount must be greater than zero"}})
	}
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	due := invoice.Due()
	if due == 0 {
		return nil, apperror.NewConflictError("Invoice is already paid")
	}

	applied := min(money.ToCents(amount), due)
	invoice.AmountPaid += applied
	invoice.PaymentStatus = enum.PaymentStatusFor(invoice.AmountPaid, invoice.Total)
	if err := s.invoiceRepo.UpdatePayment(ctx, invoice); err != nil {
		return nil, err
	}

	method = strings.ToLower(strings.TrimSpace(method))
	if method == "" {
		method = "cash"
	}
	now := s.now()
	s.recordCash(ctx, &entity.CashbookEntry{
		UserID:      userID,
		Date:        now,
		Particulars: "Payment for " + invoice.InvoiceNo,
		Voucher:     fmt.Sprintf("%s-P%d", invoice.InvoiceNo, now.Unix()),
		Type:        enum.CashbookCashIn,
		Amount:      applied,
		Mode:        method,
		Category:    "Sales",
		SourceType:  SourcePayment,
		SourceID:    &invoice.ID,
	})

	return s.GetInvoice(ctx, id)
}

// SendEmail mails the advanced A4 invoice. The customer's address is used
// when to is empty.
func (s *InvoiceService) SendEmail(ctx context.Context, id uuid.UUID, to string) error {
	if s.mailer == nil || !s.mailer.Configured() {
		return apperror.NewUnprocessableError("Email is not configured")
	}
	invoice, err := s.GetInvoice(ctx, id)
	if err != nil {
		return err
	}
	to = strings.TrimSpace(to)
	if to == "" && invoice.Customer != nil && invoice.Customer.Email != nil {
		to = *invoice.Customer.Email
	}
	if to == "" {
		return apperror.NewValidationError([]apperror.FieldError{{Field: "email", Message: "No email address for this invoice"}})
	}

	receipt, err := s.receipts.Receipt(ctx, id)
	if err != nil {
		return err
	}
	html, err := RenderA4(receipt, true)
	if err != nil {
		return err
	}
	if err := s.mailer.SendInvoiceEmail(to, receipt.Header.StoreName, invoice.InvoiceNo, string(html)); err != nil {
		return apperror.NewBadGatewayError("Failed to send email: " + err.Error())
	}
	return nil
}

// SendSMS texts a short invoice summary. The customer's phone is used when
// phone is empty.
func (s *InvoiceService) SendSMS(ctx context.Context, id uuid.UUID, phone string) error {
	if s.texter == nil || !s.texter.Configured() {
		return apperror.NewUnprocessableError("SMS is not configured")
	}
	receipt, err := s.receipts.Receipt(ctx, id)
	if err != nil {
		return err
	}
	phone = strings.TrimSpace(phone)
	if phone == "" {
		phone = receipt.CustomerPhone
	}
	if phone == "" {
		return apperror.NewValidationError([]apperror.FieldError{{Field: "phone", Message: "No phone number for this invoice"}})
	}

	if err := s.texter.Send(ctx, phone, SMSText(receipt)); err != nil {
		return apperror.NewBadGatewayError("Failed to send SMS: " + err.Error())
	}
	return nil
}

// SMSText is the one-message e-receipt
func SMSText(r *entity.Receipt) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: invoice %s, total %s", r.Header.StoreName, r.InvoiceNo, money.FormatWithCurrency(r.Currency, r.Total))
	fmt.Fprintf(&b, ", paid %s", money.Format(r.Paid))
	if r.Change > 0 {
		fmt.Fprintf(&b, ", change %s", money.Format(r.Change))
	}
	if r.Due > 0 {
		fmt.Fprintf(&b, ", balance %s", money.Format(r.Due))
	}
	b.WriteString(". Thank you!")
	return b.String()
}
