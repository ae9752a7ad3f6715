package register

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/sangkips/tillpoint-api/internal/application/service"
	"github.com/sangkips/tillpoint-api/internal/domain/entity"
	"github.com/sangkips/tillpoint-api/internal/domain/enum"
	"github.com/sangkips/tillpoint-api/internal/domain/pos"
	"github.com/sangkips/tillpoint-api/pkg/apperror"
	"github.com/sangkips/tillpoint-api/pkg/money"
)

// Backend is everything the register needs from the rest of the system.
type Backend interface {
	Catalog
	IdentifierSource
	StockSource
	InvoiceGateway
	Effects
	ReceiptRenderer
	Dispatcher
	SettingsSource
}

// Local serves the register from the services of the same process.
type Local struct {
	Products    *service.ProductService
	Inventory   *service.InventoryService
	Identifiers *service.IdentifierService
	Invoices    *service.InvoiceService
	Receipts    *service.ReceiptService
	Settings    *service.SettingsService
}

var _ Backend = (*Local)(nil)

func parseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.NewBadRequestError("Invalid " + field)
	}
	return id, nil
}

// notFound turns a 404 AppError into (nil, nil) for the lookup methods.
func notFound(err error) bool {
	return apperror.IsAppError(err) && apperror.GetAppError(err).Code == http.StatusNotFound
}

func snapshotOf(p *entity.Product) *pos.ProductSnapshot {
	s := &pos.ProductSnapshot{
		ID:             p.ID.String(),
		Name:           p.Name,
		Code:           p.Code,
		Price:          p.GetSellingPriceDecimal(),
		Stock:          p.Quantity,
		IdentifierType: pos.IdentifierKind(p.IdentifierType.String()),
	}
	if p.Barcode != nil {
		s.Barcode = *p.Barcode
	}
	return s
}

func identifierOf(i *entity.ProductIdentifier) Identifier {
	out := Identifier{
		Value:     i.Value,
		Type:      pos.IdentifierKind(i.Type.String()),
		ProductID: i.ProductID.String(),
		Sold:      i.Sold,
	}
	if i.Product != nil {
		out.ProductName = i.Product.Name
	}
	return out
}

func (l *Local) ProductByBarcode(ctx context.Context, code string) (*pos.ProductSnapshot, error) {
	p, err := l.Products.GetByBarcode(ctx, code)
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return snapshotOf(p), nil
}

func (l *Local) Product(ctx context.Context, id string) (*pos.ProductSnapshot, error) {
	pid, err := parseID("product id", id)
	if err != nil {
		return nil, err
	}
	p, err := l.Products.GetProduct(ctx, pid)
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return snapshotOf(p), nil
}

func (l *Local) SearchProducts(ctx context.Context, query string, limit int) ([]pos.ProductSnapshot, error) {
	products, err := l.Products.SearchProducts(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	out := make([]pos.ProductSnapshot, 0, len(products))
	for i := range products {
		out = append(out, *snapshotOf(&products[i]))
	}
	return out, nil
}

func (l *Local) Available(ctx context.Context, kind pos.IdentifierKind, productID string) ([]Identifier, error) {
	pid, err := parseID("product id", productID)
	if err != nil {
		return nil, err
	}
	idType, _ := enum.ParseIdentifierType(string(kind))
	idents, err := l.Identifiers.List(ctx, idType, pid, false)
	if err != nil {
		return nil, err
	}
	out := make([]Identifier, 0, len(idents))
	for i := range idents {
		out = append(out, identifierOf(&idents[i]))
	}
	return out, nil
}

func (l *Local) Lookup(ctx context.Context, value string) (*Identifier, error) {
	ident, err := l.Identifiers.Get(ctx, value)
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	out := identifierOf(ident)
	return &out, nil
}

func (l *Local) Search(ctx context.Context, query string, limit int) ([]Identifier, error) {
	idents, err := l.Identifiers.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	out := make([]Identifier, 0, len(idents))
	for i := range idents {
		out = append(out, identifierOf(&idents[i]))
	}
	return out, nil
}

func (l *Local) StockLevels(ctx context.Context) (map[string]int, error) {
	levels, err := l.Inventory.StockLevels(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(levels))
	for id, qty := range levels {
		out[id.String()] = qty
	}
	return out, nil
}

// InvoiceInput converts the wire form of a checkout into the service input.
func InvoiceInput(req InvoiceRequest) (*service.CreateInvoiceInput, error) {
	userID, err := parseID("user id", req.UserID)
	if err != nil {
		return nil, err
	}
	input := &service.CreateInvoiceInput{
		UserID:        userID,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		TaxRate:       req.TaxRate,
		PaymentMethod: req.PaymentMethod,
		Tendered:      req.Tendered,
	}
	if req.CustomerID != "" {
		cid, err := parseID("customer id", req.CustomerID)
		if err != nil {
			return nil, err
		}
		input.CustomerID = &cid
	}
	if req.Notes != "" {
		input.Notes = &req.Notes
	}
	for _, it := range req.Items {
		pid, err := parseID("product id", it.ProductID)
		if err != nil {
			return nil, err
		}
		idType, _ := enum.ParseIdentifierType(string(it.IdentifierType))
		input.Items = append(input.Items, service.InvoiceLineInput{
			ProductID:           pid,
			Name:                it.Name,
			Quantity:            it.Quantity,
			UnitPrice:           it.UnitPrice,
			OriginalPrice:       it.OriginalPrice,
			DiscountType:        string(it.DiscountType),
			DiscountValue:       it.DiscountValue,
			DiscountedUnitPrice: it.DiscountedUnitPrice,
			IdentifierType:      idType,
			IdentifierValue:     it.IdentifierValue,
		})
	}
	return input, nil
}

func (l *Local) CreateInvoice(ctx context.Context, req InvoiceRequest) (*InvoiceResult, error) {
	input, err := InvoiceInput(req)
	if err != nil {
		return nil, err
	}
	inv, err := l.Invoices.CreateInvoice(ctx, input)
	if err != nil {
		return nil, err
	}
	return &InvoiceResult{
		ID:        inv.ID.String(),
		InvoiceNo: inv.InvoiceNo,
		Total:     money.FromCents(inv.Total),
		ChangeDue: money.FromCents(inv.ChangeDue),
	}, nil
}

func (l *Local) DeductStock(ctx context.Context, productID string, quantity int) error {
	pid, err := parseID("product id", productID)
	if err != nil {
		return err
	}
	_, err = l.Inventory.Deduct(ctx, pid, quantity)
	return err
}

func (l *Local) MarkSold(ctx context.Context, value, invoiceID string) error {
	var inv *uuid.UUID
	if invoiceID != "" {
		id, err := parseID("invoice id", invoiceID)
		if err != nil {
			return err
		}
		inv = &id
	}
	_, err := l.Identifiers.MarkSold(ctx, value, inv)
	return err
}

func (l *Local) Render(ctx context.Context, invoiceID string, format enum.ReceiptFormat) (string, []byte, error) {
	id, err := parseID("invoice id", invoiceID)
	if err != nil {
		return "", nil, err
	}
	return l.Receipts.Render(ctx, id, format)
}

func (l *Local) SendEmail(ctx context.Context, invoiceID, to string) error {
	id, err := parseID("invoice id", invoiceID)
	if err != nil {
		return err
	}
	return l.Invoices.SendEmail(ctx, id, to)
}

func (l *Local) SendSMS(ctx context.Context, invoiceID, phone string) error {
	id, err := parseID("invoice id", invoiceID)
	if err != nil {
		return err
	}
	return l.Invoices.SendSMS(ctx, id, phone)
}

func (l *Local) DefaultTaxRate(ctx context.Context) (float64, error) {
	settings, err := l.Settings.GetBusiness(ctx)
	if err != nil {
		return 0, err
	}
	return settings.TaxRate, nil
}
