// Package register is the in-memory point-of-sale engine: per-cashier tabs,
// held bills, the polled stock snapshot, barcode resolution and checkout.
//
// It talks to the rest of the system only through the interfaces below, which
// are satisfied in-process by the services (local.go) or over HTTP by the
// API client (remote.go).
package register

import (
	"context"

	"github.com/sangkips/tillpoint-api/internal/domain/enum"
	"github.com/sangkips/tillpoint-api/internal/domain/pos"
)

// Catalog looks products up for scanning. ProductByBarcode returns (nil, nil)
// when nothing matches.
type Catalog interface {
	ProductByBarcode(ctx context.Context, code string) (*pos.ProductSnapshot, error)
	Product(ctx context.Context, id string) (*pos.ProductSnapshot, error)
	SearchProducts(ctx context.Context, query string, limit int) ([]pos.ProductSnapshot, error)
}

// Identifier is one serialized unit as the register sees it.
type Identifier struct {
	Value       string             `json:"value"`
	Type        pos.IdentifierKind `json:"type"`
	ProductID   string             `json:"product_id"`
	ProductName string             `json:"product_name,omitempty"`
	Sold        bool               `json:"sold"`
}

// IdentifierSource reads identifier pools. Lookup returns (nil, nil) for an
// unknown value.
type IdentifierSource interface {
	Available(ctx context.Context, kind pos.IdentifierKind, productID string) ([]Identifier, error)
	Lookup(ctx context.Context, value string) (*Identifier, error)
	Search(ctx context.Context, query string, limit int) ([]Identifier, error)
}

// StockSource returns on-hand quantity per product id.
type StockSource interface {
	StockLevels(ctx context.Context) (map[string]int, error)
}

// InvoiceLine is a cart line as sent to the invoice endpoint.
type InvoiceLine struct {
	ProductID           string             `json:"product_id"`
	Name                string             `json:"name"`
	Quantity            int                `json:"quantity"`
	UnitPrice           float64            `json:"unit_price"`
	OriginalPrice       float64            `json:"original_price"`
	DiscountType        pos.DiscountType   `json:"discount_type"`
	DiscountValue       float64            `json:"discount_value"`
	DiscountedUnitPrice *float64           `json:"discounted_unit_price,omitempty"`
	IdentifierType      pos.IdentifierKind `json:"identifier_type"`
	IdentifierValue     string             `json:"identifier_value,omitempty"`
}

type InvoiceRequest struct {
	UserID        string        `json:"-"`
	CustomerID    string        `json:"customer_id,omitempty"`
	Items         []InvoiceLine `json:"items"`
	DiscountType  string        `json:"discount_type"`
	DiscountValue float64       `json:"discount_value"`
	TaxRate       float64       `json:"tax_rate"`
	PaymentMethod string        `json:"payment_method"`
	Tendered      float64       `json:"tendered"`
	Notes         string        `json:"notes,omitempty"`
}

type InvoiceResult struct {
	ID        string  `json:"id"`
	InvoiceNo string  `json:"invoice_no"`
	Total     float64 `json:"total"`
	ChangeDue float64 `json:"change_due"`
}

type InvoiceGateway interface {
	CreateInvoice(ctx context.Context, req InvoiceRequest) (*InvoiceResult, error)
}

// Effects are the post-sale updates that run after an invoice exists.
type Effects interface {
	DeductStock(ctx context.Context, productID string, quantity int) error
	MarkSold(ctx context.Context, value, invoiceID string) error
}

type ReceiptRenderer interface {
	Render(ctx context.Context, invoiceID string, format enum.ReceiptFormat) (contentType string, body []byte, err error)
}

type Dispatcher interface {
	SendEmail(ctx context.Context, invoiceID, to string) error
	SendSMS(ctx context.Context, invoiceID, phone string) error
}

// SettingsSource supplies the tax rate a fresh tab starts with.
type SettingsSource interface {
	DefaultTaxRate(ctx context.Context) (float64, error)
}

// PrintSink receives rendered ESC/POS bytes. pkg/printer.Printer satisfies it.
type PrintSink interface {
	Print(data []byte) error
}
