package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tillpoint-api/internal/domain/entity"
	"github.com/sangkips/tillpoint-api/internal/domain/enum"
	"github.com/sangkips/tillpoint-api/pkg/pagination"
)

// InvoiceRepository defines the interface for invoice data operations
type InvoiceRepository interface {
	// Create inserts the invoice together with its items.
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	GetByInvoiceNo(ctx context.Context, invoiceNo string) (*entity.Invoice, error)
	// GetWithItems loads the invoice with items, customer and cashier.
	GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	// UpdatePayment writes only the payment fields.
	UpdatePayment(ctx context.Context, invoice *entity.Invoice) error
	List(ctx context.Context, params *InvoiceFilterParams) ([]entity.Invoice, int64, error)
	ListWithCursor(ctx context.Context, params *InvoiceCursorFilterParams) ([]entity.Invoice, error)
	// ListUnpaidByCustomer returns unpaid and partially paid invoices, oldest first.
	ListUnpaidByCustomer(ctx context.Context, customerID uuid.UUID) ([]entity.Invoice, error)
	// CountSince counts invoices created at or after t; seeds the daily sequence.
	CountSince(ctx context.Context, t time.Time) (int64, error)
}

// InvoiceFilterParams contains filtering parameters for invoice queries
type InvoiceFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	Status     *enum.PaymentStatus
	CustomerID *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
	SortBy     string
	SortOrder  string
}

// InvoiceCursorFilterParams contains cursor-based filtering for invoice queries
type InvoiceCursorFilterParams struct {
	Cursor     *pagination.CursorParams
	Search     string
	Status     *enum.PaymentStatus
	CustomerID *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
}
