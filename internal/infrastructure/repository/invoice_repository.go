package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tillpoint-api/internal/domain/entity"
	"github.com/sangkips/tillpoint-api/internal/domain/enum"
	domainRepo "github.com/sangkips/tillpoint-api/internal/domain/repository"
	"gorm.io/gorm"
)

type invoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *gorm.DB) domainRepo.InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *entity.Invoice) error {
	return translateError(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("User", "Customer").Create(invoice).Error
	}))
}

func (r *invoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	var invoice entity.Invoice
	err := r.db.WithContext(ctx).
		Preload("Customer").
		First(&invoice, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &invoice, err
}

func (r *invoiceRepository) GetByInvoiceNo(ctx context.Context, invoiceNo string) (*entity.Invoice, error) {
	var invoice entity.Invoice
	err := r.db.WithContext(ctx).First(&invoice, "invoice_no = ?", invoiceNo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &invoice, err
}

func (r *invoiceRepository) GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	var invoice entity.Invoice
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("User").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&invoice, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &invoice, err
}

func (r *invoiceRepository) UpdatePayment(ctx context.Context, invoice *entity.Invoice) error {
	return r.db.WithContext(ctx).Model(&entity.Invoice{}).
		Where("id = ?", invoice.ID).
		Updates(map[string]interface{}{
			"amount_paid":    invoice.AmountPaid,
			"payment_status": invoice.PaymentStatus,
			"payment_method": invoice.PaymentMethod,
		}).Error
}

func (r *invoiceRepository) filtered(ctx context.Context, search string, status *enum.PaymentStatus, customerID *uuid.UUID, start, end *time.Time) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&entity.Invoice{}).
		Scopes(SearchScope(search, "invoice_no"), DateRangeScope("invoice_date", start, end))
	if status != nil {
		query = query.Where("payment_status = ?", *status)
	}
	if customerID != nil {
		query = query.Where("customer_id = ?", *customerID)
	}
	return query
}

func (r *invoiceRepository) List(ctx context.Context, params *domainRepo.InvoiceFilterParams) ([]entity.Invoice, int64, error) {
	var invoices []entity.Invoice
	var total int64

	query := r.filtered(ctx, params.Search, params.Status, params.CustomerID, params.StartDate, params.EndDate)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Customer").
		Order(orderClause(params.SortBy, params.SortOrder, "invoice_date", "total", "invoice_no", "created_at")).
		Find(&invoices).Error

	return invoices, total, err
}

func (r *invoiceRepository) ListWithCursor(ctx context.Context, params *domainRepo.InvoiceCursorFilterParams) ([]entity.Invoice, error) {
	cursor, err := CursorScope(params.Cursor)
	if err != nil {
		return nil, err
	}
	var invoices []entity.Invoice
	err = r.filtered(ctx, params.Search, params.Status, params.CustomerID, params.StartDate, params.EndDate).
		Scopes(cursor).
		Preload("Customer").
		Find(&invoices).Error
	return invoices, err
}

func (r *invoiceRepository) ListUnpaidByCustomer(ctx context.Context, customerID uuid.UUID) ([]entity.Invoice, error) {
	var invoices []entity.Invoice
	err := r.db.WithContext(ctx).
		Where("customer_id = ? AND payment_status <> ?", customerID, enum.PaymentStatusPaid).
		Order("invoice_date ASC").
		Find(&invoices).Error
	return invoices, err
}

func (r *invoiceRepository) CountSince(ctx context.Context, t time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.Invoice{}).
		Unscoped().
		Where("created_at >= ?", t).
		Count(&n).Error
	return n, err
}
