package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tillpoint-api/internal/domain/entity"
	"github.com/sangkips/tillpoint-api/internal/domain/repository"
	"github.com/sangkips/tillpoint-api/pkg/apperror"
	"github.com/sangkips/tillpoint-api/pkg/money"
	"github.com/sangkips/tillpoint-api/pkg/pagination"
	"github.com/sangkips/tillpoint-api/pkg/sms"
)

// CustomerService handles contact operations
type CustomerService struct {
	customerRepo repository.CustomerRepository
	invoiceRepo  repository.InvoiceRepository
	phoneRegion  string
}

// NewCustomerService creates a new customer service. Phone numbers without a
// country prefix are read as numbers in phoneRegion.
func NewCustomerService(customerRepo repository.CustomerRepository, invoiceRepo repository.InvoiceRepository, phoneRegion string) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		invoiceRepo:  invoiceRepo,
		phoneRegion:  phoneRegion,
	}
}

// CustomerInput carries the writable contact fields
type CustomerInput struct {
	UserID  uuid.UUID
	Name    *string
	Email   *string
	Phone   *string
	TaxPIN  *string
	Address *string
}

func (s *CustomerService) normalizePhone(raw *string) (*string, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	e164, err := sms.NormalizePhone(*raw, s.phoneRegion)
	if err != nil {
		return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "phone", Message: err.Error()}})
	}
	return &e164, nil
}

// CreateCustomer creates a new contact. The phone is stored in E.164 form and
// must be unique.
func (s *CustomerService) CreateCustomer(ctx context.Context, input *CustomerInput) (*entity.Customer, error) {
	if input.Name == nil || strings.TrimSpace(*input.Name) == "" {
		return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "name", Message: "Name is required"}})
	}
	phone, err := s.normalizePhone(input.Phone)
	if err != nil {
		return nil, err
	}
	if err := s.ensurePhoneFree(ctx, phone, uuid.Nil); err != nil {
		return nil, err
	}

	customer := &entity.Customer{
		UserID:  input.UserID,
		Name:    strings.TrimSpace(*input.Name),
		Email:   trimmedOrNil(input.Email),
		Phone:   phone,
		TaxPIN:  trimmedOrNil(input.TaxPIN),
		Address: trimmedOrNil(input.Address),
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *CustomerService) ensurePhoneFree(ctx context.Context, phone *string, self uuid.UUID) error {
	if phone == nil {
		return nil
	}
	existing, err := s.customerRepo.GetByPhone(ctx, *phone)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != self {
		return apperror.NewConflictError("A contact with this phone number already exists")
	}
	return nil
}

// GetCustomer retrieves a customer by ID
func (s *CustomerService) GetCustomer(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}
	return customer, nil
}

// ListCustomers lists customers with offset pagination
func (s *CustomerService) ListCustomers(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.Customer], error) {
	customers, total, err := s.customerRepo.List(ctx, params, search)
	if err != nil {
		return nil, err
	}
	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(customers, pag), nil
}

// ListCustomersWithCursor lists customers with cursor-based pagination
func (s *CustomerService) ListCustomersWithCursor(ctx context.Context, params *pagination.CursorParams, search string) (*pagination.CursorPaginatedResult[entity.Customer], error) {
	customers, err := s.customerRepo.ListWithCursor(ctx, params, search)
	if err != nil {
		return nil, err
	}

	cursorPag, items := pagination.NewCursorPagination(customers, params.Limit,
		func(c entity.Customer) string { return c.ID.String() },
		func(c entity.Customer) time.Time { return c.CreatedAt },
	)
	cursorPag.HasPrev = params.Cursor != ""

	return pagination.NewCursorPaginatedResult(items, cursorPag), nil
}

// UpdateCustomer updates the supplied fields of a contact
func (s *CustomerService) UpdateCustomer(ctx context.Context, id uuid.UUID, input *CustomerInput) (*entity.Customer, error) {
	customer, err := s.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "name", Message: "Name is required"}})
		}
		customer.Name = name
	}
	if input.Phone != nil {
		phone, err := s.normalizePhone(input.Phone)
		if err != nil {
			return nil, err
		}
		if err := s.ensurePhoneFree(ctx, phone, customer.ID); err != nil {
			return nil, err
		}
		customer.Phone = phone
	}
	if input.Email != nil {
		customer.Email = trimmedOrNil(input.Email)
	}
	if input.TaxPIN != nil {
		customer.TaxPIN = trimmedOrNil(input.TaxPIN)
	}
	if input.Address != nil {
		customer.Address = trimmedOrNil(input.Address)
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// DeleteCustomer deletes a contact
func (s *CustomerService) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetCustomer(ctx, id); err != nil {
		return err
	}
	return s.customerRepo.Delete(ctx, id)
}

// CustomerAccount is a contact's open credit position
type CustomerAccount struct {
	Customer   *entity.Customer `json:"customer"`
	Invoices   []entity.Invoice `json:"invoices"`
	TotalDue   float64          `json:"total_due"`
	TotalPaid  float64          `json:"total_paid"`
	TotalValue float64          `json:"total_value"`
}

// GetAccount returns the unpaid and partially paid invoices of a contact and
// the balance still due.
func (s *CustomerService) GetAccount(ctx context.Context, id uuid.UUID) (*CustomerAccount, error) {
	customer, err := s.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	invoices, err := s.invoiceRepo.ListUnpaidByCustomer(ctx, id)
	if err != nil {
		return nil, err
	}

	var due, paid, total int64
	for i := range invoices {
		due += invoices[i].Due()
		paid += invoices[i].AmountPaid
		total += invoices[i].Total
	}
	if invoices == nil {
		invoices = []entity.Invoice{}
	}
	return &CustomerAccount{
		Customer:   customer,
		Invoices:   invoices,
		TotalDue:   money.FromCents(due),
		TotalPaid:  money.FromCents(paid),
		TotalValue: money.FromCents(total),
	}, nil
}
