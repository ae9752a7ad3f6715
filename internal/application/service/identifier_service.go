package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/tillpoint-api/internal/domain/entity"
	"github.com/sangkips/tillpoint-api/internal/domain/enum"
	"github.com/sangkips/tillpoint-api/internal/domain/repository"
	"github.com/sangkips/tillpoint-api/pkg/apperror"
)

// IdentifierService manages the IMEI and serial number pools of serialized products
type IdentifierService struct {
	identifierRepo repository.IdentifierRepository
	productRepo    repository.ProductRepository
}

// NewIdentifierService creates a new identifier service
func NewIdentifierService(identifierRepo repository.IdentifierRepository, productRepo repository.ProductRepository) *IdentifierService {
	return &IdentifierService{
		identifierRepo: identifierRepo,
		productRepo:    productRepo,
	}
}

func (s *IdentifierService) serializedProduct(ctx context.Context, idType enum.IdentifierType, productID uuid.UUID) (*entity.Product, error) {
	if !idType.Serialized() {
		return nil, apperror.NewBadRequestError("Identifier type must be imei or serial")
	}
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	if product.IdentifierType != idType {
		return nil, apperror.NewBadRequestError("Product is not tracked by " + idType.String())
	}
	return product, nil
}

// List returns a product's identifiers. Sold units are included only on request.
func (s *IdentifierService) List(ctx context.Context, idType enum.IdentifierType, productID uuid.UUID, includeSold bool) ([]entity.ProductIdentifier, error) {
	if _, err := s.serializedProduct(ctx, idType, productID); err != nil {
		return nil, err
	}
	return s.identifierRepo.ListByProduct(ctx, productID, includeSold)
}

// BulkAddResult reports which values were stored and which were skipped
type BulkAddResult struct {
	Added      []entity.ProductIdentifier `json:"added"`
	Duplicates []string                   `json:"duplicates,omitempty"`
}

// BulkAdd registers new units for a serialized product. Blank values are
// ignored; values already known are reported as duplicates.
func (s *IdentifierService) BulkAdd(ctx context.Context, idType enum.IdentifierType, productID uuid.UUID, values []string) (*BulkAddResult, error) {
	if _, err := s.serializedProduct(ctx, idType, productID); err != nil {
		return nil, err
	}

	result := &BulkAddResult{}
	seen := make(map[string]bool)
	var fresh []entity.ProductIdentifier
	for _, raw := range values {
		v := strings.TrimSpace(raw)
		if v == "" {
			continue
		}
		if seen[v] {
			result.Duplicates = append(result.Duplicates, v)
			continue
		}
		seen[v] = true

		existing, err := s.identifierRepo.GetByValue(ctx, v)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			result.Duplicates = append(result.Duplicates, v)
			continue
		}
		fresh = append(fresh, entity.ProductIdentifier{ProductID: productID, Type: idType, Value: v})
	}
	if len(fresh) == 0 {
		if len(result.Duplicates) == 0 {
			return nil, apperror.NewBadRequestError("No identifier values supplied")
		}
		return result, nil
	}

	if err := s.identifierRepo.CreateBatch(ctx, fresh); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.NewConflictError("One or more identifiers already exist")
		}
		return nil, err
	}
	result.Added = fresh
	return result, nil
}

// MarkSold flags one unit as sold against an invoice. Selling a unit twice is
// a conflict.
func (s *IdentifierService) MarkSold(ctx context.Context, value string, invoiceID *uuid.UUID) (*entity.ProductIdentifier, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, apperror.NewBadRequestError("Identifier value is required")
	}
	ok, err := s.identifierRepo.MarkSold(ctx, value, invoiceID)
	if err != nil {
		return nil, err
	}
	current, err := s.identifierRepo.GetByValue(ctx, value)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, apperror.NewNotFoundError("Identifier")
	}
	if !ok {
		return nil, apperror.NewConflictError("Identifier " + value + " is already sold")
	}
	return current, nil
}

// Search matches identifier values across all products, sold ones included.
func (s *IdentifierService) Search(ctx context.Context, query string, limit int) ([]entity.ProductIdentifier, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []entity.ProductIdentifier{}, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.identifierRepo.Search(ctx, query, limit)
}

// Get returns one identifier by value.
func (s *IdentifierService) Get(ctx context.Context, value string) (*entity.ProductIdentifier, error) {
	ident, err := s.identifierRepo.GetByValue(ctx, strings.TrimSpace(value))
	if err != nil {
		return nil, err
	}
	if ident == nil {
		return nil, apperror.NewNotFoundError("Identifier")
	}
	return ident, nil
}
