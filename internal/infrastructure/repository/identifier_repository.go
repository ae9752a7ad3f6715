package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tillpoint-api/internal/domain/entity"
	domainRepo "github.com/sangkips/tillpoint-api/internal/domain/repository"
	"gorm.io/gorm"
)

type identifierRepository struct {
	db *gorm.DB
}

// NewIdentifierRepository creates a new serialized-unit repository
func NewIdentifierRepository(db *gorm.DB) domainRepo.IdentifierRepository {
	return &identifierRepository{db: db}
}

func (r *identifierRepository) CreateBatch(ctx context.Context, identifiers []entity.ProductIdentifier) error {
	if len(identifiers) == 0 {
		return nil
	}
	return translateError(r.db.WithContext(ctx).Create(&identifiers).Error)
}

func (r *identifierRepository) GetByValue(ctx context.Context, value string) (*entity.ProductIdentifier, error) {
	var ident entity.ProductIdentifier
	err := r.db.WithContext(ctx).Preload("Product").First(&ident, "value = ?", value).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &ident, err
}

func (r *identifierRepository) ListByProduct(ctx context.Context, productID uuid.UUID, includeSold bool) ([]entity.ProductIdentifier, error) {
	query := r.db.WithContext(ctx).Where("product_id = ?", productID)
	if !includeSold {
		query = query.Where("sold = ?", false)
	}
	var identifiers []entity.ProductIdentifier
	err := query.Order("sold ASC, created_at ASC").Find(&identifiers).Error
	return identifiers, err
}

func (r *identifierRepository) Search(ctx context.Context, query string, limit int) ([]entity.ProductIdentifier, error) {
	var identifiers []entity.ProductIdentifier
	err := r.db.WithContext(ctx).
		Scopes(SearchScope(query, "value")).
		Preload("Product").
		Order("sold ASC, value ASC").
		Limit(limit).
		Find(&identifiers).Error
	return identifiers, err
}

func (r *identifierRepository) MarkSold(ctx context.Context, value string, invoiceID *uuid.UUID) (bool, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&entity.ProductIdentifier{}).
		Where("value = ? AND sold = ?", value, false).
		Updates(map[string]interface{}{
			"sold":       true,
			"sold_at":    now,
			"invoice_id": invoiceID,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
