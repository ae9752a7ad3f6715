package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/tillpoint-api/internal/domain/entity"
	domainRepo "github.com/sangkips/tillpoint-api/internal/domain/repository"
	"gorm.io/gorm"
)

// businessTables are cleared child-first so foreign keys never block a delete.
var businessTables = []interface{}{
	&entity.InvoiceItem{},
	&entity.ProductIdentifier{},
	&entity.Invoice{},
	&entity.CashbookEntry{},
	&entity.FinanceRecord{},
	&entity.Customer{},
	&entity.Product{},
	&entity.AdditionalInfo{},
	&entity.IdempotencyKey{},
}

type adminRepository struct {
	db *gorm.DB
}

// NewAdminRepository creates the repository behind database administration
func NewAdminRepository(db *gorm.DB) domainRepo.AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) CreateOTP(ctx context.Context, otp *entity.AdminOTP) error {
	return r.db.WithContext(ctx).Create(otp).Error
}

func (r *adminRepository) LatestOTP(ctx context.Context, userID uuid.UUID) (*entity.AdminOTP, error) {
	var otp entity.AdminOTP
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND used_at IS NULL", userID).
		Order("created_at DESC").
		First(&otp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &otp, err
}

func (r *adminRepository) SaveOTP(ctx context.Context, otp *entity.AdminOTP) error {
	return r.db.WithContext(ctx).Save(otp).Error
}

func (r *adminRepository) TableCounts(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64, len(businessTables))
	stmt := &gorm.Statement{DB: r.db}
	for _, model := range businessTables {
		if err := stmt.Parse(model); err != nil {
			return nil, err
		}
		var n int64
		if err := r.db.WithContext(ctx).Model(model).Count(&n).Error; err != nil {
			return nil, err
		}
		counts[stmt.Schema.Table] = n
	}
	return counts, nil
}

func (r *adminRepository) ClearBusinessData(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range businessTables {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).
				Unscoped().
				Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
