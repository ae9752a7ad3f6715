package repository

import (
	"context"
	"errors"

	"github.com/sangkips/tillpoint-api/internal/domain/entity"
	domainRepo "github.com/sangkips/tillpoint-api/internal/domain/repository"
	"gorm.io/gorm"
)

type settingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *gorm.DB) domainRepo.SettingsRepository {
	return &settingsRepository{db: db}
}

// GetBusiness returns the oldest settings row; there is normally exactly one.
func (r *settingsRepository) GetBusiness(ctx context.Context) (*entity.BusinessSettings, error) {
	var settings entity.BusinessSettings
	err := r.db.WithContext(ctx).Order("created_at ASC").First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &settings, err
}

func (r *settingsRepository) SaveBusiness(ctx context.Context, settings *entity.BusinessSettings) error {
	return r.db.WithContext(ctx).Save(settings).Error
}

func (r *settingsRepository) GetAdditional(ctx context.Context) (*entity.AdditionalInfo, error) {
	var info entity.AdditionalInfo
	err := r.db.WithContext(ctx).Order("created_at ASC").First(&info).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &info, err
}

func (r *settingsRepository) SaveAdditional(ctx context.Context, info *entity.AdditionalInfo) error {
	return r.db.WithContext(ctx).Save(info).Error
}
