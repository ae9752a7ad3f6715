package repository

import (
	"context"

	"github.com/sangkips/tillpoint-api/internal/domain/entity"
)

// SettingsRepository stores the single business settings record and the
// additional invoice text. Get methods return (nil, nil) before the first save.
type SettingsRepository interface {
	GetBusiness(ctx context.Context) (*entity.BusinessSettings, error)
	SaveBusiness(ctx context.Context, settings *entity.BusinessSettings) error
	GetAdditional(ctx context.Context) (*entity.AdditionalInfo, error)
	SaveAdditional(ctx context.Context, info *entity.AdditionalInfo) error
}
