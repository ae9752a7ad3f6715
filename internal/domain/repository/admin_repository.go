package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/tillpoint-api/internal/domain/entity"
)

// AdminRepository backs the OTP-gated database administration endpoints
type AdminRepository interface {
	CreateOTP(ctx context.Context, otp *entity.AdminOTP) error
	// LatestOTP returns the newest unused code issued to userID.
	LatestOTP(ctx context.Context, userID uuid.UUID) (*entity.AdminOTP, error)
	SaveOTP(ctx context.Context, otp *entity.AdminOTP) error
	// TableCounts returns the row count of every business table.
	TableCounts(ctx context.Context) (map[string]int64, error)
	// ClearBusinessData deletes all business rows in one transaction. Users and
	// business settings are kept.
	ClearBusinessData(ctx context.Context) error
}
