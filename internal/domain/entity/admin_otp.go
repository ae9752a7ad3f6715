package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdminOTP authorises one destructive database operation
type AdminOTP struct {
	ID        uuid.UUID  `gorm:"type:char(36);primary_key"`
	UserID    uuid.UUID  `gorm:"type:char(36);not null;index"`
	CodeHash  string     `gorm:"size:255;not null"`
	Attempts  int        `gorm:"default:0"`
	ExpiresAt time.Time  `gorm:"not null;index"`
	UsedAt    *time.Time
	CreatedAt time.Time
}

func (o *AdminOTP) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

func (AdminOTP) TableName() string {
	return "admin_otps"
}

// Usable reports whether the code can still be redeemed at now.
func (o *AdminOTP) Usable(now time.Time, maxAttempts int) bool {
	return o.UsedAt == nil && now.Before(o.ExpiresAt) && o.Attempts < maxAttempts
}
