package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tillpoint-api/internal/domain/enum"
	"gorm.io/gorm"
)

// FinanceRecord is an income or expense outside of till sales
type FinanceRecord struct {
	ID          uuid.UUID        `gorm:"type:char(36);primary_key" json:"id"`
	UserID      uuid.UUID        `gorm:"type:char(36);index" json:"user_id"`
	Kind        enum.FinanceKind `gorm:"not null;index" json:"kind"`
	Date        time.Time        `gorm:"not null;index" json:"date"`
	Category    string           `gorm:"size:100;index" json:"category"`
	Description string           `gorm:"size:255" json:"description"`
	Amount      int64            `gorm:"not null" json:"-"` // cents
	Mode        string           `gorm:"size:50" json:"mode"`
	Voucher     string           `gorm:"size:100" json:"voucher"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	DeletedAt   gorm.DeletedAt   `gorm:"index" json:"-"`
}

func (f FinanceRecord) MarshalJSON() ([]byte, error) {
	type Alias FinanceRecord
	return json.Marshal(&struct {
		Alias
		Amount float64 `json:"amount"`
	}{
		Alias:  Alias(f),
		Amount: float64(f.Amount) / 100,
	})
}

func (f *FinanceRecord) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

func (FinanceRecord) TableName() string {
	return "finance_records"
}
