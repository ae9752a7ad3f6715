package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tillpoint-api/internal/domain/enum"
	"gorm.io/gorm"
)

// CashbookEntry is an append-only cash movement. Running balances are derived
// when listing and never stored.
type CashbookEntry struct {
	ID          uuid.UUID         `gorm:"type:char(36);primary_key" json:"id"`
	UserID      uuid.UUID         `gorm:"type:char(36);index" json:"user_id"`
	Date        time.Time         `gorm:"not null;index" json:"date"`
	Particulars string            `gorm:"size:255;not null" json:"particulars"`
	Voucher     string            `gorm:"size:100;index" json:"voucher"`
	Type        enum.CashbookType `gorm:"not null" json:"type"`
	Amount      int64             `gorm:"not null" json:"-"` // cents
	Mode        string            `gorm:"size:50" json:"mode"`
	Category    string            `gorm:"size:100;index" json:"category"`
	IsReturn    bool              `gorm:"default:false" json:"is_return"`
	SourceType  string            `gorm:"size:50" json:"source_type,omitempty"`
	SourceID    *uuid.UUID        `gorm:"type:char(36);index" json:"source_id,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

func (e CashbookEntry) MarshalJSON() ([]byte, error) {
	type Alias CashbookEntry
	return json.Marshal(&struct {
		Alias
		Amount float64 `json:"amount"`
	}{
		Alias:  Alias(e),
		Amount: float64(e.Amount) / 100,
	})
}

func (e *CashbookEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

func (CashbookEntry) TableName() string {
	return "cashbook_entries"
}
