package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tillpoint-api/internal/domain/enum"
	"gorm.io/gorm"
)

// BusinessSettings is the single business-wide configuration record
type BusinessSettings struct {
	ID                uuid.UUID            `gorm:"type:char(36);primary_key" json:"id"`
	BusinessName      string               `gorm:"size:255;not null" json:"business_name"`
	Address           string               `gorm:"type:text" json:"address"`
	Phone             string               `gorm:"size:50" json:"phone"`
	Email             string               `gorm:"size:255" json:"email"`
	TaxPIN            string               `gorm:"size:50" json:"tax_pin"`
	Currency          string               `gorm:"size:10;default:'KES'" json:"currency"`
	TaxRate           float64              `gorm:"default:0" json:"tax_rate"`
	OpeningCash       int64                `gorm:"default:0" json:"-"` // cents
	InvoicePrefix     string               `gorm:"size:20;default:'INV'" json:"invoice_prefix"`
	ReceiptFooter     string               `gorm:"type:text" json:"receipt_footer"`
	DefaultFormat     enum.ReceiptFormat   `gorm:"default:0" json:"default_format"`
	DefaultPreference enum.PrintPreference `gorm:"default:0" json:"default_preference"`
	LogoURL           *string              `gorm:"size:500" json:"logo_url,omitempty"`
	LogoThumbURL      *string              `gorm:"size:500" json:"logo_thumb_url,omitempty"`
	TemplateURL       *string              `gorm:"size:500" json:"template_url,omitempty"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
}

func (s BusinessSettings) MarshalJSON() ([]byte, error) {
	type Alias BusinessSettings
	return json.Marshal(&struct {
		Alias
		OpeningCash float64 `json:"opening_cash"`
	}{
		Alias:       Alias(s),
		OpeningCash: float64(s.OpeningCash) / 100,
	})
}

func (s *BusinessSettings) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (BusinessSettings) TableName() string {
	return "business_settings"
}

// AdditionalInfo holds the free text printed on advanced invoices
type AdditionalInfo struct {
	ID        uuid.UUID `gorm:"type:char(36);primary_key" json:"id"`
	Notes     string    `gorm:"type:text" json:"notes"`
	Terms     string    `gorm:"type:text" json:"terms"`
	Summary   string    `gorm:"type:text" json:"summary"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *AdditionalInfo) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

func (AdditionalInfo) TableName() string {
	return "additional_info"
}
