package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tillpoint-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Product represents a sellable item in the inventory
type Product struct {
	ID             uuid.UUID           `gorm:"type:char(36);primary_key" json:"id"`
	UserID         uuid.UUID           `gorm:"type:char(36);index" json:"user_id"`
	Name           string              `gorm:"size:255;not null;index" json:"name"`
	Barcode        *string             `gorm:"size:100;uniqueIndex" json:"barcode,omitempty"`
	Code           string              `gorm:"size:100;uniqueIndex;not null" json:"code"`
	Category       string              `gorm:"size:100;index" json:"category"`
	Quantity       int                 `gorm:"default:0" json:"quantity"`
	QuantityAlert  int                 `gorm:"default:0" json:"quantity_alert"`
	BuyingPrice    int64               `gorm:"default:0" json:"-"` // cents
	SellingPrice   int64               `gorm:"default:0" json:"-"` // cents
	IdentifierType enum.IdentifierType `gorm:"default:0" json:"identifier_type"`
	Notes          *string             `gorm:"type:text" json:"notes,omitempty"`
	ProductImage   *string             `gorm:"size:255" json:"product_image,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	DeletedAt      gorm.DeletedAt      `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new product
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (Product) TableName() string {
	return "products"
}

func (p *Product) GetBuyingPriceDecimal() float64 {
	return float64(p.BuyingPrice) / 100
}

func (p *Product) GetSellingPriceDecimal() float64 {
	return float64(p.SellingPrice) / 100
}

// IsLowStock reports whether the quantity is at or below the alert level.
func (p *Product) IsLowStock() bool {
	return p.QuantityAlert > 0 && p.Quantity <= p.QuantityAlert
}

// MarshalJSON converts cents to decimal prices for API responses
func (p Product) MarshalJSON() ([]byte, error) {
	type Alias Product
	return json.Marshal(&struct {
		Alias
		BuyingPrice  float64 `json:"buying_price"`
		SellingPrice float64 `json:"selling_price"`
		LowStock     bool    `json:"low_stock"`
	}{
		Alias:        Alias(p),
		BuyingPrice:  p.GetBuyingPriceDecimal(),
		SellingPrice: p.GetSellingPriceDecimal(),
		LowStock:     p.IsLowStock(),
	})
}
