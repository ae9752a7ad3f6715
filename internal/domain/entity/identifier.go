package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tillpoint-api/internal/domain/enum"
	"gorm.io/gorm"
)

// ProductIdentifier is one serialized unit (IMEI or serial number) of a product.
// A unit is sold at most once.
type ProductIdentifier struct {
	ID        uuid.UUID           `gorm:"type:char(36);primary_key" json:"id"`
	ProductID uuid.UUID           `gorm:"type:char(36);not null;index" json:"product_id"`
	Type      enum.IdentifierType `gorm:"not null;uniqueIndex:idx_identifier_type_value" json:"type"`
	Value     string              `gorm:"size:100;not null;uniqueIndex:idx_identifier_type_value" json:"value"`
	Sold      bool                `gorm:"default:false;index" json:"sold"`
	SoldAt    *time.Time          `json:"sold_at,omitempty"`
	InvoiceID *uuid.UUID          `gorm:"type:char(36)" json:"invoice_id,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (i *ProductIdentifier) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (ProductIdentifier) TableName() string {
	return "product_identifiers"
}
