package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tillpoint-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Invoice is a completed sale. Only the payment fields change after creation.
type Invoice struct {
	ID             uuid.UUID          `gorm:"type:char(36);primary_key" json:"id"`
	InvoiceNo      string             `gorm:"size:100;uniqueIndex;not null" json:"invoice_no"`
	UserID         uuid.UUID          `gorm:"type:char(36);not null;index" json:"user_id"`
	CustomerID     *uuid.UUID         `gorm:"type:char(36);index" json:"customer_id,omitempty"`
	InvoiceDate    time.Time          `gorm:"not null;index" json:"invoice_date"`
	TotalItems     int                `gorm:"default:0" json:"total_items"`
	SubTotal       int64              `gorm:"default:0" json:"-"` // cents
	DiscountType   string             `gorm:"size:20" json:"discount_type"`
	DiscountValue  float64            `gorm:"default:0" json:"discount_value"`
	DiscountAmount int64              `gorm:"default:0" json:"-"` // cents
	TaxRate        float64            `gorm:"default:0" json:"tax_rate"`
	TaxAmount      int64              `gorm:"default:0" json:"-"` // cents
	Total          int64              `gorm:"default:0" json:"-"` // cents
	PaymentMethod  string             `gorm:"size:50" json:"payment_method"`
	PaymentStatus  enum.PaymentStatus `gorm:"default:0;index" json:"payment_status"`
	AmountPaid     int64              `gorm:"default:0" json:"-"` // cents, capped at Total
	Tendered       int64              `gorm:"default:0" json:"-"` // cents
	ChangeDue      int64              `gorm:"default:0" json:"-"` // cents
	Notes          *string            `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
	DeletedAt      gorm.DeletedAt     `gorm:"index" json:"-"`

	User     *User         `gorm:"foreignKey:UserID" json:"cashier,omitempty"`
	Customer *Customer     `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Items    []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items,omitempty"`
}

// Due is what remains to be paid, in cents.
func (i *Invoice) Due() int64 {
	if d := i.Total - i.AmountPaid; d > 0 {
		return d
	}
	return 0
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (i Invoice) MarshalJSON() ([]byte, error) {
	type Alias Invoice
	return json.Marshal(&struct {
		Alias
		SubTotal       float64 `json:"subtotal"`
		DiscountAmount float64 `json:"discount_amount"`
		TaxAmount      float64 `json:"tax_amount"`
		Total          float64 `json:"total"`
		AmountPaid     float64 `json:"amount_paid"`
		Tendered       float64 `json:"tendered"`
		ChangeDue      float64 `json:"change_due"`
		Due            float64 `json:"due"`
	}{
		Alias:          Alias(i),
		SubTotal:       float64(i.SubTotal) / 100,
		DiscountAmount: float64(i.DiscountAmount) / 100,
		TaxAmount:      float64(i.TaxAmount) / 100,
		Total:          float64(i.Total) / 100,
		AmountPaid:     float64(i.AmountPaid) / 100,
		Tendered:       float64(i.Tendered) / 100,
		ChangeDue:      float64(i.ChangeDue) / 100,
		Due:            float64(i.Due()) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new invoice
func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (Invoice) TableName() string {
	return "invoices"
}

// InvoiceItem is a snapshot of one cart line at checkout
type InvoiceItem struct {
	ID                  uuid.UUID           `gorm:"type:char(36);primary_key" json:"id"`
	InvoiceID           uuid.UUID           `gorm:"type:char(36);not null;index" json:"invoice_id"`
	ProductID           uuid.UUID           `gorm:"type:char(36);not null;index" json:"product_id"`
	Name                string              `gorm:"size:255;not null" json:"name"`
	Quantity            int                 `gorm:"not null" json:"quantity"`
	UnitPrice           int64               `gorm:"not null" json:"-"` // cents
	OriginalPrice       int64               `gorm:"not null" json:"-"` // cents
	DiscountType        string              `gorm:"size:20" json:"discount_type"`
	DiscountValue       float64             `gorm:"default:0" json:"discount_value"`
	DiscountedUnitPrice *int64              `json:"-"` // cents
	Total               int64               `gorm:"not null" json:"-"` // cents
	IdentifierType      enum.IdentifierType `gorm:"default:0" json:"identifier_type"`
	IdentifierValue     *string             `gorm:"size:100" json:"identifier_value,omitempty"`
	CreatedAt           time.Time           `json:"created_at"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (it InvoiceItem) MarshalJSON() ([]byte, error) {
	type Alias InvoiceItem
	var discounted *float64
	if it.DiscountedUnitPrice != nil {
		v := float64(*it.DiscountedUnitPrice) / 100
		discounted = &v
	}
	return json.Marshal(&struct {
		Alias
		UnitPrice           float64  `json:"unit_price"`
		OriginalPrice       float64  `json:"original_price"`
		DiscountedUnitPrice *float64 `json:"discounted_unit_price,omitempty"`
		Total               float64  `json:"total"`
	}{
		Alias:               Alias(it),
		UnitPrice:           float64(it.UnitPrice) / 100,
		OriginalPrice:       float64(it.OriginalPrice) / 100,
		DiscountedUnitPrice: discounted,
		Total:               float64(it.Total) / 100,
	})
}

func (it *InvoiceItem) BeforeCreate(tx *gorm.DB) error {
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	return nil
}

func (InvoiceItem) TableName() string {
	return "invoice_items"
}
