package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer represents a contact who can buy on account
type Customer struct {
	ID        uuid.UUID      `gorm:"type:char(36);primary_key" json:"id"`
	UserID    uuid.UUID      `gorm:"type:char(36);index" json:"user_id"`
	Name      string         `gorm:"size:255;not null;index" json:"name"`
	Email     *string        `gorm:"size:255" json:"email,omitempty"`
	Phone     *string        `gorm:"size:50;index" json:"phone,omitempty"`
	TaxPIN    *string        `gorm:"size:50;column:tax_pin" json:"tax_pin,omitempty"`
	Address   *string        `gorm:"type:text" json:"address,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Invoices []Invoice `gorm:"foreignKey:CustomerID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new customer
func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (Customer) TableName() string {
	return "customers"
}
