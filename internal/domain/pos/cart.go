// Package pos holds the register's cart model and the pure functions that
// price and mutate it. Nothing here performs I/O.
package pos

import "time"

type DiscountType string

const (
	DiscountNone       DiscountType = "none"
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "amount"
)

// Valid reports whether t is a known discount type. The empty string counts as none.
func (t DiscountType) Valid() bool {
	switch t {
	case "", DiscountNone, DiscountPercentage, DiscountFixed:
		return true
	}
	return false
}

// IdentifierKind names the per-unit code a serialized product is tracked by.
type IdentifierKind string

const (
	IdentifierNone   IdentifierKind = "none"
	IdentifierIMEI   IdentifierKind = "imei"
	IdentifierSerial IdentifierKind = "serial"
)

// Serialized reports whether units of this kind are sold one identifier at a time.
func (k IdentifierKind) Serialized() bool {
	return k != "" && k != IdentifierNone
}

type Discount struct {
	Type  DiscountType `json:"type"`
	Value float64      `json:"value"`
}

type CartLine struct {
	LineID              string         `json:"line_id"`
	ProductID           string         `json:"product_id"`
	Name                string         `json:"name"`
	UnitPrice           float64        `json:"unit_price"`
	OriginalPrice       float64        `json:"original_price"`
	Quantity            int            `json:"quantity"`
	DiscountType        DiscountType   `json:"discount_type"`
	DiscountValue       float64        `json:"discount_value"`
	DiscountedUnitPrice *float64       `json:"discounted_unit_price,omitempty"`
	IdentifierType      IdentifierKind `json:"identifier_type"`
	IdentifierValue     string         `json:"identifier_value,omitempty"`
}

// UIFlags are the per-tab modal states. They are transient and never part of
// a held bill's business data.
type UIFlags struct {
	PaymentModal    bool `json:"payment_modal"`
	HoldModal       bool `json:"hold_modal"`
	UnholdModal     bool `json:"unhold_modal"`
	CustomerModal   bool `json:"customer_modal"`
	DiscountModal   bool `json:"discount_modal"`
	IdentifierModal bool `json:"identifier_modal"`
	FocusBarcode    bool `json:"focus_barcode"`
}

type TabState struct {
	TabID      string     `json:"tab_id"`
	Cart       []CartLine `json:"cart"`
	CustomerID string     `json:"customer_id,omitempty"`
	Discount   Discount   `json:"discount"`
	TaxRate    float64    `json:"tax_rate"`
	UI         UIFlags    `json:"ui"`
}

// Clone returns a deep copy. Cart slices and discounted prices are never shared.
func (t TabState) Clone() TabState {
	out := t
	if t.Cart != nil {
		out.Cart = make([]CartLine, len(t.Cart))
		for i, l := range t.Cart {
			out.Cart[i] = l.clone()
		}
	}
	return out
}

func (l CartLine) clone() CartLine {
	if l.DiscountedUnitPrice != nil {
		p := *l.DiscountedUnitPrice
		l.DiscountedUnitPrice = &p
	}
	return l
}

// TabPatch is a partial update. Nil fields are left as they are.
type TabPatch struct {
	Cart       *[]CartLine `json:"cart,omitempty"`
	CustomerID *string     `json:"customer_id,omitempty"`
	Discount   *Discount   `json:"discount,omitempty"`
	TaxRate    *float64    `json:"tax_rate,omitempty"`
	UI         *UIFlags    `json:"ui,omitempty"`
}

// Apply returns a copy of t with the patch applied.
func (p TabPatch) Apply(t TabState) TabState {
	out := t.Clone()
	if p.Cart != nil {
		out.Cart = TabState{Cart: *p.Cart}.Clone().Cart
	}
	if p.CustomerID != nil {
		out.CustomerID = *p.CustomerID
	}
	if p.Discount != nil {
		out.Discount = *p.Discount
	}
	if p.TaxRate != nil {
		out.TaxRate = *p.TaxRate
	}
	if p.UI != nil {
		out.UI = *p.UI
	}
	return out
}

// HeldBill is a parked tab, restorable only into the tab it came from.
type HeldBill struct {
	TabID    string    `json:"tab_id"`
	Label    string    `json:"label"`
	HeldAt   time.Time `json:"held_at"`
	Snapshot TabState  `json:"snapshot"`
}

// ProductSnapshot is what the register knows about a product at scan time.
type ProductSnapshot struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Barcode        string         `json:"barcode"`
	Code           string         `json:"code"`
	Price          float64        `json:"price"`
	Stock          int            `json:"stock"`
	IdentifierType IdentifierKind `json:"identifier_type"`
}

// Serialized reports whether the product is sold by identifier.
func (p ProductSnapshot) Serialized() bool {
	return p.IdentifierType.Serialized()
}
