package pos

// Reducers take a TabState by value and return the next one. On error the
// returned state is the zero value and the caller keeps its original.

// IdentifiedLineID is the line key for a serialized unit.
func IdentifiedLineID(productID, identifier string) string {
	return productID + "#" + identifier
}

func findLine(cart []CartLine, lineID string) int {
	for i := range cart {
		if cart[i].LineID == lineID {
			return i
		}
	}
	return -1
}

// AddProduct adds one unit of a non-serialized product, incrementing the
// existing line when there is one. available bounds the resulting quantity.
func AddProduct(t TabState, p ProductSnapshot, available int) (TabState, error) {
	if p.Serialized() {
		return TabState{}, ErrIdentifierRequired
	}
	out := t.Clone()
	if i := findLine(out.Cart, p.ID); i >= 0 {
		if out.Cart[i].Quantity+1 > available {
			return TabState{}, ErrStockExceeded
		}
		out.Cart[i].Quantity++
		return out, nil
	}
	if available < 1 {
		return TabState{}, ErrStockExceeded
	}
	out.Cart = append(out.Cart, CartLine{
		LineID:         p.ID,
		ProductID:      p.ID,
		Name:           p.Name,
		UnitPrice:      p.Price,
		OriginalPrice:  p.Price,
		Quantity:       1,
		DiscountType:   DiscountNone,
		IdentifierType: IdentifierNone,
	})
	return out, nil
}

// AddIdentifiedUnit adds a quantity-one line for a single serialized unit.
func AddIdentifiedUnit(t TabState, p ProductSnapshot, identifier string) (TabState, error) {
	if identifier == "" {
		return TabState{}, ErrIdentifierRequired
	}
	lineID := IdentifiedLineID(p.ID, identifier)
	if findLine(t.Cart, lineID) >= 0 {
		return TabState{}, ErrDuplicateIdentifier
	}
	kind := p.IdentifierType
	if !kind.Serialized() {
		kind = IdentifierSerial
	}
	out := t.Clone()
	out.Cart = append(out.Cart, CartLine{
		LineID:          lineID,
		ProductID:       p.ID,
		Name:            p.Name,
		UnitPrice:       p.Price,
		OriginalPrice:   p.Price,
		Quantity:        1,
		DiscountType:    DiscountNone,
		IdentifierType:  kind,
		IdentifierValue: identifier,
	})
	return out, nil
}

// SetQuantity sets a line's quantity. Zero removes the line. Identified lines
// are fixed at one.
func SetQuantity(t TabState, lineID string, qty, available int) (TabState, error) {
	i := findLine(t.Cart, lineID)
	if i < 0 {
		return TabState{}, ErrLineNotFound
	}
	if qty < 0 {
		return TabState{}, ErrInvalidQuantity
	}
	if qty == 0 {
		return RemoveLine(t, lineID)
	}
	if t.Cart[i].IdentifierType.Serialized() && qty != 1 {
		return TabState{}, ErrInvalidQuantity
	}
	if qty > available {
		return TabState{}, ErrStockExceeded
	}
	out := t.Clone()
	out.Cart[i].Quantity = qty
	return out, nil
}

func RemoveLine(t TabState, lineID string) (TabState, error) {
	i := findLine(t.Cart, lineID)
	if i < 0 {
		return TabState{}, ErrLineNotFound
	}
	out := t.Clone()
	out.Cart = append(out.Cart[:i], out.Cart[i+1:]...)
	return out, nil
}

func validateDiscount(typ DiscountType, value float64) error {
	if !typ.Valid() || value < 0 {
		return ErrInvalidDiscount
	}
	if typ == DiscountPercentage && value > 100 {
		return ErrInvalidDiscount
	}
	return nil
}

func SetLineDiscount(t TabState, lineID string, typ DiscountType, value float64) (TabState, error) {
	if err := validateDiscount(typ, value); err != nil {
		return TabState{}, err
	}
	i := findLine(t.Cart, lineID)
	if i < 0 {
		return TabState{}, ErrLineNotFound
	}
	out := t.Clone()
	out.Cart[i] = ApplyLineDiscount(out.Cart[i], typ, value)
	return out, nil
}

func SetOrderDiscount(t TabState, d Discount) (TabState, error) {
	if err := validateDiscount(d.Type, d.Value); err != nil {
		return TabState{}, err
	}
	if d.Type == "" {
		d.Type = DiscountNone
	}
	if d.Type == DiscountNone {
		d.Value = 0
	}
	out := t.Clone()
	out.Discount = d
	return out, nil
}

func SetTaxRate(t TabState, rate float64) (TabState, error) {
	if rate < 0 || rate > 100 {
		return TabState{}, ErrInvalidTaxRate
	}
	out := t.Clone()
	out.TaxRate = rate
	return out, nil
}

func SetCustomer(t TabState, customerID string) TabState {
	out := t.Clone()
	out.CustomerID = customerID
	return out
}

// ResetBusiness empties the cart, customer, discount and tax. UI flags are kept.
func ResetBusiness(t TabState) TabState {
	return TabState{
		TabID:    t.TabID,
		Cart:     []CartLine{},
		Discount: Discount{Type: DiscountNone},
		UI:       t.UI,
	}
}

// CloseModals clears every modal flag and returns focus to the barcode input.
func CloseModals(t TabState) TabState {
	out := t.Clone()
	out.UI = UIFlags{FocusBarcode: true}
	return out
}

// ValidateCart checks a whole cart supplied from outside the reducers. Lines
// are keyed the way AddProduct and AddIdentifiedUnit key them, identified
// lines hold exactly one unit and prices are never negative. available
// returns the stock bound for a product; a nil available skips the stock check.
func ValidateCart(cart []CartLine, available func(productID string) int) error {
	seen := make(map[string]bool, len(cart))
	identifiers := make(map[string]bool)
	wanted := make(map[string]int)
	var products []string
	for _, l := range cart {
		if l.IdentifierValue != "" {
			if identifiers[l.IdentifierValue] {
				return ErrDuplicateIdentifier
			}
			identifiers[l.IdentifierValue] = true
		}
		if l.LineID == "" || l.ProductID == "" || seen[l.LineID] {
			return ErrInvalidLine
		}
		seen[l.LineID] = true
		if l.Quantity < 1 {
			return ErrInvalidQuantity
		}
		if l.UnitPrice < 0 || l.OriginalPrice < 0 {
			return ErrNegativePrice
		}
		if err := validateDiscount(l.DiscountType, l.DiscountValue); err != nil {
			return err
		}
		if p := l.DiscountedUnitPrice; p != nil && (*p < 0 || *p > l.UnitPrice) {
			return ErrNegativePrice
		}
		if l.IdentifierType.Serialized() || l.IdentifierValue != "" {
			if l.IdentifierValue == "" {
				return ErrIdentifierRequired
			}
			if l.Quantity != 1 {
				return ErrInvalidQuantity
			}
			if l.LineID != IdentifiedLineID(l.ProductID, l.IdentifierValue) {
				return ErrInvalidLine
			}
		} else if l.LineID != l.ProductID {
			return ErrInvalidLine
		}
		if _, ok := wanted[l.ProductID]; !ok {
			products = append(products, l.ProductID)
		}
		wanted[l.ProductID] += l.Quantity
	}
	if available == nil {
		return nil
	}
	for _, id := range products {
		if wanted[id] > available(id) {
			return ErrStockExceeded
		}
	}
	return nil
}
