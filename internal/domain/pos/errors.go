package pos

import "errors"

// Validation errors raised by reducers and the pricing helpers. They never
// involve I/O and leave the input state untouched.
var (
	ErrStockExceeded       = errors.New("quantity exceeds available stock")
	ErrInvalidDiscount     = errors.New("invalid discount")
	ErrInvalidQuantity     = errors.New("invalid quantity")
	ErrInvalidTaxRate      = errors.New("tax rate must be between 0 and 100")
	ErrDuplicateIdentifier = errors.New("identifier is already in the cart")
	ErrIdentifierRequired  = errors.New("product requires an identifier")
	ErrLineNotFound        = errors.New("cart line not found")
	ErrInvalidLine         = errors.New("invalid cart line")
	ErrNegativePrice       = errors.New("price must not be negative")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrInsufficientPayment = errors.New("insufficient payment")
)
