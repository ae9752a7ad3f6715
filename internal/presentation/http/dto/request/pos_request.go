package request

// ScanRequest carries raw scanner or keyboard input. Commit is true when
// Enter was pressed.
type ScanRequest struct {
	Code   string `json:"code" binding:"required"`
	Commit bool   `json:"commit"`
}

type SelectIdentifierRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Value     string `json:"value" binding:"required"`
}

type QuantityRequest struct {
	Quantity int `json:"quantity" binding:"min=1"`
}

// DiscountRequest sets a line or order discount
type DiscountRequest struct {
	Type  string  `json:"type" binding:"required,oneof=none percentage amount"`
	Value float64 `json:"value"`
}

type TaxRateRequest struct {
	TaxRate float64 `json:"tax_rate"`
}

type CustomerSelectRequest struct {
	CustomerID string `json:"customer_id"`
}

type HoldRequest struct {
	Label string `json:"label" binding:"max=100"`
}
