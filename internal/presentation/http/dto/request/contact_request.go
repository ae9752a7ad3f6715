package request

// ContactRequest creates or updates a customer. On update, nil fields are kept.
type ContactRequest struct {
	Name    *string `json:"name" binding:"omitempty,max=255"`
	Email   *string `json:"email" binding:"omitempty,max=255"`
	Phone   *string `json:"phone" binding:"omitempty,max=30"`
	TaxPIN  *string `json:"tax_pin" binding:"omitempty,max=50"`
	Address *string `json:"address"`
}
