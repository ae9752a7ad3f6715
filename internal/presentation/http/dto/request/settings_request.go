package request

// BusinessSettingsRequest updates the business record. Nil fields are kept.
type BusinessSettingsRequest struct {
	BusinessName      *string  `json:"business_name"`
	Address           *string  `json:"address"`
	Phone             *string  `json:"phone"`
	Email             *string  `json:"email" binding:"omitempty,email"`
	TaxPIN            *string  `json:"tax_pin"`
	Currency          *string  `json:"currency" binding:"omitempty,max=10"`
	TaxRate           *float64 `json:"tax_rate"`
	OpeningCash       *float64 `json:"opening_cash"`
	InvoicePrefix     *string  `json:"invoice_prefix" binding:"omitempty,max=20"`
	ReceiptFooter     *string  `json:"receipt_footer"`
	DefaultFormat     *string  `json:"default_format" binding:"omitempty,oneof=a4 advance-a4 thermal advance-thermal"`
	DefaultPreference *string  `json:"default_preference" binding:"omitempty,oneof=print e-receipt both"`
}

// AdditionalInfoRequest replaces the notes, terms and summary text
type AdditionalInfoRequest struct {
	Notes   string `json:"notes"`
	Terms   string `json:"terms"`
	Summary string `json:"summary"`
}

// ClearDatabaseRequest confirms a destructive clear with the emailed code
type ClearDatabaseRequest struct {
	OTP          string `json:"otp" binding:"required,len=6,numeric"`
	Confirmation string `json:"confirmation" binding:"required"`
}
