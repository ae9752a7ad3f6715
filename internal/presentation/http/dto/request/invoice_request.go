package request

// EmailReceiptRequest sends an invoice receipt by email
type EmailReceiptRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// SMSReceiptRequest sends an invoice summary by SMS
type SMSReceiptRequest struct {
	Phone string `json:"phone" binding:"required,min=7,max=20"`
}

// PayNowRequest records a payment against an unpaid or partly paid invoice
type PayNowRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
	Method string  `json:"method" binding:"required,max=50"`
}

// InvoiceFilterRequest represents invoice listing parameters
type InvoiceFilterRequest struct {
	Search     string `form:"search"`
	Status     string `form:"status"`
	CustomerID string `form:"customer_id"`
	SortBy     string `form:"sort_by"`
	SortOrder  string `form:"sort_order"`
	Page       int    `form:"page"`
	PerPage    int    `form:"per_page"`
	Limit      int    `form:"limit"`
}
