package entity

// ReceiptHeader holds the business details printed at the top of a receipt.
type ReceiptHeader struct {
	StoreName string `json:"store_name"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
	TaxID     string `json:"tax_id,omitempty"`
	LogoURL   string `json:"logo_url,omitempty"`
}

// ReceiptItem represents a single line item on a receipt.
type ReceiptItem struct {
	Name          string  `json:"name"`
	Quantity      int     `json:"quantity"`
	UnitPrice     float64 `json:"unit_price"`
	OriginalPrice float64 `json:"original_price"`
	Discount      string  `json:"discount,omitempty"`
	Identifier    string  `json:"identifier,omitempty"`
	Total         float64 `json:"total"`
}

// Receipt is a printable view of an invoice. It is not persisted; the receipt
// renderers compose it from the invoice and business settings at print time.
type Receipt struct {
	Header         ReceiptHeader `json:"header"`
	InvoiceNo      string        `json:"invoice_no"`
	Date           string        `json:"date"`
	Cashier        string        `json:"cashier,omitempty"`
	Customer       string        `json:"customer,omitempty"`
	CustomerPhone  string        `json:"customer_phone,omitempty"`
	PaymentType    string        `json:"payment_type,omitempty"`
	PaymentStatus  string        `json:"payment_status"`
	Currency       string        `json:"currency"`
	Items          []ReceiptItem `json:"items"`
	SubTotal       float64       `json:"sub_total"`
	DiscountAmount float64       `json:"discount_amount"`
	TaxRate        float64       `json:"tax_rate"`
	TaxAmount      float64       `json:"tax_amount"`
	Total          float64       `json:"total"`
	Paid           float64       `json:"paid"`
	Tendered       float64       `json:"tendered"`
	Change         float64       `json:"change"`
	Due            float64       `json:"due"`
	Notes          string        `json:"notes,omitempty"`
	Terms          string        `json:"terms,omitempty"`
	Footer         string        `json:"footer,omitempty"`
}
