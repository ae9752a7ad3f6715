package request

// CreateProductRequest represents a product creation request
type CreateProductRequest struct {
	Name           string  `json:"name" binding:"required,min=1,max=255"`
	Barcode        *string `json:"barcode" binding:"omitempty,max=100"`
	Code           string  `json:"code" binding:"omitempty,max=100"`
	Category       string  `json:"category" binding:"max=100"`
	Quantity       int     `json:"quantity" binding:"min=0"`
	QuantityAlert  int     `json:"quantity_alert" binding:"min=0"`
	BuyingPrice    float64 `json:"buying_price" binding:"min=0"`
	SellingPrice   float64 `json:"selling_price" binding:"min=0"`
	IdentifierType string  `json:"identifier_type" binding:"omitempty,oneof=none imei serial"`
	Notes          *string `json:"notes"`
}

// UpdateProductRequest represents a product update request
type UpdateProductRequest struct {
	Name           *string  `json:"name" binding:"omitempty,min=1,max=255"`
	Barcode        *string  `json:"barcode" binding:"omitempty,max=100"`
	Code           *string  `json:"code" binding:"omitempty,min=1,max=100"`
	Category       *string  `json:"category" binding:"omitempty,max=100"`
	Quantity       *int     `json:"quantity" binding:"omitempty,min=0"`
	QuantityAlert  *int     `json:"quantity_alert" binding:"omitempty,min=0"`
	BuyingPrice    *float64 `json:"buying_price" binding:"omitempty,min=0"`
	SellingPrice   *float64 `json:"selling_price" binding:"omitempty,min=0"`
	IdentifierType *string  `json:"identifier_type" binding:"omitempty,oneof=none imei serial"`
	Notes          *string  `json:"notes"`
}

// ProductFilterRequest represents product filter parameters
type ProductFilterRequest struct {
	Search    string `form:"search"`
	Category  string `form:"category"`
	LowStock  bool   `form:"low_stock"`
	SortBy    string `form:"sort_by"`
	SortOrder string `form:"sort_order"`
	Page      int    `form:"page"`
	PerPage   int    `form:"per_page"`
	Limit     int    `form:"limit"` // For cursor-based pagination
}

// StockChangeRequest is the body of the inventory deduct and adjust calls.
// Deduct needs a positive quantity; adjust takes a signed delta.
type StockChangeRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int    `json:"quantity"`
}

// BulkIdentifiersRequest registers new serialized units
type BulkIdentifiersRequest struct {
	Values []string `json:"values" binding:"required,min=1,max=1000"`
}

// MarkSoldRequest flags one identifier as sold
type MarkSoldRequest struct {
	Value     string `json:"value" binding:"required"`
	InvoiceID string `json:"invoice_id" binding:"omitempty,uuid"`
}
