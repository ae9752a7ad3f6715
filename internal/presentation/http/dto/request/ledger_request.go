package request

// CashbookEntryRequest adds a manual cashbook entry. Date is YYYY-MM-DD and
// defaults to today.
type CashbookEntryRequest struct {
	Date        string  `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Particulars string  `json:"particulars"`
	Voucher     string  `json:"voucher" binding:"max=100"`
	Type        string  `json:"type" binding:"required"`
	Amount      float64 `json:"amount"`
	Mode        string  `json:"mode" binding:"max=50"`
	Category    string  `json:"category" binding:"max=100"`
	IsReturn    bool    `json:"is_return"`
}

// FinanceRequest records income or an expense
type FinanceRequest struct {
	Date        string  `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Category    string  `json:"category"`
	Description string  `json:"description" binding:"max=255"`
	Amount      float64 `json:"amount"`
	Mode        string  `json:"mode" binding:"max=50"`
	Voucher     string  `json:"voucher" binding:"max=100"`
}
