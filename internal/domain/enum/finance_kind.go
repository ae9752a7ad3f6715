package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// FinanceKind separates income records from expenses
type FinanceKind int

const (
	FinanceIncome  FinanceKind = 0
	FinanceExpense FinanceKind = 1
)

var financeKindNames = []string{"income", "expense"}

func (k FinanceKind) String() string {
	if k == FinanceExpense {
		return "expense"
	}
	return "income"
}

// CashbookType maps income to Cash In and expense to Cash Out.
func (k FinanceKind) CashbookType() CashbookType {
	if k == FinanceExpense {
		return CashbookCashOut
	}
	return CashbookCashIn
}

func (k FinanceKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *FinanceKind) UnmarshalJSON(data []byte) error {
	i, err := decode(data, financeKindNames, 0)
	*k = FinanceKind(i)
	return err
}

func (k FinanceKind) Value() (driver.Value, error) {
	return int64(k), nil
}

func (k *FinanceKind) Scan(value interface{}) error {
	i, _ := scanInt(value)
	*k = FinanceKind(i)
	return nil
}
