package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// CashbookType is the direction of a cashbook entry
type CashbookType int

const (
	CashbookCashIn  CashbookType = 0
	CashbookCashOut CashbookType = 1
)

var cashbookTypeNames = []string{"Cash In", "Cash Out"}

func (t CashbookType) String() string {
	if t == CashbookCashOut {
		return "Cash Out"
	}
	return "Cash In"
}

func ParseCashbookType(s string) (CashbookType, bool) {
	i := lookup(cashbookTypeNames, s)
	return CashbookType(max(i, 0)), i >= 0
}

func (t CashbookType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *CashbookType) UnmarshalJSON(data []byte) error {
	i, err := decode(data, cashbookTypeNames, 0)
	*t = CashbookType(i)
	return err
}

func (t CashbookType) Value() (driver.Value, error) {
	return int64(t), nil
}

func (t *CashbookType) Scan(value interface{}) error {
	i, _ := scanInt(value)
	*t = CashbookType(i)
	return nil
}
