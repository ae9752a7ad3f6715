package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// PrintPreference is what the cashier wants produced after checkout
type PrintPreference int

const (
	PrintOnly     PrintPreference = 0
	EReceiptOnly  PrintPreference = 1
	PrintAndEmail PrintPreference = 2
)

var printPreferenceNames = []string{"print", "e-receipt", "both"}

func (p PrintPreference) String() string {
	if int(p) < 0 || int(p) >= len(printPreferenceNames) {
		return "print"
	}
	return printPreferenceNames[p]
}

func (p PrintPreference) Prints() bool { return p != EReceiptOnly }

func (p PrintPreference) Sends() bool { return p != PrintOnly }

func ParsePrintPreference(s string) (PrintPreference, bool) {
	i := lookup(printPreferenceNames, s)
	return PrintPreference(max(i, 0)), i >= 0
}

func (p PrintPreference) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *PrintPreference) UnmarshalJSON(data []byte) error {
	i, err := decode(data, printPreferenceNames, 0)
	*p = PrintPreference(i)
	return err
}

func (p PrintPreference) Value() (driver.Value, error) {
	return int64(p), nil
}

func (p *PrintPreference) Scan(value interface{}) error {
	i, _ := scanInt(value)
	*p = PrintPreference(i)
	return nil
}
