package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// ReceiptFormat selects a receipt layout
type ReceiptFormat int

const (
	ReceiptFormatA4             ReceiptFormat = 0
	ReceiptFormatAdvanceA4      ReceiptFormat = 1
	ReceiptFormatThermal        ReceiptFormat = 2
	ReceiptFormatAdvanceThermal ReceiptFormat = 3
)

var receiptFormatNames = []string{"a4", "advance-a4", "thermal", "advance-thermal"}

func (f ReceiptFormat) String() string {
	if int(f) < 0 || int(f) >= len(receiptFormatNames) {
		return "a4"
	}
	return receiptFormatNames[f]
}

// Thermal reports whether the format is ESC/POS rather than HTML.
func (f ReceiptFormat) Thermal() bool {
	return f == ReceiptFormatThermal || f == ReceiptFormatAdvanceThermal
}

// Advanced reports whether the format carries the extended layout.
func (f ReceiptFormat) Advanced() bool {
	return f == ReceiptFormatAdvanceA4 || f == ReceiptFormatAdvanceThermal
}

func ParseReceiptFormat(s string) (ReceiptFormat, bool) {
	i := lookup(receiptFormatNames, s)
	return ReceiptFormat(max(i, 0)), i >= 0
}

func (f ReceiptFormat) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

func (f *ReceiptFormat) UnmarshalJSON(data []byte) error {
	i, err := decode(data, receiptFormatNames, 0)
	*f = ReceiptFormat(i)
	return err
}

func (f ReceiptFormat) Value() (driver.Value, error) {
	return int64(f), nil
}

func (f *ReceiptFormat) Scan(value interface{}) error {
	i, _ := scanInt(value)
	*f = ReceiptFormat(i)
	return nil
}
