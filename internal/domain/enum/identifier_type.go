package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// IdentifierType is how individual units of a product are tracked
type IdentifierType int

const (
	IdentifierTypeNone   IdentifierType = 0
	IdentifierTypeIMEI   IdentifierType = 1
	IdentifierTypeSerial IdentifierType = 2
)

var identifierTypeNames = []string{"none", "imei", "serial"}

func (t IdentifierType) String() string {
	if int(t) < 0 || int(t) >= len(identifierTypeNames) {
		return "none"
	}
	return identifierTypeNames[t]
}

// Serialized reports whether each unit carries its own identifier.
func (t IdentifierType) Serialized() bool {
	return t == IdentifierTypeIMEI || t == IdentifierTypeSerial
}

// ParseIdentifierType accepts "imei", "serial" or "none" in any case.
func ParseIdentifierType(s string) (IdentifierType, bool) {
	i := lookup(identifierTypeNames, s)
	return IdentifierType(max(i, 0)), i >= 0
}

func (t IdentifierType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *IdentifierType) UnmarshalJSON(data []byte) error {
	i, err := decode(data, identifierTypeNames, 0)
	*t = IdentifierType(i)
	return err
}

func (t IdentifierType) Value() (driver.Value, error) {
	return int64(t), nil
}

func (t *IdentifierType) Scan(value interface{}) error {
	i, _ := scanInt(value)
	*t = IdentifierType(i)
	return nil
}
