package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ParseUUID parses a string into a UUID
func ParseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

// GenerateInvoiceNo formats a dated, sequence-numbered invoice number, e.g. INV-20260115-0042.
// A zero sequence falls back to a random suffix.
func GenerateInvoiceNo(prefix string, at time.Time, seq int64) string {
	if seq <= 0 {
		return fmt.Sprintf("%s-%s-%s", prefix, at.Format("20060102"), strings.ToUpper(uuid.New().String()[:6]))
	}
	return fmt.Sprintf("%s-%s-%04d", prefix, at.Format("20060102"), seq)
}

// GenerateVoucherNo generates a voucher reference for manual cashbook and finance entries.
func GenerateVoucherNo(prefix string) string {
	return prefix + "-" + strings.ToUpper(uuid.New().String()[:8])
}

// GenerateProductCode generates a unique product code
func GenerateProductCode() string {
	return "PROD-" + strings.ToUpper(uuid.New().String()[:8])
}
