package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// PaymentStatus tracks how much of an invoice has been settled
type PaymentStatus int

const (
	PaymentStatusUnpaid  PaymentStatus = 0
	PaymentStatusPartial PaymentStatus = 1
	PaymentStatusPaid    PaymentStatus = 2
)

var paymentStatusNames = []string{"Unpaid", "Partial", "Paid"}

func (s PaymentStatus) String() string {
	if int(s) < 0 || int(s) >= len(paymentStatusNames) {
		return "Unpaid"
	}
	return paymentStatusNames[s]
}

// PaymentStatusFor derives the status from what has been paid against a total (both in cents).
func PaymentStatusFor(paid, total int64) PaymentStatus {
	switch {
	case paid >= total:
		return PaymentStatusPaid
	case paid > 0:
		return PaymentStatusPartial
	default:
		return PaymentStatusUnpaid
	}
}

func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	i := lookup(paymentStatusNames, s)
	return PaymentStatus(max(i, 0)), i >= 0
}

func (s PaymentStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *PaymentStatus) UnmarshalJSON(data []byte) error {
	i, err := decode(data, paymentStatusNames, 0)
	*s = PaymentStatus(i)
	return err
}

func (s PaymentStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *PaymentStatus) Scan(value interface{}) error {
	i, _ := scanInt(value)
	*s = PaymentStatus(i)
	return nil
}
