package email

import (
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(captured *[]byte) *EmailService {
	s := NewEmailService(EmailConfig{
		SMTPHost:  "smtp.test",
		SMTPPort:  587,
		FromName:  "Corner Shop",
		FromEmail: "till@shop.test",
	})
	s.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		*captured = msg
		return nil
	}
	return s
}

func TestSendOTPEmail(t *testing.T) {
	var msg []byte
	s := newTestService(&msg)

	require.NoError(t, s.SendOTPEmail("owner@shop.test", "Corner Shop", "123456", 10*time.Minute))
	body := string(msg)
	assert.Contains(t, body, "To: owner@shop.test")
	assert.Contains(t, body, "123456")
	assert.Contains(t, body, "expires in 10 minutes")
}

func TestSendInvoiceEmailSubject(t *testing.T) {
	var msg []byte
	s := newTestService(&msg)

	require.NoError(t, s.SendInvoiceEmail("buyer@x.test", "Corner Shop", "INV-1", "<p>hi</p>"))
	assert.True(t, strings.Contains(string(msg), "Subject: Invoice INV-1 from Corner Shop"))
}

func TestUnconfiguredEmailFails(t *testing.T) {
	s := NewEmailService(EmailConfig{})
	assert.Error(t, s.SendInvoiceEmail("a@b.test", "x", "INV-1", ""))
}
