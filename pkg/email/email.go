package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"time"
)

// EmailConfig holds SMTP configuration
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromName     string
	FromEmail    string
}

// EmailService handles email sending
type EmailService struct {
	config EmailConfig
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmailService creates a new email service
func NewEmailService(config EmailConfig) *EmailService {
	return &EmailService{config: config, send: smtp.SendMail}
}

// Configured reports whether an SMTP host has been set.
func (s *EmailService) Configured() bool {
	return s.config.SMTPHost != ""
}

// SendInvoiceEmail sends a rendered invoice document as the HTML body of an email.
func (s *EmailService) SendInvoiceEmail(toEmail, businessName, invoiceNo, invoiceHTML string) error {
	subject := fmt.Sprintf("Invoice %s from %s", invoiceNo, businessName)
	return s.sendEmail(toEmail, s.buildHTMLEmail(toEmail, subject, invoiceHTML))
}

// SendOTPEmail sends the one-time code that authorises a destructive admin operation.
func (s *EmailService) SendOTPEmail(toEmail, businessName, otp string, ttl time.Duration) error {
	htmlContent, err := renderTemplate("otp", otpTemplate, struct {
		AppName string
		OTP     string
		Minutes int
	}{
		AppName: businessName,
		OTP:     otp,
		Minutes: int(ttl.Minutes()),
	})
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	subject := "Your database administration code - " + businessName
	return s.sendEmail(toEmail, s.buildHTMLEmail(toEmail, subject, htmlContent))
}

// sendEmail sends an email using SMTP
func (s *EmailService) sendEmail(to string, message []byte) error {
	if !s.Configured() {
		return fmt.Errorf("email is not configured")
	}
	addr := fmt.Sprintf("%s:%d", s.config.SMTPHost, s.config.SMTPPort)

	auth := smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)

	if err := s.send(addr, auth, s.config.FromEmail, []string{to}, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// buildHTMLEmail builds an HTML email message
func (s *EmailService) buildHTMLEmail(to, subject, htmlBody string) []byte {
	headers := fmt.Sprintf(
		"From: %s <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=\"UTF-8\"\r\n"+
			"\r\n",
		s.config.FromName,
		s.config.FromEmail,
		to,
		subject,
	)

	return []byte(headers + htmlBody)
}

func renderTemplate(name, text string, data any) (string, error) {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

const otpTemplate = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Database administration code</title>
</head>
<body style="margin: 0; padding: 0; font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; background-color: #f4f7fa;">
    <table role="presentation" style="max-width: 600px; margin: 40px auto; background-color: #ffffff; border-radius: 12px;">
        <tr>
            <td style="background: #1a1a2e; padding: 30px; text-align: center;">
                <h1 style="color: #ffffff; margin: 0; font-size: 24px;">{{.AppName}}</h1>
            </td>
        </tr>
        <tr>
            <td style="padding: 30px;">
                <p style="color: #4a5568; font-size: 16px;">A destructive database operation was requested. Use this code to confirm it:</p>
                <p style="font-size: 32px; letter-spacing: 8px; font-weight: 700; text-align: center; color: #1a1a2e;">{{.OTP}}</p>
                <p style="color: #718096; font-size: 14px;">The code expires in {{.Minutes}} minutes. If you did not request it, ignore this email and review who has admin access.</p>
            </td>
        </tr>
    </table>
</body>
</html>
`
