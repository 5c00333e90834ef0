// Package email sends account emails. Production uses SMTP; without
// SMTP configuration the sender logs the verification link instead so
// development signups remain verifiable.
package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/noamseg/boxbee/internal/logging"
)

// Sender delivers account emails.
type Sender interface {
	SendVerification(ctx context.Context, to, token string) error
}

func verificationURL(baseURL, token string) string {
	return fmt.Sprintf("%s/verify-email?token=%s", strings.TrimRight(baseURL, "/"), token)
}

// ConsoleSender logs the verification link instead of sending mail.
type ConsoleSender struct {
	BaseURL string
}

func (c *ConsoleSender) SendVerification(_ context.Context, to, token string) error {
	logging.Boot("Email verification link for %s: %s", to, verificationURL(c.BaseURL, token))
	return nil
}

// SMTPSender sends mail through a plain SMTP relay.
type SMTPSender struct {
	From    string
	Host    string
	Port    int
	User    string
	Pass    string
	BaseURL string
}

func (s *SMTPSender) SendVerification(_ context.Context, to, token string) error {
	url := verificationURL(s.BaseURL, token)

	body := fmt.Sprintf(`Welcome to BoxBee! 🐝

Thanks for signing up! Please verify your email address to get started:

%s

This link will expire in 24 hours.
If you didn't create a BoxBee account, you can safely ignore this email.
`, url)

	msg := strings.Join([]string{
		"From: " + s.From,
		"To: " + to,
		"Subject: 🐝 Verify your BoxBee email",
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"utf-8\"",
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)
	var auth smtp.Auth
	if s.User != "" {
		auth = smtp.PlainAuth("", s.User, s.Pass, s.Host)
	}
	if err := smtp.SendMail(addr, auth, s.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}
	return nil
}
