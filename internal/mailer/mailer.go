// Package mailer forwards contact-form messages over SMTP.
package mailer

import (
	"context"
	"errors"

	"gopkg.in/gomail.v2"
)

// ErrNotConfigured is returned when SMTP credentials are missing.
var ErrNotConfigured = errors.New("mail transport is not configured")

// Sender delivers a contact message from a customer.
type Sender interface {
	SendContact(ctx context.Context, from, message string) error
}

// SMTPMailer sends mail through a single authenticated SMTP account.
type SMTPMailer struct {
	dialer    *gomail.Dialer
	account   string
	recipient string
}

// NewSMTPMailer builds a mailer. account is the authenticated sender and
// recipient is where contact messages are delivered.
func NewSMTPMailer(host string, port int, account, password, recipient string) *SMTPMailer {
	return &SMTPMailer{
		dialer:    gomail.NewDialer(host, port, account, password),
		account:   account,
		recipient: recipient,
	}
}

// SendContact delivers message with the customer's address as Reply-To.
func (m *SMTPMailer) SendContact(ctx context.Context, from, message string) error {
	if m.account == "" || m.recipient == "" {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.dialer.DialAndSend(m.compose(from, message))
}

func (m *SMTPMailer) compose(from, message string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.account)
	msg.SetHeader("Reply-To", from)
	msg.SetHeader("To", m.recipient)
	msg.SetHeader("Subject", Subject(from))
	msg.SetBody("text/plain", message)
	return msg
}

// Subject is the subject line used for a customer's contact message.
func Subject(from string) string {
	return "Vinvest Customer: " + from
}
