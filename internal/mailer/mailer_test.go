package mailer

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestSMTPMailer_NotConfigured(t *testing.T) {
	m := NewSMTPMailer("smtp.example.test", 587, "", "", "")
	err := m.SendContact(context.Background(), "jane@example.com", "hello")
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestSMTPMailer_Compose(t *testing.T) {
	m := NewSMTPMailer("smtp.example.test", 587, "desk@vinvest.test", "secret", "owner@vinvest.test")
	msg := m.compose("jane@example.com", "Please call me back")

	if got := msg.GetHeader("Subject"); len(got) != 1 || got[0] != "Vinvest Customer: jane@example.com" {
		t.Errorf("unexpected subject %v", got)
	}
	if got := msg.GetHeader("Reply-To"); len(got) != 1 || got[0] != "jane@example.com" {
		t.Errorf("unexpected reply-to %v", got)
	}
	if got := msg.GetHeader("To"); len(got) != 1 || got[0] != "owner@vinvest.test" {
		t.Errorf("unexpected recipient %v", got)
	}

	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "Please call me back") {
		t.Error("expected body in rendered message")
	}
}
