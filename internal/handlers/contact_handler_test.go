package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
)

type mockSender struct {
	from, message string
	err           error
}

func (m *mockSender) SendContact(_ context.Context, from, message string) error {
	m.from, m.message = from, message
	return m.err
}

func setupContactRouter(handler *ContactHandler) *gin.Engine {
	r := gin.New()
	r.POST("/send-email", handler.SendEmail)
	return r
}

func TestContactHandler_SendEmail(t *testing.T) {
	t.Run("sends_message", func(t *testing.T) {
		sender := &mockSender{}
		r := setupContactRouter(NewContactHandler(sender))

		rec := doRequest(r, "POST", "/send-email", `{"from":"c@test.com","message":"Hello team"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if parseJSON(t, rec)["message"] != "Email Sent successfully" {
			t.Errorf("unexpected body: %s", rec.Body.String())
		}
		if sender.from != "c@test.com" || sender.message != "Hello team" {
			t.Errorf("unexpected mail: %+v", sender)
		}
	})

	t.Run("returns_500_on_smtp_failure", func(t *testing.T) {
		r := setupContactRouter(NewContactHandler(&mockSender{err: errors.New("dial tcp: refused")}))

		rec := doRequest(r, "POST", "/send-email", `{"from":"c@test.com","message":"Hello"}`)

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		assertErrorCode(t, result, "EMAIL_FAILED")
		if result["error"] != "Email failed to send." {
			t.Errorf("unexpected message: %v", result["error"])
		}
	})

	t.Run("returns_400_invalid_sender", func(t *testing.T) {
		r := setupContactRouter(NewContactHandler(&mockSender{}))

		rec := doRequest(r, "POST", "/send-email", `{"from":"nobody","message":"Hello"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}
