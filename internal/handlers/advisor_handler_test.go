package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "vinvest/internal/errors"
	"vinvest/internal/services"
)

type mockChatService struct {
	replyFn func(ctx context.Context, text string) string
}

var _ services.ChatServicer = (*mockChatService)(nil)

func (m *mockChatService) Reply(ctx context.Context, text string) string {
	if m.replyFn != nil {
		return m.replyFn(ctx, text)
	}
	return ""
}

type mockAdvisoryService struct {
	getAdviceFn    func(ctx context.Context, email string) (*services.Advice, error)
	getRiskScoreFn func(ctx context.Context, email string) (*services.RiskScore, error)
}

var _ services.AdvisoryServicer = (*mockAdvisoryService)(nil)

func (m *mockAdvisoryService) GetAdvice(ctx context.Context, email string) (*services.Advice, error) {
	if m.getAdviceFn != nil {
		return m.getAdviceFn(ctx, email)
	}
	return &services.Advice{}, nil
}

func (m *mockAdvisoryService) GetRiskScore(ctx context.Context, email string) (*services.RiskScore, error) {
	if m.getRiskScoreFn != nil {
		return m.getRiskScoreFn(ctx, email)
	}
	return &services.RiskScore{}, nil
}

func setupAdvisorRouter(handler *AdvisorHandler) *gin.Engine {
	r := gin.New()
	r.POST("/chat", handler.Chat)
	r.POST("/ai_advise", handler.Advise)
	r.POST("/calculate_risk", handler.CalculateRisk)
	return r
}

func TestAdvisorHandler_Chat(t *testing.T) {
	t.Run("returns_reply", func(t *testing.T) {
		chat := &mockChatService{replyFn: func(_ context.Context, text string) string { return "echo: " + text }}
		r := setupAdvisorRouter(NewAdvisorHandler(chat, &mockAdvisoryService{}))

		rec := doRequest(r, "POST", "/chat", `{"text":"hello"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if parseJSON(t, rec)["response"] != "echo: hello" {
			t.Errorf("unexpected body: %s", rec.Body.String())
		}
	})

	t.Run("returns_400_without_text", func(t *testing.T) {
		r := setupAdvisorRouter(NewAdvisorHandler(&mockChatService{}, &mockAdvisoryService{}))

		rec := doRequest(r, "POST", "/chat", `{}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})
}

func TestAdvisorHandler_Advise(t *testing.T) {
	tests := []struct {
		name        string
		advice      services.Advice
		wantMessage string
	}{
		{"generated", services.Advice{Advice: "buy", Generated: true}, adviceGeneratedMessage},
		{"cached", services.Advice{Advice: "hold"}, adviceCachedMessage},
		{"failed", services.Advice{Advice: "quota exceeded", Failed: true}, adviceFailedMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			advisory := &mockAdvisoryService{
				getAdviceFn: func(_ context.Context, _ string) (*services.Advice, error) {
					a := tt.advice
					return &a, nil
				},
			}
			r := setupAdvisorRouter(NewAdvisorHandler(&mockChatService{}, advisory))

			rec := doRequest(r, "POST", "/ai_advise", `{"user":"a@test.com"}`)

			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			result := parseJSON(t, rec)
			if result["response"] != tt.advice.Advice {
				t.Errorf("response = %v, want %q", result["response"], tt.advice.Advice)
			}
			if result["generated"] != tt.advice.Generated {
				t.Errorf("generated = %v, want %v", result["generated"], tt.advice.Generated)
			}
			if result["message"] != tt.wantMessage {
				t.Errorf("message = %v, want %q", result["message"], tt.wantMessage)
			}
		})
	}

	t.Run("returns_502_without_market_data", func(t *testing.T) {
		advisory := &mockAdvisoryService{
			getAdviceFn: func(_ context.Context, _ string) (*services.Advice, error) {
				return nil, apperrors.ErrQuoteUnavailable
			},
		}
		r := setupAdvisorRouter(NewAdvisorHandler(&mockChatService{}, advisory))

		rec := doRequest(r, "POST", "/ai_advise", `{"user":"a@test.com"}`)

		if rec.Code != http.StatusBadGateway {
			t.Fatalf("expected 502, got %d", rec.Code)
		}
	})
}

func TestAdvisorHandler_CalculateRisk(t *testing.T) {
	t.Run("returns_score", func(t *testing.T) {
		score := 53
		advisory := &mockAdvisoryService{
			getRiskScoreFn: func(_ context.Context, _ string) (*services.RiskScore, error) {
				return &services.RiskScore{Response: "53", Score: &score}, nil
			},
		}
		r := setupAdvisorRouter(NewAdvisorHandler(&mockChatService{}, advisory))

		rec := doRequest(r, "POST", "/calculate_risk", `{"user":"a@test.com"}`)

		if rec.Body.String() != `{"response":"53","score":53}` {
			t.Errorf("unexpected body: %s", rec.Body.String())
		}
	})

	t.Run("null_score_for_unparseable_text", func(t *testing.T) {
		advisory := &mockAdvisoryService{
			getRiskScoreFn: func(_ context.Context, _ string) (*services.RiskScore, error) {
				return &services.RiskScore{Response: "roughly half"}, nil
			},
		}
		r := setupAdvisorRouter(NewAdvisorHandler(&mockChatService{}, advisory))

		rec := doRequest(r, "POST", "/calculate_risk", `{"user":"a@test.com"}`)

		if rec.Body.String() != `{"response":"roughly half","score":null}` {
			t.Errorf("unexpected body: %s", rec.Body.String())
		}
	})
}
