package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"vinvest/internal/config"
)

func useTestConfig(t *testing.T) {
	t.Helper()
	config.Set(&config.Config{JWTSecret: "test-secret", JWTExpirationDur: time.Hour})
}

func setupSessionRouter(required bool) *gin.Engine {
	r := gin.New()
	r.Use(SessionMiddleware(required))
	r.POST("/stocks", func(c *gin.Context) {
		email, _ := SessionEmail(c)
		c.JSON(http.StatusOK, gin.H{"email": email})
	})
	return r
}

func doSessionRequest(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/stocks", http.NoBody)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestSessionToken(t *testing.T) {
	useTestConfig(t)

	t.Run("round_trip", func(t *testing.T) {
		token, err := GenerateSessionToken("a@test.com")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		claims, err := ParseSessionToken(token)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if claims.Email != "a@test.com" {
			t.Errorf("expected email a@test.com, got %q", claims.Email)
		}
	})

	t.Run("wrong_secret_rejected", func(t *testing.T) {
		token, _ := GenerateSessionToken("a@test.com")
		config.Set(&config.Config{JWTSecret: "other-secret", JWTExpirationDur: time.Hour})
		defer useTestConfig(t)

		if _, err := ParseSessionToken(token); err == nil {
			t.Error("expected error for token signed with another secret")
		}
	})

	t.Run("expired_rejected", func(t *testing.T) {
		claims := &SessionClaims{
			Email: "a@test.com",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
				Issuer:    issuer,
			},
		}
		token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))

		if _, err := ParseSessionToken(token); err == nil {
			t.Error("expected error for expired token")
		}
	})
}

func TestSessionMiddleware(t *testing.T) {
	useTestConfig(t)
	valid, _ := GenerateSessionToken("a@test.com")

	tests := []struct {
		name       string
		required   bool
		header     string
		wantStatus int
		wantEmail  string
	}{
		{"optional_without_token", false, "", http.StatusOK, ""},
		{"optional_with_token", false, "Bearer " + valid, http.StatusOK, "a@test.com"},
		{"required_without_token", true, "", http.StatusUnauthorized, ""},
		{"required_with_token", true, "Bearer " + valid, http.StatusOK, "a@test.com"},
		{"malformed_header", false, "Token " + valid, http.StatusUnauthorized, ""},
		{"garbage_token", false, "Bearer not-a-jwt", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doSessionRequest(setupSessionRouter(tt.required), tt.header)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			body := parseBody(t, rec)
			if tt.wantStatus != http.StatusOK {
				if code, _ := body["code"].(string); code != "UNAUTHORIZED" {
					t.Errorf("error code = %q, want UNAUTHORIZED", code)
				}
				return
			}
			if email, _ := body["email"].(string); email != tt.wantEmail {
				t.Errorf("email = %q, want %q", email, tt.wantEmail)
			}
		})
	}
}
