package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "vinvest/internal/errors"
	"vinvest/internal/models"
	"vinvest/internal/provider"
	"vinvest/internal/services"
)

// --- mock holding services ---

type mockHoldingService struct {
	addSharesFn     func(email, symbol string, delta decimal.Decimal, meta models.HoldingMeta) (*services.AddResult, error)
	setSharesFn     func(email, symbol string, shares decimal.Decimal) (*models.Holding, error)
	setBuyPriceFn   func(email, symbol string, price decimal.Decimal) (*models.Holding, error)
	deleteHoldingFn func(email, symbol string) error
}

var _ services.HoldingServicer = (*mockHoldingService)(nil)

func (m *mockHoldingService) ListHoldings(_ string) ([]models.Holding, error) {
	return nil, nil
}

func (m *mockHoldingService) AddShares(email, symbol string, delta decimal.Decimal, meta models.HoldingMeta) (*services.AddResult, error) {
	if m.addSharesFn != nil {
		return m.addSharesFn(email, symbol, delta, meta)
	}
	return &services.AddResult{Holding: &models.Holding{UserEmail: email, Symbol: symbol}, Created: true}, nil
}

func (m *mockHoldingService) SetShares(email, symbol string, shares decimal.Decimal) (*models.Holding, error) {
	if m.setSharesFn != nil {
		return m.setSharesFn(email, symbol, shares)
	}
	return &models.Holding{UserEmail: email, Symbol: symbol, Shares: shares}, nil
}

func (m *mockHoldingService) SetBuyPrice(email, symbol string, price decimal.Decimal) (*models.Holding, error) {
	if m.setBuyPriceFn != nil {
		return m.setBuyPriceFn(email, symbol, price)
	}
	return &models.Holding{UserEmail: email, Symbol: symbol, BuyPrice: price}, nil
}

func (m *mockHoldingService) DeleteHolding(email, symbol string) error {
	if m.deleteHoldingFn != nil {
		return m.deleteHoldingFn(email, symbol)
	}
	return nil
}

func (m *mockHoldingService) ListUsersWithHoldings() ([]string, error) {
	return nil, nil
}

type mockValuationService struct {
	valuateFn func(ctx context.Context, email string, interval provider.Interval) (*services.Valuation, error)
}

var _ services.ValuationServicer = (*mockValuationService)(nil)

func (m *mockValuationService) Valuate(ctx context.Context, email string, interval provider.Interval) (*services.Valuation, error) {
	if m.valuateFn != nil {
		return m.valuateFn(ctx, email, interval)
	}
	return &services.Valuation{}, nil
}

func (m *mockValuationService) PortfolioTotal(_ context.Context, _ string) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

// --- router setup ---

func setupHoldingRouter(handler *HoldingHandler) *gin.Engine {
	r := gin.New()
	r.POST("/add_stock", handler.AddStock)
	r.POST("/stocks", handler.GetStocks)
	r.POST("/update-shares", handler.UpdateShares)
	r.POST("/update-buyprice", handler.UpdateBuyPrice)
	r.POST("/delete-stock", handler.DeleteStock)
	return r
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// --- tests ---

func TestHoldingHandler_AddStock(t *testing.T) {
	t.Run("adds_new_symbol", func(t *testing.T) {
		var gotMeta models.HoldingMeta
		var gotShares decimal.Decimal
		svc := &mockHoldingService{
			addSharesFn: func(email, symbol string, delta decimal.Decimal, meta models.HoldingMeta) (*services.AddResult, error) {
				gotMeta, gotShares = meta, delta
				return &services.AddResult{Holding: &models.Holding{UserEmail: email, Symbol: symbol}, Created: true}, nil
			},
		}
		r := setupHoldingRouter(NewHoldingHandler(svc, &mockValuationService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/add_stock",
			`{"user":"a@test.com","symbol":"AAPL","name":"Apple","sector":"Technology","shares":2.5,"buyPrice":150}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if parseJSON(t, rec)["message"] != "Added stock successfully" {
			t.Errorf("unexpected body: %s", rec.Body.String())
		}
		if gotShares.String() != "2.5" || gotMeta.BuyPrice.String() != "150" || gotMeta.Category != "Technology" {
			t.Errorf("unexpected arguments: shares=%s meta=%+v", gotShares, gotMeta)
		}
	})

	t.Run("increments_existing_symbol", func(t *testing.T) {
		svc := &mockHoldingService{
			addSharesFn: func(email, symbol string, _ decimal.Decimal, _ models.HoldingMeta) (*services.AddResult, error) {
				return &services.AddResult{Holding: &models.Holding{UserEmail: email, Symbol: symbol}}, nil
			},
		}
		r := setupHoldingRouter(NewHoldingHandler(svc, &mockValuationService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/add_stock", `{"user":"a@test.com","symbol":"AAPL","shares":1}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if parseJSON(t, rec)["message"] != "Shares updated successfully" {
			t.Errorf("unexpected body: %s", rec.Body.String())
		}
	})

	t.Run("returns_403_over_quota", func(t *testing.T) {
		svc := &mockHoldingService{
			addSharesFn: func(_, _ string, _ decimal.Decimal, _ models.HoldingMeta) (*services.AddResult, error) {
				return nil, apperrors.ErrSubscriptionRequired
			},
		}
		r := setupHoldingRouter(NewHoldingHandler(svc, &mockValuationService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/add_stock", `{"user":"a@test.com","symbol":"NEW","shares":1,"buyPrice":10}`)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		assertErrorCode(t, result, "SUBSCRIPTION_REQUIRED")
		if result["error"] != "You have to subscribe in order to add more stocks" {
			t.Errorf("unexpected message: %v", result["error"])
		}
	})

	t.Run("rejects_invalid_payloads", func(t *testing.T) {
		tests := []struct {
			name string
			body string
		}{
			{"zero_shares", `{"user":"a@test.com","symbol":"AAPL","shares":0,"buyPrice":10}`},
			{"negative_price", `{"user":"a@test.com","symbol":"AAPL","shares":1,"buyPrice":-5}`},
			{"bad_symbol", `{"user":"a@test.com","symbol":"AA PL","shares":1,"buyPrice":10}`},
			{"missing_user", `{"symbol":"AAPL","shares":1,"buyPrice":10}`},
			{"non_numeric_shares", `{"user":"a@test.com","symbol":"AAPL","shares":"many","buyPrice":10}`},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				r := setupHoldingRouter(NewHoldingHandler(&mockHoldingService{}, &mockValuationService{}, &mockAuditService{}))

				rec := doRequest(r, "POST", "/add_stock", tt.body)

				if rec.Code != http.StatusBadRequest {
					t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
				}
				assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
			})
		}
	})
}

func TestHoldingHandler_GetStocks(t *testing.T) {
	t.Run("renders_valuation", func(t *testing.T) {
		rsi := 55.5
		change := 1.25
		var gotInterval provider.Interval
		valuation := &mockValuationService{
			valuateFn: func(_ context.Context, _ string, interval provider.Interval) (*services.Valuation, error) {
				gotInterval = interval
				return &services.Valuation{
					Holdings: []services.EnrichedHolding{
						{
							Symbol: "AAPL", Name: "Apple Inc.", Type: "EQUITY", Category: "Technology",
							Shares: decimal.RequireFromString("10"), BuyPrice: decimal.RequireFromString("100"),
							CurrentPrice: decPtr("150"), Currency: "USD", PriceChange: &change,
							Sparkline: []float64{148, 150}, RSI: &rsi,
							TotalValue: decPtr("1500"), ProfitLoss: decPtr("500"),
						},
						{
							Symbol: "GONE", Shares: decimal.RequireFromString("1"), BuyPrice: decimal.RequireFromString("5"),
						},
					},
					TotalValue:      decimal.RequireFromString("1500"),
					TotalProfitLoss: decimal.RequireFromString("500"),
				}, nil
			},
		}
		r := setupHoldingRouter(NewHoldingHandler(&mockHoldingService{}, valuation, &mockAuditService{}))

		rec := doRequest(r, "POST", "/stocks", `{"user":"a@test.com"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotInterval != provider.IntervalDaily {
			t.Errorf("expected daily sparkline, got %s", gotInterval)
		}

		result := parseJSON(t, rec)
		if result["totalPortfolioValue"] != "1500.00" || result["totalProfitLoss"] != "500.00" {
			t.Errorf("unexpected totals: %v / %v", result["totalPortfolioValue"], result["totalProfitLoss"])
		}

		items := result["results"].([]interface{})
		if len(items) != 2 {
			t.Fatalf("expected 2 results, got %d", len(items))
		}
		first := items[0].(map[string]interface{})
		if first["totalValue"] != "1500.00" || first["currentPrice"] != 150.0 || first["sector"] != "Technology" {
			t.Errorf("unexpected first item: %v", first)
		}
		second := items[1].(map[string]interface{})
		if second["currentPrice"] != nil || second["totalValue"] != nil {
			t.Errorf("expected null price fields for failed quote, got %v", second)
		}
		if spark, ok := second["sparkline"].([]interface{}); !ok || len(spark) != 0 {
			t.Errorf("expected empty sparkline, got %v", second["sparkline"])
		}
	})

	t.Run("returns_502_when_market_data_unavailable", func(t *testing.T) {
		valuation := &mockValuationService{
			valuateFn: func(_ context.Context, _ string, _ provider.Interval) (*services.Valuation, error) {
				return nil, apperrors.ErrQuoteUnavailable
			},
		}
		r := setupHoldingRouter(NewHoldingHandler(&mockHoldingService{}, valuation, &mockAuditService{}))

		rec := doRequest(r, "POST", "/stocks", `{"user":"a@test.com"}`)

		if rec.Code != http.StatusBadGateway {
			t.Fatalf("expected 502, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "QUOTE_UNAVAILABLE")
	})
}

func TestHoldingHandler_Mutations(t *testing.T) {
	t.Run("update_shares", func(t *testing.T) {
		r := setupHoldingRouter(NewHoldingHandler(&mockHoldingService{}, &mockValuationService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/update-shares", `{"user":"a@test.com","symbol":"AAPL","shares":3}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if parseJSON(t, rec)["message"] != "Updated AAPL's shares successfully!" {
			t.Errorf("unexpected body: %s", rec.Body.String())
		}
	})

	t.Run("update_buy_price", func(t *testing.T) {
		r := setupHoldingRouter(NewHoldingHandler(&mockHoldingService{}, &mockValuationService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/update-buyprice", `{"user":"a@test.com","symbol":"AAPL","buyPrice":120.5}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if parseJSON(t, rec)["message"] != "Updated AAPL's buy price successfully!" {
			t.Errorf("unexpected body: %s", rec.Body.String())
		}
	})

	t.Run("update_unknown_holding_returns_404", func(t *testing.T) {
		svc := &mockHoldingService{
			setSharesFn: func(_, _ string, _ decimal.Decimal) (*models.Holding, error) {
				return nil, apperrors.ErrHoldingNotFound
			},
		}
		r := setupHoldingRouter(NewHoldingHandler(svc, &mockValuationService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/update-shares", `{"user":"a@test.com","symbol":"NOPE","shares":3}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "HOLDING_NOT_FOUND")
	})

	t.Run("delete_stock", func(t *testing.T) {
		var gotSymbol string
		svc := &mockHoldingService{
			deleteHoldingFn: func(_, symbol string) error {
				gotSymbol = symbol
				return nil
			},
		}
		audit := &mockAuditService{}
		r := setupHoldingRouter(NewHoldingHandler(svc, &mockValuationService{}, audit))

		rec := doRequest(r, "POST", "/delete-stock", `{"user":"a@test.com","symbol":"aapl"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotSymbol != "AAPL" {
			t.Errorf("expected upper-cased symbol, got %q", gotSymbol)
		}
		if parseJSON(t, rec)["message"] != "Deleted AAPL successfully!" {
			t.Errorf("unexpected body: %s", rec.Body.String())
		}
		if len(audit.actions) != 1 || audit.actions[0] != "DELETE_HOLDING" {
			t.Errorf("expected DELETE_HOLDING audit entry, got %v", audit.actions)
		}
	})
}
