package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"vinvest/internal/ai"
	apperrors "vinvest/internal/errors"
	"vinvest/internal/logger"
	"vinvest/internal/metrics"
	"vinvest/internal/models"
	"vinvest/internal/provider"
)

// AdviceCooldown is the minimum age of the newest advice before a new one is
// generated.
const AdviceCooldown = 24 * time.Hour

// advisoryService builds prompts from a user's portfolio and asks the model
// for advice or a risk score.
type advisoryService struct {
	db        *gorm.DB
	valuation ValuationServicer
	news      NewsServicer
	risk      RiskProfileServicer
	generator ai.Generator
	now       Clock
}

// NewAdvisoryService creates a new AdvisoryServicer.
func NewAdvisoryService(db *gorm.DB, valuation ValuationServicer, news NewsServicer, risk RiskProfileServicer, generator ai.Generator, now Clock) AdvisoryServicer {
	if now == nil {
		now = time.Now
	}
	return &advisoryService{db: db, valuation: valuation, news: news, risk: risk, generator: generator, now: now}
}

// portfolioContext is the data embedded in every prompt.
type portfolioContext struct {
	RiskAssessment  any               `json:"riskAssessment"`
	MarketSentiment [][]NewsArticle   `json:"marketSentiment"`
	Portfolio       []holdingSnapshot `json:"portfolio"`
}

type holdingSnapshot struct {
	Symbol    string          `json:"symbol"`
	Shares    decimal.Decimal `json:"shares"`
	BuyPrice  decimal.Decimal `json:"buyPrice"`
	Quote     *quoteSnapshot  `json:"quote"`
	Sparkline []float64       `json:"sparkline"`
	RSI       *float64        `json:"rsi"`
}

type quoteSnapshot struct {
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
	Change   float64         `json:"change"`
}

// GetAdvice returns the newest stored advice if it is younger than
// AdviceCooldown; otherwise it generates, stores and returns new advice.
// A generation failure is returned as the advice text and is not stored.
func (s *advisoryService) GetAdvice(ctx context.Context, email string) (*Advice, error) {
	email = normalizeEmail(email)
	now := s.now().UTC()

	cached, err := s.recentAdvice(s.db, email, now)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		metrics.AdviceRequests.WithLabelValues(metrics.OutcomeCached).Inc()
		return cached, nil
	}

	pc, err := s.buildContext(ctx, email)
	if err != nil {
		return nil, err
	}

	text, err := s.generator.Generate(ctx, advicePrompt(pc))
	if err != nil {
		logger.Get().Errorw("advice generation failed", "user", email, "error", err)
		metrics.AdviceRequests.WithLabelValues(metrics.OutcomeFailed).Inc()
		return &Advice{Advice: err.Error(), Failed: true, CreatedAt: now}, nil
	}

	contextJSON, err := json.Marshal(pc)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var result *Advice
	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Another request may have stored advice while this one was generating.
		existing, err := s.recentAdvice(tx, email, now)
		if err != nil {
			return err
		}
		if existing != nil {
			result = existing
			return nil
		}

		entry := &models.AdviceLog{
			UserEmail: email,
			Advice:    text,
			Context:   datatypes.JSON(contextJSON),
			CreatedAt: now,
		}
		if err := tx.Create(entry).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		result = &Advice{Advice: text, Generated: true, CreatedAt: now}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Generated {
		metrics.AdviceRequests.WithLabelValues(metrics.OutcomeGenerated).Inc()
	} else {
		metrics.AdviceRequests.WithLabelValues(metrics.OutcomeCached).Inc()
	}
	return result, nil
}

// GetRiskScore asks the model for a 0-100 risk score. The raw text is always
// returned; Score is set only when the text is a clean integer in range.
func (s *advisoryService) GetRiskScore(ctx context.Context, email string) (*RiskScore, error) {
	email = normalizeEmail(email)

	pc, err := s.buildContext(ctx, email)
	if err != nil {
		return nil, err
	}

	text, err := s.generator.Generate(ctx, riskPrompt(pc))
	if err != nil {
		logger.Get().Errorw("risk score generation failed", "user", email, "error", err)
		return &RiskScore{Response: err.Error()}, nil
	}

	result := &RiskScore{Response: text}
	if score, ok := ParseRiskScore(text); ok {
		result.Score = &score
	} else {
		logger.Get().Warnw("model returned a non-numeric risk score", "user", email, "response", text)
	}
	return result, nil
}

// ParseRiskScore accepts a bare whole number between 0 and 100.
func ParseRiskScore(text string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n < 0 || n > 100 {
		return 0, false
	}
	return n, true
}

// recentAdvice returns the newest advice if it is inside the cooldown window.
func (s *advisoryService) recentAdvice(db *gorm.DB, email string, now time.Time) (*Advice, error) {
	var latest models.AdviceLog
	err := db.Where("user_email = ?", email).Order("created_at DESC").First(&latest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if now.Sub(latest.CreatedAt) >= AdviceCooldown {
		return nil, nil
	}
	return &Advice{Advice: latest.Advice, Generated: false, CreatedAt: latest.CreatedAt}, nil
}

// buildContext gathers the hourly valuation, per-symbol news and the risk
// questionnaire. A missing questionnaire is passed as an empty object.
func (s *advisoryService) buildContext(ctx context.Context, email string) (*portfolioContext, error) {
	valuation, err := s.valuation.Valuate(ctx, email, provider.IntervalHourly)
	if err != nil {
		return nil, err
	}

	pc := &portfolioContext{
		RiskAssessment:  struct{}{},
		MarketSentiment: make([][]NewsArticle, len(valuation.Holdings)),
		Portfolio:       make([]holdingSnapshot, len(valuation.Holdings)),
	}

	var g errgroup.Group
	for i, h := range valuation.Holdings {
		g.Go(func() error {
			pc.MarketSentiment[i] = s.news.GetSymbolNews(ctx, h.Symbol)
			return nil
		})

		snap := holdingSnapshot{
			Symbol:    h.Symbol,
			Shares:    h.Shares,
			BuyPrice:  h.BuyPrice,
			Sparkline: h.Sparkline,
			RSI:       h.RSI,
		}
		if h.CurrentPrice != nil {
			snap.Quote = &quoteSnapshot{Price: *h.CurrentPrice, Currency: h.Currency}
			if h.PriceChange != nil {
				snap.Quote.Change = *h.PriceChange
			}
		}
		pc.Portfolio[i] = snap
	}
	_ = g.Wait()

	profile, err := s.risk.GetRiskProfile(email)
	switch {
	case err == nil:
		pc.RiskAssessment = profile
	case errors.Is(err, apperrors.ErrRiskProfileNotFound):
	default:
		return nil, err
	}

	return pc, nil
}

func advicePrompt(pc *portfolioContext) string {
	return fmt.Sprintf(`You are an expert trading advisor. Analyze the following investor profile
and market factors to provide actionable strategies (entry, exit, risk management).

Format the response as structured sections with clear titles, using exactly this layout:

### Entry & Exit Strategy
(content here)

### Risk Management
(content here)

### Diversification Tips
(content here)

### Market Outlook
(content here)

### Portfolio Adjustments
(content here)

### Action Plan
1. Step one
2. Step two
3. Step three

Investor Info:
- Risk Assessment: %s
- Market Sentiment: %s
- Portfolio: %s

Be concise but practical.
No Disclaimer.`, mustJSON(pc.RiskAssessment), mustJSON(pc.MarketSentiment), mustJSON(pc.Portfolio))
}

func riskPrompt(pc *portfolioContext) string {
	return fmt.Sprintf(`Based on the following resources, calculate the risk level of my trading:
1. Stocks selected: %s
2. News related to the stocks: %s
3. My risk assessment form: %s

Note: the only answer allowed is an integer percentage, e.g. 53, without the percentage sign.
It must be a whole number with no decimals.`, mustJSON(pc.Portfolio), mustJSON(pc.MarketSentiment), mustJSON(pc.RiskAssessment))
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(data)
}
