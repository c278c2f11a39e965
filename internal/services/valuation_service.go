package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	apperrors "vinvest/internal/errors"
	"vinvest/internal/indicator"
	"vinvest/internal/logger"
	"vinvest/internal/provider"
)

const (
	sparklineWindow = 7 * 24 * time.Hour
	rsiWindow       = 30 * 24 * time.Hour
)

// valuationService enriches holdings with market data and aggregates totals.
type valuationService struct {
	holdings    HoldingServicer
	quotes      provider.QuoteSource
	concurrency int
	now         Clock
}

// NewValuationService creates a new ValuationServicer. concurrency bounds the
// number of holdings enriched at once.
func NewValuationService(holdings HoldingServicer, quotes provider.QuoteSource, concurrency int, now Clock) ValuationServicer {
	if concurrency < 1 {
		concurrency = 1
	}
	if now == nil {
		now = time.Now
	}
	return &valuationService{holdings: holdings, quotes: quotes, concurrency: concurrency, now: now}
}

// enrichment is the market data gathered for one holding.
type enrichment struct {
	quote     *provider.Quote
	quoteErr  error
	sparkline []float64
	rsi       *float64
}

// Valuate loads the user's holdings, enriches each with a quote, a 7-day
// sparkline at interval and a 14-period RSI, and sums value and profit/loss.
// Holdings whose quote fails keep nil price fields and are left out of the
// totals. A portfolio of one holding whose quote fails is an error.
func (s *valuationService) Valuate(ctx context.Context, email string, interval provider.Interval) (*Valuation, error) {
	holdings, err := s.holdings.ListHoldings(email)
	if err != nil {
		return nil, err
	}

	result := &Valuation{
		Holdings:        make([]EnrichedHolding, 0, len(holdings)),
		TotalValue:      decimal.Zero,
		TotalProfitLoss: decimal.Zero,
	}
	if len(holdings) == 0 {
		return result, nil
	}

	now := s.now().UTC()
	enriched := make([]enrichment, len(holdings))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i := range holdings {
		g.Go(func() error {
			enriched[i] = s.enrich(ctx, holdings[i].Symbol, interval, now)
			return nil
		})
	}
	_ = g.Wait()

	if len(holdings) == 1 && enriched[0].quoteErr != nil {
		return nil, apperrors.Wrap(apperrors.ErrQuoteUnavailable, enriched[0].quoteErr)
	}

	totalValue := decimal.Zero
	totalPL := decimal.Zero
	for i, h := range holdings {
		e := enriched[i]
		item := EnrichedHolding{
			Symbol:    h.Symbol,
			Name:      h.Name,
			Category:  h.Category,
			Shares:    h.Shares,
			BuyPrice:  h.BuyPrice,
			Sparkline: e.sparkline,
			RSI:       e.rsi,
		}

		if e.quote != nil {
			price := decimal.NewFromFloat(e.quote.Price)
			value := price.Mul(h.Shares)
			pl := price.Sub(h.BuyPrice).Mul(h.Shares)
			totalValue = totalValue.Add(value)
			totalPL = totalPL.Add(pl)

			change := e.quote.PercentChange
			item.CurrentPrice = &price
			item.Currency = e.quote.Currency
			item.PriceChange = &change
			item.TotalValue = roundedPtr(value)
			item.ProfitLoss = roundedPtr(pl)
			if e.quote.DisplayName != "" {
				item.Name = e.quote.DisplayName
			}
			item.Type = e.quote.AssetType
		}

		result.Holdings = append(result.Holdings, item)
	}

	result.TotalValue = totalValue.Round(2)
	result.TotalProfitLoss = totalPL.Round(2)
	return result, nil
}

// PortfolioTotal sums price times shares over the user's holdings using
// quotes only. Any failed quote fails the total so that a partial value is
// never recorded.
func (s *valuationService) PortfolioTotal(ctx context.Context, email string) (decimal.Decimal, error) {
	holdings, err := s.holdings.ListHoldings(email)
	if err != nil {
		return decimal.Zero, err
	}

	prices := make([]decimal.Decimal, len(holdings))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range holdings {
		g.Go(func() error {
			q, err := s.quotes.GetQuote(gctx, holdings[i].Symbol)
			if err != nil {
				return err
			}
			prices[i] = decimal.NewFromFloat(q.Price)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrQuoteUnavailable, err)
	}

	total := decimal.Zero
	for i, h := range holdings {
		total = total.Add(prices[i].Mul(h.Shares))
	}
	return total.Round(2), nil
}

// enrich gathers market data for one symbol. Failures are logged and leave
// the corresponding fields empty.
func (s *valuationService) enrich(ctx context.Context, symbol string, interval provider.Interval, now time.Time) enrichment {
	log := logger.Get()
	var e enrichment

	e.quote, e.quoteErr = s.quotes.GetQuote(ctx, symbol)
	if e.quoteErr != nil {
		log.Warnw("quote unavailable", "symbol", symbol, "error", e.quoteErr)
	}

	e.sparkline = []float64{}
	bars, err := s.quotes.GetHistory(ctx, symbol, now.Add(-sparklineWindow), now, interval)
	if err != nil {
		log.Warnw("sparkline unavailable", "symbol", symbol, "error", err)
	} else {
		e.sparkline = closes(bars)
	}

	daily, err := s.quotes.GetHistory(ctx, symbol, now.Add(-rsiWindow), now, provider.IntervalDaily)
	if err != nil {
		log.Warnw("rsi history unavailable", "symbol", symbol, "error", err)
	} else {
		e.rsi = indicator.LatestRSI(closes(daily))
	}

	return e
}

func closes(bars []provider.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

func roundedPtr(d decimal.Decimal) *decimal.Decimal {
	r := d.Round(2)
	return &r
}
