package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"vinvest/internal/provider"
)

// ErrFakeUnavailable is returned by fakes for symbols they have no data for.
var ErrFakeUnavailable = errors.New("fake: no data")

// FakeQuoteSource is an in-memory provider.QuoteSource. It is safe for
// concurrent use.
type FakeQuoteSource struct {
	mu sync.Mutex

	Prices   map[string]float64
	Closes   map[string][]float64
	News     map[string][]provider.NewsItem
	Results  []provider.SearchResult
	FailNews bool

	QuoteCalls   int
	HistoryCalls []provider.Interval
}

// NewFakeQuoteSource returns a source quoting the given prices.
func NewFakeQuoteSource(prices map[string]float64) *FakeQuoteSource {
	return &FakeQuoteSource{
		Prices: prices,
		Closes: map[string][]float64{},
		News:   map[string][]provider.NewsItem{},
	}
}

// GetQuote implements provider.QuoteSource.
func (f *FakeQuoteSource) GetQuote(_ context.Context, symbol string) (*provider.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.QuoteCalls++

	price, ok := f.Prices[symbol]
	if !ok {
		return nil, &provider.FetchError{Op: "quote", Symbol: symbol, Err: ErrFakeUnavailable}
	}
	return &provider.Quote{
		Symbol:        symbol,
		Price:         price,
		Currency:      "USD",
		PercentChange: 0.5,
		DisplayName:   symbol + " Inc.",
		AssetType:     "EQUITY",
	}, nil
}

// GetHistory implements provider.QuoteSource. Closes are spaced one bar
// apart ending at to.
func (f *FakeQuoteSource) GetHistory(_ context.Context, symbol string, _, to time.Time, interval provider.Interval) ([]provider.Bar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.HistoryCalls = append(f.HistoryCalls, interval)

	closes, ok := f.Closes[symbol]
	if !ok {
		return nil, &provider.FetchError{Op: "history", Symbol: symbol, Err: ErrFakeUnavailable}
	}
	step := 24 * time.Hour
	if interval == provider.IntervalHourly {
		step = time.Hour
	}
	bars := make([]provider.Bar, len(closes))
	for i, c := range closes {
		bars[i] = provider.Bar{Timestamp: to.Add(-time.Duration(len(closes)-1-i) * step), Close: c}
	}
	return bars, nil
}

// Search implements provider.QuoteSource.
func (f *FakeQuoteSource) Search(_ context.Context, _ string) ([]provider.SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Results, nil
}

// SearchNews implements provider.QuoteSource.
func (f *FakeQuoteSource) SearchNews(_ context.Context, symbol string) ([]provider.NewsItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailNews {
		return nil, &provider.FetchError{Op: "news", Symbol: symbol, Err: ErrFakeUnavailable}
	}
	return f.News[symbol], nil
}

// FakeGenerator is an ai.Generator returning a canned response.
type FakeGenerator struct {
	mu sync.Mutex

	Response string
	Err      error
	Prompts  []string
}

// Generate implements ai.Generator.
func (g *FakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Prompts = append(g.Prompts, prompt)
	if g.Err != nil {
		return "", g.Err
	}
	return g.Response, nil
}

// Calls returns how many prompts were generated.
func (g *FakeGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.Prompts)
}
