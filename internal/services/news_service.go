package services

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"vinvest/internal/logger"
	"vinvest/internal/models"
	"vinvest/internal/provider"
)

const (
	newsPerSymbol     = 3
	defaultNewsSource = "Yahoo Finance"
	pubDateLayout     = "2006-01-02 15:04:05"

	// Publish times below this are Unix seconds, otherwise milliseconds.
	millisecondThreshold = 1_000_000_000_000
)

// newsService aggregates recent headlines for held symbols.
type newsService struct {
	holdings    HoldingServicer
	quotes      provider.QuoteSource
	loc         *time.Location
	concurrency int
}

// NewNewsService creates a new NewsServicer. Publish dates are rendered in loc.
func NewNewsService(holdings HoldingServicer, quotes provider.QuoteSource, loc *time.Location, concurrency int) NewsServicer {
	if loc == nil {
		loc = time.Local
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &newsService{holdings: holdings, quotes: quotes, loc: loc, concurrency: concurrency}
}

// GetSymbolNews returns the three most recent headlines for symbol, newest
// first. Provider failures yield an empty list.
func (s *newsService) GetSymbolNews(ctx context.Context, symbol string) []NewsArticle {
	items, err := s.quotes.SearchNews(ctx, symbol)
	if err != nil {
		logger.Get().Warnw("news unavailable", "symbol", symbol, "error", err)
		return []NewsArticle{}
	}

	articles := make([]NewsArticle, 0, len(items))
	for _, item := range items {
		published := publishTime(item.PublishedAt)
		source := item.SourceName
		if source == "" {
			source = defaultNewsSource
		}
		articles = append(articles, NewsArticle{
			Symbol:      symbol,
			Title:       item.Title,
			Link:        item.Link,
			PubDate:     published.In(s.loc).Format(pubDateLayout),
			Summary:     item.Summary,
			Source:      source,
			PublishedAt: published,
		})
	}

	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
	if len(articles) > newsPerSymbol {
		articles = articles[:newsPerSymbol]
	}
	return articles
}

// GetUserNews returns headlines for every held symbol, grouped in holdings
// order.
func (s *newsService) GetUserNews(ctx context.Context, email string) ([]NewsArticle, error) {
	groups, err := s.newsBySymbol(ctx, email)
	if err != nil {
		return nil, err
	}

	flat := make([]NewsArticle, 0, len(groups)*newsPerSymbol)
	for _, g := range groups {
		flat = append(flat, g...)
	}
	return flat, nil
}

// newsBySymbol fetches news for each held symbol concurrently, keeping one
// slot per holding.
func (s *newsService) newsBySymbol(ctx context.Context, email string) ([][]NewsArticle, error) {
	holdings, err := s.holdings.ListHoldings(email)
	if err != nil {
		return nil, err
	}
	symbols := holdingSymbols(holdings)

	groups := make([][]NewsArticle, len(symbols))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, symbol := range symbols {
		g.Go(func() error {
			groups[i] = s.GetSymbolNews(ctx, symbol)
			return nil
		})
	}
	_ = g.Wait()
	return groups, nil
}

// holdingSymbols lists symbols in store order.
func holdingSymbols(holdings []models.Holding) []string {
	out := make([]string, len(holdings))
	for i, h := range holdings {
		out[i] = h.Symbol
	}
	return out
}

func publishTime(ts int64) time.Time {
	if ts < millisecondThreshold {
		return time.Unix(ts, 0)
	}
	return time.UnixMilli(ts)
}
