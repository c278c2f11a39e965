// Package provider defines the market-data source used for quotes, price
// history, symbol search and headlines.
package provider

import (
	"context"
	"fmt"
	"time"
)

// Interval is the bar width requested from GetHistory.
type Interval string

const (
	IntervalDaily  Interval = "1d"
	IntervalHourly Interval = "1h"
)

// Quote is the latest market snapshot for a symbol.
type Quote struct {
	Symbol        string
	Price         float64
	Currency      string
	PercentChange float64
	DisplayName   string
	AssetType     string
}

// Bar is one closing price in a history series.
type Bar struct {
	Timestamp time.Time
	Close     float64
}

// SearchResult is a symbol match returned by Search.
type SearchResult struct {
	Symbol    string `json:"symbol"`
	Name      string `json:"name"`
	AssetType string `json:"type"`
}

// NewsItem is a raw headline from the search news facet. PublishedAt is a
// Unix timestamp in seconds or milliseconds depending on the upstream.
type NewsItem struct {
	Title       string
	Link        string
	PublishedAt int64
	Summary     string
	SourceName  string
}

// FetchError represents a failed call for a specific symbol or query.
type FetchError struct {
	Op     string
	Symbol string
	Err    error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Symbol, e.Err)
}

// Unwrap returns the underlying cause.
func (e *FetchError) Unwrap() error { return e.Err }

// QuoteSource fetches market data. Any call may fail for a single symbol;
// callers treat that as a missing enrichment rather than a fatal error.
type QuoteSource interface {
	GetQuote(ctx context.Context, symbol string) (*Quote, error)
	GetHistory(ctx context.Context, symbol string, from, to time.Time, interval Interval) ([]Bar, error)
	Search(ctx context.Context, query string) ([]SearchResult, error)
	SearchNews(ctx context.Context, symbol string) ([]NewsItem, error)
}
