package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"vinvest/internal/metrics"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	yahooBaseURL = "https://query1.finance.yahoo.com"
	yahooUA      = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)"
)

// yahooQuoteResponse is the v7 quote endpoint response.
type yahooQuoteResponse struct {
	QuoteResponse struct {
		Result []yahooQuoteResult `json:"result"`
		Error  *json.RawMessage   `json:"error"`
	} `json:"quoteResponse"`
}

type yahooQuoteResult struct {
	Symbol                     string  `json:"symbol"`
	RegularMarketPrice         float64 `json:"regularMarketPrice"`
	RegularMarketChangePercent float64 `json:"regularMarketChangePercent"`
	Currency                   string  `json:"currency"`
	LongName                   string  `json:"longName"`
	ShortName                  string  `json:"shortName"`
	QuoteType                  string  `json:"quoteType"`
}

// yahooChartResponse is the v8 chart endpoint response. Closes are nullable
// for bars with no trades.
type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// yahooSearchResponse is the v1 search endpoint response with its quote and
// news facets.
type yahooSearchResponse struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		ShortName string `json:"shortname"`
		LongName  string `json:"longname"`
		QuoteType string `json:"quoteType"`
	} `json:"quotes"`
	News []struct {
		Title               string `json:"title"`
		Link                string `json:"link"`
		Publisher           string `json:"publisher"`
		Summary             string `json:"summary"`
		ProviderPublishTime int64  `json:"providerPublishTime"`
	} `json:"news"`
}

// YahooProvider fetches market data from Yahoo Finance.
type YahooProvider struct {
	client  *resty.Client
	limiter *rate.Limiter
	timeout time.Duration
	baseURL string // overridable for tests
}

// NewYahooProvider creates a Yahoo Finance source. Every call waits on a
// shared limiter of ratePerSec requests and is bounded by timeout.
func NewYahooProvider(timeout time.Duration, ratePerSec float64) *YahooProvider {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetHeader("User-Agent", yahooUA)

	burst := int(ratePerSec)
	if burst < 1 {
		burst = 1
	}

	return &YahooProvider{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), burst),
		timeout: timeout,
		baseURL: yahooBaseURL,
	}
}

// GetQuote returns the latest quote for symbol.
func (p *YahooProvider) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	var resp yahooQuoteResponse
	if err := p.get(ctx, "quote", symbol, "/v7/finance/quote", map[string]string{"symbols": symbol}, &resp); err != nil {
		return nil, err
	}

	for _, r := range resp.QuoteResponse.Result {
		if !strings.EqualFold(r.Symbol, symbol) {
			continue
		}
		if r.RegularMarketPrice == 0 {
			return nil, p.fail("quote", symbol, fmt.Errorf("zero price"))
		}
		name := r.LongName
		if name == "" {
			name = r.ShortName
		}
		return &Quote{
			Symbol:        r.Symbol,
			Price:         r.RegularMarketPrice,
			Currency:      r.Currency,
			PercentChange: r.RegularMarketChangePercent,
			DisplayName:   name,
			AssetType:     r.QuoteType,
		}, nil
	}

	return nil, p.fail("quote", symbol, fmt.Errorf("symbol not found in response"))
}

// GetHistory returns closing prices between from and to, oldest first.
// Bars without a close are dropped.
func (p *YahooProvider) GetHistory(ctx context.Context, symbol string, from, to time.Time, interval Interval) ([]Bar, error) {
	params := map[string]string{
		"period1":  strconv.FormatInt(from.Unix(), 10),
		"period2":  strconv.FormatInt(to.Unix(), 10),
		"interval": string(interval),
	}

	var resp yahooChartResponse
	if err := p.get(ctx, "history", symbol, "/v8/finance/chart/"+url.PathEscape(symbol), params, &resp); err != nil {
		return nil, err
	}
	if resp.Chart.Error != nil {
		return nil, p.fail("history", symbol, fmt.Errorf("%s: %s", resp.Chart.Error.Code, resp.Chart.Error.Description))
	}
	if len(resp.Chart.Result) == 0 {
		return nil, p.fail("history", symbol, fmt.Errorf("empty chart result"))
	}

	result := resp.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return []Bar{}, nil
	}
	closes := result.Indicators.Quote[0].Close

	bars := make([]Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		bars = append(bars, Bar{Timestamp: time.Unix(ts, 0).UTC(), Close: *closes[i]})
	}
	return bars, nil
}

// Search returns symbol matches for a free-text query.
func (p *YahooProvider) Search(ctx context.Context, query string) ([]SearchResult, error) {
	resp, err := p.search(ctx, "search", query)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(resp.Quotes))
	for _, q := range resp.Quotes {
		name := q.LongName
		if name == "" {
			name = q.ShortName
		}
		results = append(results, SearchResult{Symbol: q.Symbol, Name: name, AssetType: q.QuoteType})
	}
	return results, nil
}

// SearchNews returns the news facet of a search for symbol.
func (p *YahooProvider) SearchNews(ctx context.Context, symbol string) ([]NewsItem, error) {
	resp, err := p.search(ctx, "news", symbol)
	if err != nil {
		return nil, err
	}

	items := make([]NewsItem, 0, len(resp.News))
	for _, n := range resp.News {
		items = append(items, NewsItem{
			Title:       n.Title,
			Link:        n.Link,
			PublishedAt: n.ProviderPublishTime,
			Summary:     n.Summary,
			SourceName:  n.Publisher,
		})
	}
	return items, nil
}

func (p *YahooProvider) search(ctx context.Context, op, query string) (*yahooSearchResponse, error) {
	var resp yahooSearchResponse
	if err := p.get(ctx, op, query, "/v1/finance/search", map[string]string{"q": query}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// get performs one throttled GET and decodes the JSON body into out.
func (p *YahooProvider) get(ctx context.Context, op, symbol, path string, params map[string]string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.limiter.Wait(ctx); err != nil {
		return p.fail(op, symbol, fmt.Errorf("rate limiter: %w", err))
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(p.baseURL + path)
	if err != nil {
		return p.fail(op, symbol, fmt.Errorf("http request: %w", err))
	}
	if resp.StatusCode() != http.StatusOK {
		return p.fail(op, symbol, fmt.Errorf("unexpected status %d", resp.StatusCode()))
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return p.fail(op, symbol, fmt.Errorf("decoding response: %w", err))
	}

	metrics.UpstreamCalls.WithLabelValues(op, metrics.OutcomeOK).Inc()
	return nil
}

func (p *YahooProvider) fail(op, symbol string, err error) *FetchError {
	metrics.UpstreamCalls.WithLabelValues(op, metrics.OutcomeError).Inc()
	return &FetchError{Op: op, Symbol: symbol, Err: err}
}
