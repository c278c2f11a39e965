package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"vinvest/internal/models"
	"vinvest/internal/provider"
)

// Clock returns the current time. Services take one so tests can move time.
type Clock func() time.Time

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(username, email, password string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUsername(email string) (string, error)
	DeleteUserData(email string) error
}

// AddResult reports whether AddShares inserted a new holding or grew an
// existing one.
type AddResult struct {
	Holding *models.Holding
	Created bool
}

// HoldingServicer defines the contract for a user's stock positions.
type HoldingServicer interface {
	ListHoldings(email string) ([]models.Holding, error)
	AddShares(email, symbol string, delta decimal.Decimal, meta models.HoldingMeta) (*AddResult, error)
	SetShares(email, symbol string, shares decimal.Decimal) (*models.Holding, error)
	SetBuyPrice(email, symbol string, price decimal.Decimal) (*models.Holding, error)
	DeleteHolding(email, symbol string) error
	ListUsersWithHoldings() ([]string, error)
}

// EnrichedHolding is a holding joined with live market data. Price-derived
// fields are nil when the quote could not be fetched.
type EnrichedHolding struct {
	Symbol       string
	Name         string
	Type         string
	Category     string
	Shares       decimal.Decimal
	BuyPrice     decimal.Decimal
	CurrentPrice *decimal.Decimal
	Currency     string
	PriceChange  *float64
	Sparkline    []float64
	RSI          *float64
	TotalValue   *decimal.Decimal
	ProfitLoss   *decimal.Decimal
}

// Valuation is the enriched view of a portfolio. Totals cover only holdings
// whose quote succeeded.
type Valuation struct {
	Holdings        []EnrichedHolding
	TotalValue      decimal.Decimal
	TotalProfitLoss decimal.Decimal
}

// ValuationServicer defines the portfolio valuation pipeline.
type ValuationServicer interface {
	Valuate(ctx context.Context, email string, interval provider.Interval) (*Valuation, error)
	PortfolioTotal(ctx context.Context, email string) (decimal.Decimal, error)
}

// NewsArticle is a formatted headline for one held symbol.
type NewsArticle struct {
	Symbol      string    `json:"symbol"`
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	PubDate     string    `json:"pubDate"`
	Summary     string    `json:"summary"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"-"`
}

// NewsServicer defines the news aggregator.
type NewsServicer interface {
	GetSymbolNews(ctx context.Context, symbol string) []NewsArticle
	GetUserNews(ctx context.Context, email string) ([]NewsArticle, error)
}

// Advice is the result of an advice request. Failed is set when the model
// call errored and Advice holds the error text.
type Advice struct {
	Advice    string
	Generated bool
	Failed    bool
	CreatedAt time.Time
}

// RiskScore is the model's raw risk answer and its parsed value, if clean.
type RiskScore struct {
	Response string
	Score    *int
}

// AdvisoryServicer defines the advisory engine.
type AdvisoryServicer interface {
	GetAdvice(ctx context.Context, email string) (*Advice, error)
	GetRiskScore(ctx context.Context, email string) (*RiskScore, error)
}

// RiskProfileServicer defines the contract for risk questionnaires.
type RiskProfileServicer interface {
	GetRiskProfile(email string) (*models.RiskProfile, error)
	UpsertRiskProfile(email string, answers models.RiskProfile) (created bool, err error)
	HasRiskProfile(email string) (bool, error)
}

// SnapshotRun summarizes one snapshot job cycle.
type SnapshotRun struct {
	Recorded int   `json:"snapshots_recorded"`
	Failed   int   `json:"failed"`
	Pruned   int64 `json:"pruned"`
}

// PortfolioSnapshotServicer defines the snapshot job and history reads.
type PortfolioSnapshotServicer interface {
	ComputeAndRecordSnapshots(ctx context.Context, recordedAt time.Time) (*SnapshotRun, error)
	PruneSnapshots(before time.Time) (int64, error)
	GetHistory(email string) ([]models.PortfolioSnapshot, error)
}

// ChatServicer answers chat messages.
type ChatServicer interface {
	Reply(ctx context.Context, text string) string
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(event AuditEvent)
}
