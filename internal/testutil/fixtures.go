package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"vinvest/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Username: fmt.Sprintf("investor%d", nextID()),
		Email:    email,
		Password: string(hash),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestHolding creates a holding with the given shares and buy price.
func CreateTestHolding(t *testing.T, db *gorm.DB, email, symbol string, shares, buyPrice float64) *models.Holding {
	t.Helper()

	holding := &models.Holding{
		UserEmail: email,
		Symbol:    symbol,
		Name:      symbol + " Corp",
		Category:  "Technology",
		Shares:    decimal.NewFromFloat(shares),
		BuyPrice:  decimal.NewFromFloat(buyPrice),
	}
	if err := db.Create(holding).Error; err != nil {
		t.Fatalf("failed to create test holding: %v", err)
	}
	return holding
}

// CreateTestHoldings creates n holdings with symbols SYM1..SYMn.
func CreateTestHoldings(t *testing.T, db *gorm.DB, email string, n int) []models.Holding {
	t.Helper()

	holdings := make([]models.Holding, 0, n)
	for i := 1; i <= n; i++ {
		holdings = append(holdings, *CreateTestHolding(t, db, email, fmt.Sprintf("SYM%d", i), 1, 10))
	}
	return holdings
}

// CreateTestSubscription creates a subscription for email. A nil expiresAt
// means the subscription never lapses.
func CreateTestSubscription(t *testing.T, db *gorm.DB, email string, active bool, expiresAt *time.Time) *models.Subscription {
	t.Helper()

	sub := &models.Subscription{UserEmail: email, Active: active, ExpiresAt: expiresAt}
	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("failed to create test subscription: %v", err)
	}
	return sub
}

// CreateTestRiskProfile creates a filled-in risk questionnaire for email.
func CreateTestRiskProfile(t *testing.T, db *gorm.DB, email string) *models.RiskProfile {
	t.Helper()

	profile := &models.RiskProfile{
		UserEmail:           email,
		Age:                 "25-34",
		InvestmentGoal:      "Growth",
		InvestmentTime:      "5+ years",
		ReactionToMarket:    "Buy more",
		NetWorth:            "$50k-$100k",
		FundAccess:          "Not soon",
		EconomicOutlook:     "Optimistic",
		FinancialSituation:  "Stable",
		FinancialObligation: "Low",
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("failed to create test risk profile: %v", err)
	}
	return profile
}

// CreateTestAdviceLog creates an advice log entry at createdAt.
func CreateTestAdviceLog(t *testing.T, db *gorm.DB, email, advice string, createdAt time.Time) *models.AdviceLog {
	t.Helper()

	entry := &models.AdviceLog{UserEmail: email, Advice: advice, CreatedAt: createdAt.UTC()}
	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("failed to create test advice log: %v", err)
	}
	return entry
}

// CreateTestSnapshot creates a portfolio snapshot at recordedAt.
func CreateTestSnapshot(t *testing.T, db *gorm.DB, email string, total float64, recordedAt time.Time) *models.PortfolioSnapshot {
	t.Helper()

	snap := &models.PortfolioSnapshot{
		UserEmail:  email,
		TotalValue: decimal.NewFromFloat(total),
		RecordedAt: recordedAt.UTC(),
	}
	if err := db.Create(snap).Error; err != nil {
		t.Fatalf("failed to create test snapshot: %v", err)
	}
	return snap
}
