package services

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "vinvest/internal/errors"
	"vinvest/internal/models"
)

// FreeHoldingQuota is the number of holdings allowed without a subscription.
const FreeHoldingQuota = 10

// holdingService handles a user's stock positions.
type holdingService struct {
	db  *gorm.DB
	now Clock
}

// NewHoldingService creates a new HoldingServicer.
func NewHoldingService(db *gorm.DB, now Clock) HoldingServicer {
	if now == nil {
		now = time.Now
	}
	return &holdingService{db: db, now: now}
}

// ListHoldings returns the user's holdings in insertion order.
func (s *holdingService) ListHoldings(email string) ([]models.Holding, error) {
	var holdings []models.Holding
	if err := s.db.Where("user_email = ?", normalizeEmail(email)).
		Order("created_at ASC, id ASC").
		Find(&holdings).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return holdings, nil
}

// AddShares increments an existing holding or inserts a new one. Adding a new
// symbol when the user holds exactly FreeHoldingQuota positions requires an
// active subscription. The check and the insert share one transaction.
func (s *holdingService) AddShares(email, symbol string, delta decimal.Decimal, meta models.HoldingMeta) (*AddResult, error) {
	email = normalizeEmail(email)
	symbol = normalizeSymbol(symbol)
	if email == "" || symbol == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "user and symbol are required")
	}
	if !delta.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "shares must be greater than zero")
	}

	var result *AddResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Holding
		err := tx.Where("user_email = ? AND symbol = ?", email, symbol).First(&existing).Error
		if err == nil {
			if err := tx.Model(&existing).Update("shares", gorm.Expr("shares + ?", delta)).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			if err := tx.First(&existing, "id = ?", existing.ID).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			result = &AddResult{Holding: &existing}
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if !meta.BuyPrice.IsPositive() {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "buy price must be greater than zero")
		}

		var count int64
		if err := tx.Model(&models.Holding{}).Where("user_email = ?", email).Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count == FreeHoldingQuota {
			subscribed, err := s.hasActiveSubscription(tx, email)
			if err != nil {
				return err
			}
			if !subscribed {
				return apperrors.ErrSubscriptionRequired
			}
		}

		holding := &models.Holding{
			UserEmail: email,
			Symbol:    symbol,
			Name:      meta.Name,
			Category:  meta.Category,
			Shares:    delta,
			BuyPrice:  meta.BuyPrice,
		}
		if err := tx.Create(holding).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		result = &AddResult{Holding: holding, Created: true}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SetShares overwrites the share count of a holding.
func (s *holdingService) SetShares(email, symbol string, shares decimal.Decimal) (*models.Holding, error) {
	if !shares.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "shares must be greater than zero")
	}
	return s.updateField(email, symbol, "shares", shares)
}

// SetBuyPrice overwrites the cost basis of a holding.
func (s *holdingService) SetBuyPrice(email, symbol string, price decimal.Decimal) (*models.Holding, error) {
	if !price.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "buy price must be greater than zero")
	}
	return s.updateField(email, symbol, "buy_price", price)
}

func (s *holdingService) updateField(email, symbol, column string, value decimal.Decimal) (*models.Holding, error) {
	email = normalizeEmail(email)
	symbol = normalizeSymbol(symbol)

	res := s.db.Model(&models.Holding{}).
		Where("user_email = ? AND symbol = ?", email, symbol).
		Update(column, value)
	if res.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.ErrHoldingNotFound
	}

	var holding models.Holding
	if err := s.db.Where("user_email = ? AND symbol = ?", email, symbol).First(&holding).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &holding, nil
}

// DeleteHolding removes a holding entirely.
func (s *holdingService) DeleteHolding(email, symbol string) error {
	res := s.db.Where("user_email = ? AND symbol = ?", normalizeEmail(email), normalizeSymbol(symbol)).
		Delete(&models.Holding{})
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrHoldingNotFound
	}
	return nil
}

// ListUsersWithHoldings returns every user that holds at least one position.
func (s *holdingService) ListUsersWithHoldings() ([]string, error) {
	var emails []string
	if err := s.db.Model(&models.Holding{}).
		Distinct("user_email").
		Order("user_email ASC").
		Pluck("user_email", &emails).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return emails, nil
}

func (s *holdingService) hasActiveSubscription(tx *gorm.DB, email string) (bool, error) {
	var sub models.Subscription
	err := tx.Where("user_email = ?", email).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return sub.IsActive(s.now()), nil
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
