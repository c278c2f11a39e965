package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "vinvest/internal/errors"
	"vinvest/internal/models"
)

// riskProfileService stores one risk questionnaire per user.
type riskProfileService struct {
	db *gorm.DB
}

// NewRiskProfileService creates a new RiskProfileServicer.
func NewRiskProfileService(db *gorm.DB) RiskProfileServicer {
	return &riskProfileService{db: db}
}

// GetRiskProfile returns the user's questionnaire.
func (s *riskProfileService) GetRiskProfile(email string) (*models.RiskProfile, error) {
	var profile models.RiskProfile
	if err := s.db.Where("user_email = ?", normalizeEmail(email)).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRiskProfileNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &profile, nil
}

// UpsertRiskProfile replaces the user's answers, creating the row if needed.
func (s *riskProfileService) UpsertRiskProfile(email string, answers models.RiskProfile) (bool, error) {
	email = normalizeEmail(email)
	if email == "" {
		return false, apperrors.WithMessage(apperrors.ErrInvalidInput, "user is required")
	}

	created := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.RiskProfile
		err := tx.Where("user_email = ?", email).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			answers.ID = ""
			answers.UserEmail = email
			created = true
			return tx.Create(&answers).Error
		case err != nil:
			return err
		}

		return tx.Model(&existing).Updates(map[string]interface{}{
			"age":                  answers.Age,
			"investment_goal":      answers.InvestmentGoal,
			"investment_time":      answers.InvestmentTime,
			"reaction_to_market":   answers.ReactionToMarket,
			"net_worth":            answers.NetWorth,
			"fund_access":          answers.FundAccess,
			"economic_outlook":     answers.EconomicOutlook,
			"financial_situation":  answers.FinancialSituation,
			"financial_obligation": answers.FinancialObligation,
		}).Error
	})
	if err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return created, nil
}

// HasRiskProfile reports whether the user has filled in the questionnaire.
func (s *riskProfileService) HasRiskProfile(email string) (bool, error) {
	var count int64
	if err := s.db.Model(&models.RiskProfile{}).
		Where("user_email = ?", normalizeEmail(email)).
		Count(&count).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}
