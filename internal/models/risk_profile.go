package models

// RiskProfile stores a user's questionnaire answers.
type RiskProfile struct {
	Base
	UserEmail           string `gorm:"uniqueIndex;not null" json:"-"`
	Age                 string `json:"age"`
	InvestmentGoal      string `json:"investmentGoal"`
	InvestmentTime      string `json:"investmentTime"`
	ReactionToMarket    string `json:"reactionToMarket"`
	NetWorth            string `json:"netWorth"`
	FundAccess          string `json:"fundAccess"`
	EconomicOutlook     string `json:"economicOutlook"`
	FinancialSituation  string `json:"financialSituation"`
	FinancialObligation string `json:"financialObligation"`
}
