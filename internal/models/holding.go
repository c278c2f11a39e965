package models

import "github.com/shopspring/decimal"

// Holding is a user's position in one symbol.
type Holding struct {
	Base
	UserEmail string          `gorm:"not null;uniqueIndex:idx_holdings_user_symbol" json:"user"`
	Symbol    string          `gorm:"not null;uniqueIndex:idx_holdings_user_symbol" json:"symbol"`
	Name      string          `json:"name"`
	Category  string          `json:"sector"`
	Shares    decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"shares"`
	BuyPrice  decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"buyPrice"`
}

// HoldingMeta carries the descriptive fields stored when a symbol is first added.
type HoldingMeta struct {
	Name     string
	Category string
	BuyPrice decimal.Decimal
}
