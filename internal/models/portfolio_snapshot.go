package models

import (
	"time"

	"vinvest/internal/uuid"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PortfolioSnapshot represents a point-in-time total of a user's holdings.
// This is immutable time-series data with no Base embed.
type PortfolioSnapshot struct {
	ID         string          `gorm:"type:uuid;primaryKey" json:"id"`
	UserEmail  string          `gorm:"not null;index" json:"user"`
	TotalValue decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"total_value"`
	RecordedAt time.Time       `gorm:"not null;index" json:"timestamp"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (p *PortfolioSnapshot) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New()
	}
	return nil
}
