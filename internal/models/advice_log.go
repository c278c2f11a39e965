package models

import (
	"time"

	"vinvest/internal/uuid"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AdviceLog is an append-only record of generated advice. Context keeps the
// holdings and news summary the model was given.
type AdviceLog struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	UserEmail string         `gorm:"not null;index:idx_advice_logs_user_created,priority:1" json:"user"`
	Advice    string         `gorm:"type:text;not null" json:"advice"`
	Context   datatypes.JSON `gorm:"not null" json:"context,omitempty"`
	CreatedAt time.Time      `gorm:"not null;index:idx_advice_logs_user_created,priority:2" json:"created_at"`
}

// BeforeCreate assigns a UUIDv7 and an empty context object when unset.
func (a *AdviceLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New()
	}
	if len(a.Context) == 0 {
		a.Context = datatypes.JSON("{}")
	}
	return nil
}
