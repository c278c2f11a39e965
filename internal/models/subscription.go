package models

import "time"

// Subscription lifts the free-tier holding quota while active.
type Subscription struct {
	Base
	UserEmail string     `gorm:"uniqueIndex;not null" json:"user"`
	Active    bool       `gorm:"not null;default:false" json:"active"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// IsActive reports whether the subscription is in force at now.
func (s *Subscription) IsActive(now time.Time) bool {
	if s == nil || !s.Active {
		return false
	}
	return s.ExpiresAt == nil || s.ExpiresAt.After(now)
}
