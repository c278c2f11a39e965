package models

import "gorm.io/datatypes"

// AuditAction names a user operation worth keeping a trail of.
type AuditAction string

const (
	AuditRegister        AuditAction = "REGISTER"
	AuditDeleteAccount   AuditAction = "DELETE_ACCOUNT"
	AuditAddHolding      AuditAction = "ADD_HOLDING"
	AuditAddShares       AuditAction = "UPDATE_SHARES"
	AuditSetShares       AuditAction = "SET_SHARES"
	AuditSetBuyPrice     AuditAction = "SET_BUY_PRICE"
	AuditDeleteHolding   AuditAction = "DELETE_HOLDING"
	AuditSaveRiskProfile AuditAction = "SAVE_RISK_PROFILE"
)

// AuditLog is one entry of a user's operation trail. Entries outlive the
// user's portfolio data.
type AuditLog struct {
	Base
	UserEmail    string         `gorm:"not null;index" json:"user"`
	Action       AuditAction    `gorm:"not null" json:"action"`
	ResourceType string         `gorm:"not null" json:"resource_type"`
	ResourceID   string         `json:"resource_id"`
	IPAddress    string         `json:"ip_address"`
	Changes      datatypes.JSON `json:"changes,omitempty"`
}
