package services

import (
	"encoding/json"

	"vinvest/internal/logger"
	"vinvest/internal/metrics"
	"vinvest/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditEvent describes one operation for the audit trail.
type AuditEvent struct {
	Email        string
	Action       models.AuditAction
	ResourceType string
	ResourceID   string
	IPAddress    string
	Changes      map[string]interface{}
}

type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Log records an audit event. Failures are logged and counted but never
// returned, so the audited operation is unaffected.
func (s *auditService) Log(event AuditEvent) {
	log := logger.Named("audit")

	entry := &models.AuditLog{
		UserEmail:    event.Email,
		Action:       event.Action,
		ResourceType: event.ResourceType,
		ResourceID:   event.ResourceID,
		IPAddress:    event.IPAddress,
		Changes:      datatypes.JSON("{}"),
	}
	if event.Changes != nil {
		data, err := json.Marshal(event.Changes)
		if err != nil {
			log.Warnw("dropping unencodable audit changes", "action", event.Action, "error", err)
		} else {
			entry.Changes = datatypes.JSON(data)
		}
	}

	if err := s.db.Create(entry).Error; err != nil {
		metrics.AuditEntries.WithLabelValues(metrics.OutcomeError).Inc()
		log.Errorw("failed to write audit entry",
			"error", err,
			"user", event.Email,
			"action", event.Action,
			"resource_type", event.ResourceType,
		)
		return
	}
	metrics.AuditEntries.WithLabelValues(metrics.OutcomeOK).Inc()
}
