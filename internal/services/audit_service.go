package services

import (
	"encoding/json"
	"strings"

	"gorm.io/gorm"

	"cortex/internal/logger"
	"cortex/internal/models"
)

// redactedKeys are change fields whose values never reach the audit table.
var redactedKeys = map[string]bool{
	"code":  true,
	"phone": true,
	"email": true,
	"token": true,
}

type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Record stores an audit event. Failures are logged and swallowed so that
// auditing never breaks the operation being audited.
func (s *auditService) Record(event AuditEvent) {
	entry := &models.AuditLog{
		UserID:       event.UserID,
		Action:       event.Action,
		ResourceType: event.ResourceType,
		ResourceID:   event.ResourceID,
		IPAddress:    event.IPAddress,
		Changes:      encodeChanges(event.Changes),
	}
	if err := s.db.Create(entry).Error; err != nil {
		logger.Get().Errorw("failed to record audit event",
			"error", err,
			"user_id", event.UserID,
			"action", event.Action,
			"resource_type", event.ResourceType,
			"resource_id", event.ResourceID,
		)
	}
}

func encodeChanges(changes map[string]interface{}) string {
	if len(changes) == 0 {
		return ""
	}
	safe := make(map[string]interface{}, len(changes))
	for k, v := range changes {
		if redactedKeys[strings.ToLower(k)] {
			v = "[redacted]"
		}
		safe[k] = v
	}
	data, err := json.Marshal(safe)
	if err != nil {
		logger.Get().Warnw("audit changes are not serializable", "error", err)
		return "{}"
	}
	return string(data)
}
