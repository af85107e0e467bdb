package services

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	"finbot/internal/logger"
	"finbot/internal/models"
)

// auditService writes audit rows tagged with the update that caused them.
type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Log records entry. Callers invoke it after their transaction commits; a
// failure here is logged and never turns a completed action into an error.
func (s *auditService) Log(ctx context.Context, entry AuditEntry) {
	log := logger.FromContext(ctx).With(
		"audit_action", entry.Action,
		"resource_type", entry.ResourceType,
		"resource_id", entry.ResourceID,
	)

	row := &models.AuditLog{
		UserID:        entry.UserID,
		Action:        entry.Action,
		ResourceType:  entry.ResourceType,
		ResourceID:    entry.ResourceID,
		CorrelationID: logger.CorrelationID(ctx),
	}
	if len(entry.Changes) > 0 {
		data, err := json.Marshal(entry.Changes)
		if err != nil {
			log.Warnw("audit changes not serializable", "error", err)
		} else {
			row.Changes = string(data)
		}
	}

	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		log.Errorw("failed to write audit entry", "user_id", entry.UserID, "error", err)
	}
}
