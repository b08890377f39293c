package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"journal-management-api/config"
	"journal-management-api/models"

	"gorm.io/gorm"
)

// AuditService writes audit-log rows. It is strictly fire-and-forget: a
// failed insert is logged and swallowed, never propagated to the pipeline.
type AuditService struct {
	db *gorm.DB
}

// NewAuditService constructs an AuditService.
func NewAuditService(db *gorm.DB) *AuditService {
	if db == nil {
		db = config.DB
	}
	return &AuditService{db: db}
}

// Record appends one audit row. Details are serialized to JSON; a nil map
// stores NULL.
func (s *AuditService) Record(ctx context.Context, userID int, action, entityType string, entityID *int, details map[string]interface{}) {
	entry := models.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		CreatedAt:  time.Now(),
	}

	if len(details) > 0 {
		serialized, err := json.Marshal(details)
		if err != nil {
			log.Printf("audit: failed to serialize details for %s/%s: %v", action, entityType, err)
		} else {
			payload := string(serialized)
			entry.Details = &payload
		}
	}

	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		log.Printf("audit: failed to record %s/%s: %v", action, entityType, err)
	}
}
