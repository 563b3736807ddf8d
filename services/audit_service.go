package services

import (
	"encoding/json"
	"log"

	"github.com/Codewithswappy/UMSystem-sub001/model"
	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditService writes the admin action trail. Recording is best-effort: a
// failed audit write is logged but never fails the action it describes.
type AuditService struct {
	db *gorm.DB
}

// NewAuditService creates an audit service
func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// Record writes one audit row for an admin action. oldValue and newValue may
// be nil; anything JSON-marshalable is accepted.
func (s *AuditService) Record(c *fiber.Ctx, adminID uint, action, resource string, resourceID uint, oldValue, newValue interface{}, description string) {
	entry := model.AdminAuditLog{
		AdminID:     adminID,
		Action:      action,
		Resource:    resource,
		ResourceID:  resourceID,
		IPAddress:   c.IP(),
		UserAgent:   c.Get("User-Agent"),
		Description: description,
	}

	if oldValue != nil {
		if data, err := json.Marshal(oldValue); err == nil {
			entry.OldValue = datatypes.JSON(data)
		}
	}
	if newValue != nil {
		if data, err := json.Marshal(newValue); err == nil {
			entry.NewValue = datatypes.JSON(data)
		}
	}

	if err := s.db.WithContext(c.Context()).Create(&entry).Error; err != nil {
		log.Printf("[audit] failed to record %s on %s/%d: %v", action, resource, resourceID, err)
	}
}
