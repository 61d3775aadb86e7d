package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AuditAction string

const (
	AuditCreate AuditAction = "CREATE"
	AuditUpdate AuditAction = "UPDATE"
	AuditDelete AuditAction = "DELETE"
)

// AuditLog is an append-only record of a successful mutation. Changes holds
// {"created": ...}, {"before": ..., "after": ...} or {"deleted": ...}.
type AuditLog struct {
	ID         uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID      `json:"userId" gorm:"type:uuid;not null;index"`
	Action     AuditAction    `json:"action" gorm:"type:varchar(16);not null"`
	EntityType string         `json:"entityType" gorm:"type:varchar(64);not null;index:idx_audit_entity"`
	EntityID   uuid.UUID      `json:"entityId" gorm:"type:uuid;not null;index:idx_audit_entity"`
	Changes    datatypes.JSON `json:"changes"`
	CreatedAt  time.Time      `json:"createdAt" gorm:"not null;index"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
