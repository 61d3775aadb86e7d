package database

import (
	"context"
	"strings"

	"github.com/epitaphe360/cms-backend/models"
	"gorm.io/gorm"
)

// AuditQuery filters the audit trail. Empty fields are ignored.
type AuditQuery struct {
	EntityType string
	EntityID   string
	UserID     string
	Limit      int
	Offset     int
}

type AuditLogRepo struct {
	db *gorm.DB
}

func NewAuditLogRepo(db *gorm.DB) *AuditLogRepo {
	return &AuditLogRepo{db}
}

// Add appends an entry. Entries are never updated or deleted.
func (r *AuditLogRepo) Add(ctx context.Context, entry *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// List returns entries newest first together with the total match count.
func (r *AuditLogRepo) List(ctx context.Context, q AuditQuery) ([]models.AuditLog, int64, error) {
	bounded := ListQuery{Limit: q.Limit, Offset: q.Offset}.Bounded()

	tx := r.db.WithContext(ctx).Model(&models.AuditLog{})
	if v := strings.TrimSpace(q.EntityType); v != "" {
		tx = tx.Where("entity_type = ?", v)
	}
	if v := strings.TrimSpace(q.EntityID); v != "" {
		tx = tx.Where("entity_id = ?", v)
	}
	if v := strings.TrimSpace(q.UserID); v != "" {
		tx = tx.Where("user_id = ?", v)
	}

	var total int64
	if err := tx.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	entries := []models.AuditLog{}
	err := tx.Session(&gorm.Session{}).
		Order("created_at DESC").
		Limit(bounded.Limit).
		Offset(bounded.Offset).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
