package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/epitaphe360/cms-backend/auth"
	"github.com/epitaphe360/cms-backend/database"
	"github.com/epitaphe360/cms-backend/errs"
	"github.com/epitaphe360/cms-backend/metrics"
	"github.com/epitaphe360/cms-backend/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

const auditWriteTimeout = 5 * time.Second

// AuditStore is the append-only sink for audit entries.
type AuditStore interface {
	Add(ctx context.Context, entry *models.AuditLog) error
}

// AuditRecorder writes one entry per successful mutation. A failed write is
// logged and counted; the mutation it describes stands.
type AuditRecorder struct {
	store AuditStore
	now   func() time.Time
}

func NewAuditRecorder(store AuditStore) *AuditRecorder {
	return &AuditRecorder{store: store, now: time.Now}
}

func (a *AuditRecorder) Created(ctx context.Context, actor auth.Actor, entityType string, id uuid.UUID, record any) {
	a.record(ctx, actor, models.AuditCreate, entityType, id, map[string]any{"created": record})
}

func (a *AuditRecorder) Updated(ctx context.Context, actor auth.Actor, entityType string, id uuid.UUID, before, after any) {
	a.record(ctx, actor, models.AuditUpdate, entityType, id, map[string]any{"before": before, "after": after})
}

func (a *AuditRecorder) Deleted(ctx context.Context, actor auth.Actor, entityType string, id uuid.UUID, record any) {
	a.record(ctx, actor, models.AuditDelete, entityType, id, map[string]any{"deleted": record})
}

func (a *AuditRecorder) record(ctx context.Context, actor auth.Actor, action models.AuditAction, entityType string, id uuid.UUID, changes map[string]any) {
	metrics.Mutations.WithLabelValues(entityType, string(action)).Inc()

	logger := log.With().
		Str("entityType", entityType).
		Str("entityId", id.String()).
		Str("action", string(action)).
		Str("userId", actor.UserID.String()).
		Logger()

	payload, err := json.Marshal(changes)
	if err != nil {
		metrics.AuditWriteFailures.WithLabelValues(entityType, string(action)).Inc()
		logger.Error().Err(err).Msg("Failed to encode audit changes")
		return
	}

	entry := &models.AuditLog{
		UserID:     actor.UserID,
		Action:     action,
		EntityType: entityType,
		EntityID:   id,
		Changes:    datatypes.JSON(payload),
		CreatedAt:  a.now(),
	}

	// The request may already be cancelled; the entry is still owed.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditWriteTimeout)
	defer cancel()

	if err := a.store.Add(writeCtx, entry); err != nil {
		metrics.AuditWriteFailures.WithLabelValues(entityType, string(action)).Inc()
		logger.Error().Err(err).Msg("Failed to write audit entry")
	}
}

// AuditLogs is the read side of the audit trail.
type AuditLogs struct {
	repo *database.AuditLogRepo
}

func NewAuditLogs(repo *database.AuditLogRepo) *AuditLogs {
	return &AuditLogs{repo: repo}
}

func (a *AuditLogs) List(ctx context.Context, q database.AuditQuery) (*ListResult[models.AuditLog], error) {
	bounded := database.ListQuery{Limit: q.Limit, Offset: q.Offset}.Bounded()
	q.Limit, q.Offset = bounded.Limit, bounded.Offset

	entries, total, err := a.repo.List(ctx, q)
	if err != nil {
		log.Error().Err(err).Str("entityType", "audit_log").Str("operation", "list").Msg("Store operation failed")
		return nil, errs.NewInternalErrorWithCause(internalMessage, err)
	}
	return &ListResult[models.AuditLog]{Data: entries, Total: total, Limit: q.Limit, Offset: q.Offset}, nil
}
