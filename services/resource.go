package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/epitaphe360/cms-backend/auth"
	"github.com/epitaphe360/cms-backend/database"
	"github.com/epitaphe360/cms-backend/errs"
	"github.com/epitaphe360/cms-backend/models"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const internalMessage = "Erreur interne du serveur"

// Store is the persistence a Resource needs. *database.Repo satisfies it.
type Store[T any] interface {
	List(ctx context.Context, q database.ListQuery) ([]T, int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*T, error)
	FindBy(ctx context.Context, column string, value any) (*T, error)
	Add(ctx context.Context, record *T) error
	Update(ctx context.Context, record *T) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Model is the pointer type of a managed entity.
type Model[T any] interface {
	*T
	models.Entity
	Normalize()
	Validate() error
}

// Hook runs after validation and before the write. before is nil on create.
type Hook[P any] func(ctx context.Context, record, before P, actor auth.Actor) error

// DeleteGuard may refuse a delete after the record has been loaded.
type DeleteGuard[P any] func(ctx context.Context, existing P, actor auth.Actor) error

type recordHolder interface {
	RecordFields() *models.Record
}

type baseHolder interface {
	BaseFields() *models.Base
}

type derivedHolder interface {
	ResetDerived()
}

// ListResult is one page of a list.
type ListResult[T any] struct {
	Data   []T   `json:"data"`
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// Resource is the audited CRUD service for one entity type.
type Resource[T any, P Model[T]] struct {
	store    Store[T]
	audit    *AuditRecorder
	notFound string
	hooks    []Hook[P]
	guards   []DeleteGuard[P]
	now      func() time.Time
}

// NewResource wires a store to the audit trail. notFound is the message
// returned when an id does not exist.
func NewResource[T any, P Model[T]](store Store[T], audit *AuditRecorder, notFound string) *Resource[T, P] {
	return &Resource[T, P]{
		store:    store,
		audit:    audit,
		notFound: notFound,
		now:      time.Now,
	}
}

func (r *Resource[T, P]) WithHooks(hooks ...Hook[P]) *Resource[T, P] {
	r.hooks = append(r.hooks, hooks...)
	return r
}

func (r *Resource[T, P]) WithDeleteGuard(guards ...DeleteGuard[P]) *Resource[T, P] {
	r.guards = append(r.guards, guards...)
	return r
}

func (r *Resource[T, P]) WithClock(now func() time.Time) *Resource[T, P] {
	r.now = now
	return r
}

func (r *Resource[T, P]) entityType() string {
	return P(new(T)).EntityType()
}

func (r *Resource[T, P]) List(ctx context.Context, q database.ListQuery) (*ListResult[T], error) {
	q = q.Bounded()
	rows, total, err := r.store.List(ctx, q)
	if err != nil {
		return nil, r.storeError(err, "list", uuid.Nil)
	}
	return &ListResult[T]{Data: rows, Total: total, Limit: q.Limit, Offset: q.Offset}, nil
}

func (r *Resource[T, P]) Get(ctx context.Context, id uuid.UUID) (P, error) {
	record, err := r.store.FindByID(ctx, id)
	if err != nil {
		return nil, r.storeError(err, "get", id)
	}
	return record, nil
}

// FindBy looks a record up by an arbitrary column, typically the slug.
func (r *Resource[T, P]) FindBy(ctx context.Context, column string, value any) (P, error) {
	record, err := r.store.FindBy(ctx, column, value)
	if err != nil {
		return nil, r.storeError(err, "find", uuid.Nil)
	}
	return record, nil
}

func (r *Resource[T, P]) Create(ctx context.Context, body []byte, actor auth.Actor) (P, error) {
	if _, err := decodeObject(body); err != nil {
		return nil, err
	}

	record := P(new(T))
	if err := json.Unmarshal(body, record); err != nil {
		return nil, decodeError(err)
	}
	return r.Insert(ctx, record, actor)
}

// Insert creates a record built in code rather than decoded from a request.
func (r *Resource[T, P]) Insert(ctx context.Context, record P, actor auth.Actor) (P, error) {
	if b, ok := any(record).(baseHolder); ok {
		*b.BaseFields() = models.Base{}
	}
	if rec, ok := any(record).(recordHolder); ok {
		fields := rec.RecordFields()
		fields.AuthorID = actor.UserID
		fields.PublishedAt = nil
	}

	if err := r.prepare(ctx, record, nil, actor); err != nil {
		return nil, err
	}
	r.stampPublished(record)

	if err := r.store.Add(ctx, (*T)(record)); err != nil {
		return nil, r.storeError(err, "create", record.GetID())
	}

	r.audit.Created(ctx, actor, record.EntityType(), record.GetID(), record)
	return record, nil
}

// Update applies body as a JSON merge over the stored record. Keys that are
// absent keep their stored value; sections are merged key by key.
func (r *Resource[T, P]) Update(ctx context.Context, id uuid.UUID, body []byte, actor auth.Actor) (P, error) {
	keys, err := decodeObject(body)
	if err != nil {
		return nil, err
	}

	existing, err := r.store.FindByID(ctx, id)
	if err != nil {
		return nil, r.storeError(err, "update", id)
	}
	before, err := json.Marshal(existing)
	if err != nil {
		return nil, errs.NewInternalErrorWithCause(internalMessage, err)
	}

	patched := *existing
	record := P(&patched)
	if rec, ok := any(record).(recordHolder); ok {
		rec.RecordFields().Sections = nil
	}
	if d, ok := any(record).(derivedHolder); ok {
		d.ResetDerived()
	}
	if err := json.Unmarshal(body, record); err != nil {
		return nil, decodeError(err)
	}

	prev := P(existing)
	if b, ok := any(record).(baseHolder); ok {
		*b.BaseFields() = *any(prev).(baseHolder).BaseFields()
	}
	if rec, ok := any(record).(recordHolder); ok {
		fields, old := rec.RecordFields(), any(prev).(recordHolder).RecordFields()
		fields.AuthorID = old.AuthorID
		fields.PublishedAt = old.PublishedAt
		if _, sent := keys["sections"]; sent {
			fields.Sections = models.MergeSections(old.Sections, fields.Sections)
		} else {
			fields.Sections = old.Sections
		}
	}

	if err := r.prepare(ctx, record, prev, actor); err != nil {
		return nil, err
	}
	r.stampPublished(record)

	if err := r.store.Update(ctx, (*T)(record)); err != nil {
		return nil, r.storeError(err, "update", id)
	}

	saved, err := r.store.FindByID(ctx, id)
	if err != nil {
		return nil, r.storeError(err, "reload", id)
	}

	r.audit.Updated(ctx, actor, record.EntityType(), id, json.RawMessage(before), P(saved))
	return saved, nil
}

// SetStatus is the publish/unpublish shortcut.
func (r *Resource[T, P]) SetStatus(ctx context.Context, id uuid.UUID, status models.Status, actor auth.Actor) (P, error) {
	body, err := json.Marshal(map[string]models.Status{"status": status})
	if err != nil {
		return nil, errs.NewInternalErrorWithCause(internalMessage, err)
	}
	return r.Update(ctx, id, body, actor)
}

// Delete loads the record first so a missing id produces no audit entry.
func (r *Resource[T, P]) Delete(ctx context.Context, id uuid.UUID, actor auth.Actor) error {
	existing, err := r.store.FindByID(ctx, id)
	if err != nil {
		return r.storeError(err, "delete", id)
	}

	for _, guard := range r.guards {
		if err := guard(ctx, existing, actor); err != nil {
			return err
		}
	}

	if err := r.store.Delete(ctx, id); err != nil {
		return r.storeError(err, "delete", id)
	}

	r.audit.Deleted(ctx, actor, r.entityType(), id, P(existing))
	return nil
}

func (r *Resource[T, P]) prepare(ctx context.Context, record, before P, actor auth.Actor) error {
	record.Normalize()
	if err := record.Validate(); err != nil {
		return validationError(err)
	}
	for _, hook := range r.hooks {
		if err := hook(ctx, record, before, actor); err != nil {
			var apiErr *errs.ApiErr
			if errors.As(err, &apiErr) {
				return err
			}
			return r.storeError(err, "prepare", record.GetID())
		}
	}
	return nil
}

// stampPublished sets publishedAt the first time a record is published.
func (r *Resource[T, P]) stampPublished(record P) {
	rec, ok := any(record).(recordHolder)
	if !ok {
		return
	}
	fields := rec.RecordFields()
	if fields.IsPublished() && fields.PublishedAt == nil {
		now := r.now()
		fields.PublishedAt = &now
	}
}

func (r *Resource[T, P]) storeError(err error, operation string, id uuid.UUID) error {
	apiErr := errs.NewDatabaseError(operation, r.notFound, err)
	if apiErr.StatusCode >= http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("entityType", r.entityType()).
			Str("operation", operation).
			Str("id", id.String()).
			Msg("Store operation failed")
	}
	return apiErr
}

// decodeObject checks that body is a JSON object and returns its keys.
func decodeObject(body []byte) (map[string]json.RawMessage, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(body, &keys); err != nil {
		return nil, decodeError(err)
	}
	if keys == nil {
		return nil, errs.NewBadRequestErrorWithField("Corps de requête invalide", "body", "expected a JSON object")
	}
	return keys, nil
}

func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return errs.NewBadRequestErrorWithField("Données invalides", typeErr.Field, err.Error())
	}
	var apiErr *errs.ApiErr
	if errors.As(err, &apiErr) {
		return err
	}
	return errs.NewBadRequestErrorWithField("Corps de requête invalide", "body", err.Error())
}

// validationError reports the first failing field in key order.
func validationError(err error) error {
	var verrs validation.Errors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fields := make([]string, 0, len(verrs))
		for field := range verrs {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		return errs.NewBadRequestErrorWithField("Données invalides", fields[0], verrs.Error())
	}

	var internal validation.InternalError
	if errors.As(err, &internal) {
		return errs.NewInternalErrorWithCause(internalMessage, err)
	}
	return errs.NewBadRequestError(err.Error())
}
