package api

import (
	"context"
	"net/http"

	"github.com/epitaphe360/cms-backend/auth"
	"github.com/epitaphe360/cms-backend/database"
	"github.com/epitaphe360/cms-backend/errs"
	"github.com/epitaphe360/cms-backend/models"
	"github.com/epitaphe360/cms-backend/services"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type crudService[T any, P services.Model[T]] interface {
	List(ctx context.Context, q database.ListQuery) (*services.ListResult[T], error)
	Get(ctx context.Context, id uuid.UUID) (P, error)
	Create(ctx context.Context, body []byte, actor auth.Actor) (P, error)
	Update(ctx context.Context, id uuid.UUID, body []byte, actor auth.Actor) (P, error)
	Delete(ctx context.Context, id uuid.UUID, actor auth.Actor) error
}

type statusService[P any] interface {
	SetStatus(ctx context.Context, id uuid.UUID, status models.Status, actor auth.Actor) (P, error)
}

// resourceHandler serves the admin CRUD endpoints of one entity type.
type resourceHandler[T any, P services.Model[T]] struct {
	responder Responder
	logger    zerolog.Logger
	service   crudService[T, P]
}

func newResourceHandler[T any, P services.Model[T]](name string, service crudService[T, P]) resourceHandler[T, P] {
	logger := log.With().Str("handlerName", name).Logger()

	return resourceHandler[T, P]{
		responder: NewResponder(logger),
		logger:    logger,
		service:   service,
	}
}

func (h resourceHandler[T, P]) actor(w http.ResponseWriter, r *http.Request) (auth.Actor, bool) {
	actor, ok := ctxGetActor(r.Context())
	if !ok {
		h.responder.WriteError(w, errs.SessionRequired)
	}
	return actor, ok
}

// list returns one page of records
// @Summary List records
// @Description Filters: status, search, limit (max 200), offset and the entity's own filters (categoryId, folder, type, template, role, mimeType)
// @Tags Admin
// @Produce json
// @Success 200 {object} map[string]interface{} "{data, total, limit, offset}"
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
func (h resourceHandler[T, P]) list() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := listQuery(r, P(new(T)).Listing())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		result, err := h.service.List(r.Context(), q)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, result)
	}
}

func (h resourceHandler[T, P]) get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		record, err := h.service.Get(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, record)
	}
}

// create validates and stores a new record
// @Summary Create record
// @Tags Admin
// @Accept json
// @Produce json
// @Success 201 {object} map[string]interface{} "Created record"
// @Failure 400 {object} ErrorResponse "Données invalides"
// @Failure 409 {object} ErrorResponse "Slug or email already used"
func (h resourceHandler[T, P]) create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := h.actor(w, r)
		if !ok {
			return
		}

		body, err := readBody(w, r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		record, err := h.service.Create(r.Context(), body, actor)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSONStatus(w, http.StatusCreated, record)
	}
}

// update merges the body over the stored record
// @Summary Update record
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Record ID" format(uuid)
// @Success 200 {object} map[string]interface{} "Updated record"
// @Failure 404 {object} ErrorResponse
func (h resourceHandler[T, P]) update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := h.actor(w, r)
		if !ok {
			return
		}

		id, err := idParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		body, err := readBody(w, r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		record, err := h.service.Update(r.Context(), id, body, actor)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, record)
	}
}

func (h resourceHandler[T, P]) delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := h.actor(w, r)
		if !ok {
			return
		}

		id, err := idParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.service.Delete(r.Context(), id, actor); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, DeleteResponse{Status: "success", ID: id.String()})
	}
}

// setStatus backs the publish and unpublish endpoints.
func (h resourceHandler[T, P]) setStatus(status models.Status) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setter, ok := h.service.(statusService[P])
		if !ok {
			h.responder.WriteError(w, errs.NewNotFoundError("Route inconnue"))
			return
		}

		actor, ok := h.actor(w, r)
		if !ok {
			return
		}

		id, err := idParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		record, err := setter.SetStatus(r.Context(), id, status, actor)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, record)
	}
}
