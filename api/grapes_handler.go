package api

import (
	"encoding/json"
	"net/http"

	"github.com/epitaphe360/cms-backend/editor"
	"github.com/epitaphe360/cms-backend/errs"
	"github.com/epitaphe360/cms-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// grapesHandler serves pages to the visual editor as documents.
type grapesHandler struct {
	responder Responder
	logger    zerolog.Logger
	documents *services.DocumentService
}

func newGrapesHandler(documents *services.DocumentService) grapesHandler {
	logger := log.With().Str("handlerName", "grapesHandler").Logger()

	return grapesHandler{
		responder: NewResponder(logger),
		logger:    logger,
		documents: documents,
	}
}

func (h grapesHandler) decode(w http.ResponseWriter, r *http.Request) (editor.Document, bool) {
	body, err := readBody(w, r)
	if err != nil {
		h.responder.WriteError(w, err)
		return editor.Document{}, false
	}

	var doc editor.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		h.responder.WriteError(w, errs.NewBadRequestErrorWithField("Corps de requête invalide", "body", err.Error()))
		return editor.Document{}, false
	}
	return doc, true
}

// @Summary List editor documents
// @Tags Grapes
// @Produce json
// @Success 200 {array} editor.Document
// @Router /api/grapes/pages [get]
func (h grapesHandler) list() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docs, err := h.documents.List(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, docs)
	}
}

func (h grapesHandler) get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		doc, err := h.documents.Get(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, doc)
	}
}

// byPath is public and only serves published pages
// @Summary Published document by path
// @Tags Grapes
// @Produce json
// @Param path query string true "Page path, e.g. /contact"
// @Success 200 {object} editor.Document
// @Failure 404 {object} ErrorResponse "Page non trouvée"
// @Router /api/grapes/pages/by-path [get]
func (h grapesHandler) byPath() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := h.documents.ByPath(r.Context(), r.URL.Query().Get("path"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, doc)
	}
}

func (h grapesHandler) create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ctxGetActor(r.Context())
		if !ok {
			h.responder.WriteError(w, errs.SessionRequired)
			return
		}

		doc, ok := h.decode(w, r)
		if !ok {
			return
		}

		created, err := h.documents.Create(r.Context(), doc, actor)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSONStatus(w, http.StatusCreated, created)
	}
}

func (h grapesHandler) update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ctxGetActor(r.Context())
		if !ok {
			h.responder.WriteError(w, errs.SessionRequired)
			return
		}

		id, err := idParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		doc, ok := h.decode(w, r)
		if !ok {
			return
		}

		updated, err := h.documents.Update(r.Context(), id, doc, actor)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, updated)
	}
}

func (h grapesHandler) delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ctxGetActor(r.Context())
		if !ok {
			h.responder.WriteError(w, errs.SessionRequired)
			return
		}

		id, err := idParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.documents.Delete(r.Context(), id, actor); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, DeleteResponse{Status: "success", ID: id.String()})
	}
}
