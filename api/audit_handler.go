package api

import (
	"net/http"

	"github.com/epitaphe360/cms-backend/database"
	"github.com/epitaphe360/cms-backend/errs"
	"github.com/epitaphe360/cms-backend/services"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type auditHandler struct {
	responder Responder
	logger    zerolog.Logger
	auditLogs *services.AuditLogs
}

func newAuditHandler(auditLogs *services.AuditLogs) auditHandler {
	logger := log.With().Str("handlerName", "auditHandler").Logger()

	return auditHandler{
		responder: NewResponder(logger),
		logger:    logger,
		auditLogs: auditLogs,
	}
}

// list returns audit entries, newest first
// @Summary List audit log
// @Tags Admin
// @Produce json
// @Param entityType query string false "article, event, page, category, media, user"
// @Param entityId query string false "Entity ID" format(uuid)
// @Param userId query string false "Actor ID" format(uuid)
// @Success 200 {object} map[string]interface{} "{data, total, limit, offset}"
// @Failure 403 {object} ErrorResponse
// @Router /api/admin/audit-logs [get]
func (h auditHandler) list() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := intParam(r, "limit")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		offset, err := intParam(r, "offset")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		q := r.URL.Query()
		for _, param := range []string{"entityId", "userId"} {
			if v := q.Get(param); v != "" {
				if _, err := uuid.Parse(v); err != nil {
					h.responder.WriteError(w, errs.NewBadRequestErrorWithField("Paramètre invalide", param, param+": doit être un UUID."))
					return
				}
			}
		}

		result, err := h.auditLogs.List(r.Context(), database.AuditQuery{
			EntityType: q.Get("entityType"),
			EntityID:   q.Get("entityId"),
			UserID:     q.Get("userId"),
			Limit:      limit,
			Offset:     offset,
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, result)
	}
}
