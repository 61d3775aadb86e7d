package api

import (
	"context"
	"net/http"

	"github.com/epitaphe360/cms-backend/database"
	"github.com/epitaphe360/cms-backend/models"
	"github.com/epitaphe360/cms-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type lister[T any] interface {
	List(ctx context.Context, q database.ListQuery) (*services.ListResult[T], error)
}

// publicHandler serves the read-only lists the marketing site consumes.
type publicHandler struct {
	responder Responder
	logger    zerolog.Logger
}

func newPublicHandler() publicHandler {
	logger := log.With().Str("handlerName", "publicHandler").Logger()

	return publicHandler{
		responder: NewResponder(logger),
		logger:    logger,
	}
}

// publicList returns {data, total}. Entities with a status only expose
// published rows, whatever the query asks for.
func publicList[T any, P services.Model[T]](h publicHandler, service lister[T]) http.HandlerFunc {
	listing := P(new(T)).Listing()

	return func(w http.ResponseWriter, r *http.Request) {
		q, err := listQuery(r, listing)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if listing.HasStatus {
			q.Status = string(models.StatusPublished)
		}

		result, err := service.List(r.Context(), q)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, result)
	}
}
