package api

import (
	"errors"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/epitaphe360/cms-backend/database"
	"github.com/epitaphe360/cms-backend/errs"
	"github.com/epitaphe360/cms-backend/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxJSONBody = 1 << 20

// readBody reads a JSON request body with a size cap.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, errs.NewMaxBodySizeExceededError(maxErr.Limit)
		}
		return nil, errs.NewBadRequestError("Impossible de lire le corps de la requête")
	}
	return body, nil
}

func idParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, errs.NewBadRequestErrorWithField("Identifiant invalide", "id", "id: doit être un UUID.")
	}
	return id, nil
}

func intParam(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errs.NewBadRequestErrorWithField("Paramètre invalide", name, name+": doit être un entier positif.")
	}
	return n, nil
}

// listQuery reads status, search, limit, offset and the listing's filters.
// uuid filters are parsed here so a malformed value never reaches the store.
func listQuery(r *http.Request, listing models.Listing) (database.ListQuery, error) {
	limit, err := intParam(r, "limit")
	if err != nil {
		return database.ListQuery{}, err
	}
	offset, err := intParam(r, "offset")
	if err != nil {
		return database.ListQuery{}, err
	}

	q := r.URL.Query()
	lq := database.ListQuery{
		Status:  q.Get("status"),
		Search:  q.Get("search"),
		Limit:   limit,
		Offset:  offset,
		Filters: map[string]string{},
	}
	for param := range listing.Filters {
		v := strings.TrimSpace(q.Get(param))
		if v == "" {
			continue
		}
		if slices.Contains(listing.UUIDFilters, param) {
			id, err := uuid.Parse(v)
			if err != nil {
				return database.ListQuery{}, errs.NewBadRequestErrorWithField("Paramètre invalide", param, param+": doit être un UUID.")
			}
			v = id.String()
		}
		lq.Filters[param] = v
	}
	return lq, nil
}
