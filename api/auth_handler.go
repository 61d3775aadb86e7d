package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/epitaphe360/cms-backend/auth"
	"github.com/epitaphe360/cms-backend/errs"
	"github.com/epitaphe360/cms-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type authHandler struct {
	responder     Responder
	logger        zerolog.Logger
	authenticator *auth.Authenticator
	users         *services.Users
}

func newAuthHandler(authenticator *auth.Authenticator, users *services.Users) authHandler {
	logger := log.With().Str("handlerName", "authHandler").Logger()

	return authHandler{
		responder:     NewResponder(logger),
		logger:        logger,
		authenticator: authenticator,
		users:         users,
	}
}

// LoginRequest is the body of POST /api/admin/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// login issues a session token
// @Summary Log in
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Email and password"
// @Success 200 {object} auth.Session
// @Failure 401 {object} ErrorResponse "Identifiants invalides"
// @Router /api/admin/login [post]
func (h authHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := readBody(w, r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req LoginRequest
		if err := json.Unmarshal(body, &req); err != nil {
			h.responder.WriteError(w, errs.Malformed("login request"))
			return
		}
		if strings.TrimSpace(req.Email) == "" || req.Password == "" {
			h.responder.WriteError(w, errs.InvalidCredentials)
			return
		}

		session, err := h.authenticator.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.logger.Info().Str("userId", session.User.ID.String()).Msg("User logged in")
		h.responder.WriteJSON(w, session)
	}
}

// me returns the profile of the token's owner
// @Summary Current user
// @Tags Auth
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} ErrorResponse
// @Router /api/admin/me [get]
func (h authHandler) me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ctxGetActor(r.Context())
		if !ok {
			h.responder.WriteError(w, errs.SessionRequired)
			return
		}

		user, err := h.users.Get(r.Context(), actor.UserID)
		if err != nil {
			if errs.IsNotFound(err) {
				// token outlived its account
				h.responder.WriteError(w, errs.SessionRequired)
				return
			}
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, user)
	}
}
