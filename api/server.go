package api

import (
	"context"
	"net/http"
	"time"

	"github.com/epitaphe360/cms-backend/config"
	"github.com/epitaphe360/cms-backend/services"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Server struct {
	*http.Server
	startupTime time.Time
}

func NewServer(cfg *config.Config, svc *services.Services) Server {
	startupTime := time.Now()

	server := &http.Server{
		Addr:         cfg.Address(),
		Handler:      NewRouter(cfg, svc),
		ReadTimeout:  cfg.ReadTimeoutDuration(),  // Timeout for reading the entire request
		WriteTimeout: cfg.WriteTimeoutDuration(), // Timeout for writing the response
		IdleTimeout:  cfg.IdleTimeoutDuration(),  // Timeout for idle connections
	}

	return Server{server, startupTime}
}

func NewRouter(cfg *config.Config, svc *services.Services) *chi.Mux {
	chiRouter := chi.NewRouter()
	chiRouter.Use(LogInternalServerErrors)

	requestLogger := log.With().Str("component", "http").Logger()
	if cfg.LogFormat == "console" {
		requestLogger = ConsoleLogger()
	}
	chiRouter.Use(HTTPLoggingMiddleware(requestLogger))

	chiRouter.Use(CORSCheckMiddleware(cfg.AcceptedOrigins))
	chiRouter.Use(corsMiddleware(cfg.AcceptedOrigins))

	handlers := initializeHandlers(svc, cfg.MaxUploadMB)
	authMiddleware := newAuthMiddleware(svc.Auth)

	setupOperationalRoutes(chiRouter)
	chiRouter.Route("/api", func(r chi.Router) {
		r.Route("/admin", func(r chi.Router) { setupAdminRoutes(r, handlers, authMiddleware) })
		r.Route("/grapes", func(r chi.Router) { setupGrapesRoutes(r, handlers, authMiddleware) })
		setupPublicRoutes(r, handlers, svc)
	})

	responder := NewResponder(log.Logger)
	chiRouter.NotFound(func(w http.ResponseWriter, r *http.Request) {
		responder.WriteJSONStatus(w, http.StatusNotFound, ErrorResponse{Error: "Route inconnue", Status: "error"})
	})
	chiRouter.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		responder.WriteJSONStatus(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "Méthode non autorisée", Status: "error"})
	})

	return chiRouter
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Dur("uptime", time.Since(s.startupTime)).Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}
}
