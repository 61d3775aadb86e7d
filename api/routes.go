package api

import (
	"net/http"

	"github.com/epitaphe360/cms-backend/metrics"
	"github.com/epitaphe360/cms-backend/models"
	"github.com/epitaphe360/cms-backend/services"
	"github.com/go-chi/chi/v5"
)

func mountResource[T any, P services.Model[T]](r chi.Router, h resourceHandler[T, P]) {
	r.Get("/", h.list())
	r.Post("/", h.create())
	r.Get("/{id}", h.get())
	r.Put("/{id}", h.update())
	r.Delete("/{id}", h.delete())
}

func mountPublishable[T any, P services.Model[T]](r chi.Router, h resourceHandler[T, P]) {
	mountResource(r, h)
	r.Post("/{id}/publish", h.setStatus(models.StatusPublished))
	r.Post("/{id}/unpublish", h.setStatus(models.StatusDraft))
}

// setupAdminRoutes mounts /api/admin. Everything but login needs a session;
// users and the audit log need an administrator.
func setupAdminRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware) {
	r.Post("/login", handlers.authHandler.login())

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.authenticate)

		r.Get("/me", handlers.authHandler.me())

		r.Route("/articles", func(r chi.Router) { mountPublishable(r, handlers.articleHandler) })
		r.Route("/events", func(r chi.Router) { mountPublishable(r, handlers.eventHandler) })
		r.Route("/pages", func(r chi.Router) { mountPublishable(r, handlers.pageHandler) })
		r.Route("/categories", func(r chi.Router) { mountResource(r, handlers.categoryHandler) })
		r.Route("/media", func(r chi.Router) {
			r.Post("/upload", handlers.mediaHandler.upload())
			mountResource(r, handlers.mediaHandler.resourceHandler)
		})

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.requireAdmin)

			r.Route("/users", func(r chi.Router) { mountResource(r, handlers.userHandler) })
			r.Get("/audit-logs", handlers.auditHandler.list())
		})
	})
}

// setupGrapesRoutes mounts the visual editor API. by-path is public.
func setupGrapesRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware) {
	r.Get("/pages/by-path", handlers.grapesHandler.byPath())

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.authenticate)

		r.Get("/pages", handlers.grapesHandler.list())
		r.Post("/pages", handlers.grapesHandler.create())
		r.Get("/pages/{id}", handlers.grapesHandler.get())
		r.Put("/pages/{id}", handlers.grapesHandler.update())
		r.Delete("/pages/{id}", handlers.grapesHandler.delete())
	})
}

func setupPublicRoutes(r chi.Router, handlers *routeHandlers, svc *services.Services) {
	h := handlers.publicHandler
	r.Get("/pages", publicList[models.Page](h, svc.Pages))
	r.Get("/articles", publicList[models.Article](h, svc.Articles))
	r.Get("/events", publicList[models.Event](h, svc.Events))
	r.Get("/categories", publicList[models.Category](h, svc.Categories))
	r.Get("/media", publicList[models.Media](h, svc.Media))
}

func setupOperationalRoutes(r chi.Router) {
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", metrics.Handler())
}
