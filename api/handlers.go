package api

import (
	"github.com/epitaphe360/cms-backend/models"
	"github.com/epitaphe360/cms-backend/services"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(svc *services.Services, maxUploadMB int64) *routeHandlers {
	return &routeHandlers{
		authHandler:     newAuthHandler(svc.Auth, svc.Users),
		articleHandler:  newResourceHandler[models.Article, *models.Article]("articleHandler", svc.Articles),
		eventHandler:    newResourceHandler[models.Event, *models.Event]("eventHandler", svc.Events),
		pageHandler:     newResourceHandler[models.Page, *models.Page]("pageHandler", svc.Pages),
		categoryHandler: newResourceHandler[models.Category, *models.Category]("categoryHandler", svc.Categories),
		mediaHandler:    newMediaHandler(svc.Media, maxUploadMB),
		userHandler:     newResourceHandler[models.User, *models.User]("userHandler", svc.Users),
		auditHandler:    newAuditHandler(svc.AuditLogs),
		grapesHandler:   newGrapesHandler(svc.Documents),
		publicHandler:   newPublicHandler(),
	}
}
