package api

import "github.com/epitaphe360/cms-backend/models"

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	authHandler     authHandler
	articleHandler  resourceHandler[models.Article, *models.Article]
	eventHandler    resourceHandler[models.Event, *models.Event]
	pageHandler     resourceHandler[models.Page, *models.Page]
	categoryHandler resourceHandler[models.Category, *models.Category]
	mediaHandler    mediaHandler
	userHandler     resourceHandler[models.User, *models.User]
	auditHandler    auditHandler
	grapesHandler   grapesHandler
	publicHandler   publicHandler
}

// ErrorResponse represents an error response from the API
// @Description Error response structure
type ErrorResponse struct {
	Error   string `json:"error" example:"Article non trouvé"`
	Status  string `json:"status" example:"error"`
	Field   string `json:"field,omitempty" example:"title"`
	Details string `json:"details,omitempty" example:"title: le titre est requis."`
}

// DeleteResponse is returned by every delete endpoint.
type DeleteResponse struct {
	Status string `json:"status" example:"success"`
	ID     string `json:"id"`
}
