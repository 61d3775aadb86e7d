package services

import (
	"github.com/epitaphe360/cms-backend/auth"
	"github.com/epitaphe360/cms-backend/database"
	"github.com/epitaphe360/cms-backend/models"
	"github.com/epitaphe360/cms-backend/storage"
)

type (
	Articles   = Resource[models.Article, *models.Article]
	Events     = Resource[models.Event, *models.Event]
	Categories = Resource[models.Category, *models.Category]
)

// Services bundles every service the HTTP layer calls.
type Services struct {
	Articles   *Articles
	Events     *Events
	Pages      *Pages
	Categories *Categories
	Media      *MediaService
	Users      *Users
	Documents  *DocumentService
	AuditLogs  *AuditLogs
	Auth       *auth.Authenticator
}

// New wires the services over one database. objects may be nil.
func New(db database.Database, objects storage.ObjectStore, tokens *auth.Tokens) *Services {
	audit := NewAuditRecorder(db.AuditLogRepo())
	pages := NewPages(db.PageRepo(), audit)

	return &Services{
		Articles:   NewResource[models.Article, *models.Article](db.ArticleRepo(), audit, "Article non trouvé"),
		Events:     NewResource[models.Event, *models.Event](db.EventRepo(), audit, "Événement non trouvé"),
		Pages:      pages,
		Categories: NewResource[models.Category, *models.Category](db.CategoryRepo(), audit, "Catégorie non trouvée"),
		Media:      NewMediaService(db.MediaRepo(), audit, objects),
		Users:      NewUsers(db.UserRepo(), audit),
		Documents:  NewDocumentService(pages),
		AuditLogs:  NewAuditLogs(db.AuditLogRepo()),
		Auth:       auth.NewAuthenticator(db.UserRepo(), tokens),
	}
}
