package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/epitaphe360/cms-backend/auth"
	"github.com/epitaphe360/cms-backend/database"
	"github.com/epitaphe360/cms-backend/editor"
	"github.com/epitaphe360/cms-backend/errs"
	"github.com/epitaphe360/cms-backend/models"
	"github.com/google/uuid"
)

type Pages = Resource[models.Page, *models.Page]

func NewPages(store Store[models.Page], audit *AuditRecorder) *Pages {
	return NewResource[models.Page, *models.Page](store, audit, "Page non trouvée")
}

// DocumentService serves pages in the visual editor's document shape. All
// writes go through the page resource and are audited there.
type DocumentService struct {
	pages *Pages
	now   func() time.Time
}

func NewDocumentService(pages *Pages) *DocumentService {
	return &DocumentService{pages: pages, now: time.Now}
}

func (s *DocumentService) WithClock(now func() time.Time) *DocumentService {
	s.now = now
	return s
}

// List returns every page as a document.
func (s *DocumentService) List(ctx context.Context) ([]editor.Document, error) {
	docs := []editor.Document{}
	q := database.ListQuery{Limit: database.MaxLimit}
	for {
		page, err := s.pages.List(ctx, q)
		if err != nil {
			return nil, err
		}
		for i := range page.Data {
			docs = append(docs, editor.ToDocument(&page.Data[i]))
		}
		q.Offset += len(page.Data)
		if len(page.Data) == 0 || int64(q.Offset) >= page.Total {
			return docs, nil
		}
	}
}

func (s *DocumentService) Get(ctx context.Context, id uuid.UUID) (editor.Document, error) {
	page, err := s.pages.Get(ctx, id)
	if err != nil {
		return editor.Document{}, err
	}
	return editor.ToDocument(page), nil
}

// ByPath finds a published page by its exact path. Drafts are reported as
// missing.
func (s *DocumentService) ByPath(ctx context.Context, path string) (editor.Document, error) {
	slug := strings.TrimSpace(path)
	if slug == "" {
		return editor.Document{}, errs.NewBadRequestErrorWithField("Données invalides", "path", "path: le chemin est requis.")
	}

	page, err := s.pages.FindBy(ctx, "slug", slug)
	if err != nil {
		return editor.Document{}, err
	}
	if !page.IsPublished() {
		return editor.Document{}, errs.NewNotFoundError("Page non trouvée")
	}
	return editor.ToDocument(page), nil
}

func (s *DocumentService) Create(ctx context.Context, doc editor.Document, actor auth.Actor) (editor.Document, error) {
	patch := editor.FromDocument(doc, nil, nil, s.now())
	body, err := json.Marshal(patch)
	if err != nil {
		return editor.Document{}, errs.NewInternalErrorWithCause(internalMessage, err)
	}

	page, err := s.pages.Create(ctx, body, actor)
	if err != nil {
		return editor.Document{}, err
	}
	return editor.ToDocument(page), nil
}

// Update saves a document over an existing page. Sections other than the
// editor's own are carried over unchanged.
func (s *DocumentService) Update(ctx context.Context, id uuid.UUID, doc editor.Document, actor auth.Actor) (editor.Document, error) {
	existing, err := s.pages.Get(ctx, id)
	if err != nil {
		return editor.Document{}, err
	}

	patch := editor.FromDocument(doc, existing.Sections, existing.PublishedAt, s.now())
	body, err := json.Marshal(patch)
	if err != nil {
		return editor.Document{}, errs.NewInternalErrorWithCause(internalMessage, err)
	}

	page, err := s.pages.Update(ctx, id, body, actor)
	if err != nil {
		return editor.Document{}, err
	}
	return editor.ToDocument(page), nil
}

func (s *DocumentService) Delete(ctx context.Context, id uuid.UUID, actor auth.Actor) error {
	return s.pages.Delete(ctx, id, actor)
}
