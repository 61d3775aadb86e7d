// Package editor maps pages to and from the visual editor's document shape.
// Nothing here touches the store.
package editor

import (
	"strings"
	"time"

	"github.com/epitaphe360/cms-backend/models"
	"gorm.io/datatypes"
)

// DocumentStatus is the two-state status the editor understands.
type DocumentStatus string

const (
	StatusDraft     DocumentStatus = "draft"
	StatusPublished DocumentStatus = "published"
)

// Document is the editor's view of a page.
type Document struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Path         string         `json:"path"`
	HTML         string         `json:"html"`
	CSS          string         `json:"css"`
	Status       DocumentStatus `json:"status"`
	LastModified time.Time      `json:"lastModified"`
}

// Markup is what the editor stores under sections.visualEditor.
type Markup struct {
	HTML string `json:"html"`
	CSS  string `json:"css"`
}

// Patch holds the page fields a saved document writes.
type Patch struct {
	Title       string            `json:"title"`
	Slug        string            `json:"slug"`
	Content     string            `json:"content"`
	Status      models.Status     `json:"status"`
	Template    string            `json:"template"`
	Sections    datatypes.JSONMap `json:"sections"`
	PublishedAt *time.Time        `json:"publishedAt"`
}

// ToDocument renders a page for the editor. Markup stored by the editor wins
// over the rich-text content; anything not published reads as a draft.
func ToDocument(page *models.Page) Document {
	doc := Document{
		ID:           page.ID.String(),
		Name:         page.Title,
		Path:         page.Slug,
		HTML:         page.Content,
		Status:       StatusDraft,
		LastModified: page.UpdatedAt,
	}
	if page.IsPublished() {
		doc.Status = StatusPublished
	}
	if markup, ok := MarkupFrom(page.Sections); ok {
		doc.HTML = markup.HTML
		doc.CSS = markup.CSS
	}
	return doc
}

// FromDocument builds the page patch for a saved document. existing is
// copied, never modified; publishedAt is only set when there was none.
func FromDocument(doc Document, existing datatypes.JSONMap, publishedAt *time.Time, now time.Time) Patch {
	status := models.StatusDraft
	if DocumentStatus(strings.ToLower(string(doc.Status))) == StatusPublished {
		status = models.StatusPublished
	}

	sections := models.MergeSections(existing, datatypes.JSONMap{
		models.SectionVisualEditor: map[string]any{"html": doc.HTML, "css": doc.CSS},
	})

	stamped := publishedAt
	if status == models.StatusPublished && stamped == nil {
		t := now
		stamped = &t
	}

	return Patch{
		Title:       doc.Name,
		Slug:        doc.Path,
		Content:     doc.HTML,
		Status:      status,
		Template:    models.TemplateVisualEditor,
		Sections:    sections,
		PublishedAt: stamped,
	}
}

// MarkupFrom reads sections.visualEditor. It accepts both the decoded JSON
// form and a Markup value placed in the map directly.
func MarkupFrom(sections datatypes.JSONMap) (Markup, bool) {
	raw, ok := sections[models.SectionVisualEditor]
	if !ok || raw == nil {
		return Markup{}, false
	}
	switch v := raw.(type) {
	case Markup:
		return v, true
	case map[string]any:
		html, _ := v["html"].(string)
		css, _ := v["css"].(string)
		return Markup{HTML: html, CSS: css}, true
	case map[string]string:
		return Markup{HTML: v["html"], CSS: v["css"]}, true
	}
	return Markup{}, false
}
