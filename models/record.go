package models

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-slug"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Status is the publication lifecycle of a content record.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusPublished Status = "PUBLISHED"
	StatusScheduled Status = "SCHEDULED"
)

// Template selects which editor owns a record's payload.
const (
	TemplateRichText     = "rich-text"
	TemplateVisualEditor = "visual-editor"
)

// Entity is implemented by every persisted model.
type Entity interface {
	GetID() uuid.UUID
	EntityType() string
	Listing() Listing
}

// Listing describes how a table is searched, filtered and ordered.
type Listing struct {
	// SearchColumns are matched with a case-insensitive substring.
	SearchColumns []string
	// Filters maps query parameter names to columns.
	Filters map[string]string
	// UUIDFilters names the Filters whose column holds a uuid.
	UUIDFilters []string
	// OrderBy is the explicit order clause. Empty means created_at DESC.
	OrderBy string
	// HasStatus enables the status filter.
	HasStatus bool
}

// Base carries the id and store managed timestamps.
type Base struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"not null"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

func (b *Base) GetID() uuid.UUID {
	return b.ID
}

func (b *Base) BaseFields() *Base {
	return b
}

// SEO metadata is independent of the record body and always present.
type SEO struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Keywords     []string `json:"keywords"`
	OgImage      string   `json:"ogImage,omitempty"`
	CanonicalURL string   `json:"canonicalUrl,omitempty"`
}

// Record holds the fields pages, articles and events share.
type Record struct {
	Title       string                  `json:"title" gorm:"type:text;not null"`
	Slug        string                  `json:"slug" gorm:"type:varchar(255);not null;uniqueIndex"`
	Content     string                  `json:"content" gorm:"type:text"`
	Status      Status                  `json:"status" gorm:"type:varchar(16);not null;index"`
	Sections    datatypes.JSONMap       `json:"sections"`
	SEO         datatypes.JSONType[SEO] `json:"seo"`
	PublishedAt *time.Time              `json:"publishedAt" gorm:"index"`
	AuthorID    uuid.UUID               `json:"authorId" gorm:"type:uuid;index"`
}

func (r *Record) RecordFields() *Record {
	return r
}

// IsPublished reports whether the record is publicly visible.
func (r *Record) IsPublished() bool {
	return r.Status == StatusPublished
}

// Normalize fills defaults and canonical forms before validation.
func (r *Record) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Status = Status(strings.ToUpper(strings.TrimSpace(string(r.Status))))
	if r.Status == "" {
		r.Status = StatusDraft
	}

	source := r.Slug
	if strings.TrimSpace(source) == "" {
		source = r.Title
	}
	r.Slug = NormalizeSlug(source)

	if r.Sections == nil {
		r.Sections = datatypes.JSONMap{}
	}

	seo := r.SEO.Data()
	if seo.Keywords == nil {
		seo.Keywords = []string{}
	}
	r.SEO = datatypes.NewJSONType(seo)
}

func (r *Record) validationRules() []*validation.FieldRules {
	return r.rules(validSlug)
}

func (r *Record) rules(slugCheck validation.RuleFunc) []*validation.FieldRules {
	return []*validation.FieldRules{
		validation.Field(&r.Title, validation.Required.Error("le titre est requis"), validation.Length(1, 255)),
		validation.Field(&r.Slug, validation.Required.Error("le slug est requis"), validation.By(slugCheck)),
		validation.Field(&r.Status, validation.In(StatusDraft, StatusPublished, StatusScheduled).Error("statut inconnu")),
	}
}

// NormalizeSlug lower-cases and hyphenates a path segment. Values the
// normalizer rejects are returned trimmed so validation can report them.
func NormalizeSlug(value string) string {
	normalized, err := slug.Normalize(value)
	if err != nil {
		return strings.TrimSpace(value)
	}
	return normalized
}

func validSlug(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if !slug.IsValid(s) {
		return validation.NewError("validation_slug_invalid", "slug invalide")
	}
	return nil
}

// validPath accepts "/" or slash separated slug segments with an optional
// leading slash, such as "/contact" or "nos-services/evenementiel".
func validPath(value any) error {
	p, _ := value.(string)
	if p == "" || p == "/" {
		return nil
	}
	for _, segment := range strings.Split(strings.TrimPrefix(p, "/"), "/") {
		if segment != strings.TrimSpace(segment) || !slug.IsValid(segment) {
			return validation.NewError("validation_path_invalid", "chemin invalide")
		}
	}
	return nil
}

// MergeSections returns a new map holding base overlaid with patch. A nil
// value in patch removes the key. Neither input is modified.
func MergeSections(base, patch datatypes.JSONMap) datatypes.JSONMap {
	merged := make(datatypes.JSONMap, len(base)+len(patch))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range patch {
		if v == nil {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}
	return merged
}
