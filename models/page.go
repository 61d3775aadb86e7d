package models

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Page is a site page. Pages with the visual-editor template keep their
// editor payload under Sections[SectionVisualEditor].
type Page struct {
	Base
	Record
	Template string `json:"template" gorm:"type:varchar(64);not null;default:'rich-text'"`
	Order    int    `json:"order" gorm:"column:sort_order;not null;default:0"`
}

// SectionVisualEditor is the sections key owned by the visual editor.
const SectionVisualEditor = "visualEditor"

func (Page) EntityType() string { return "page" }

func (Page) Listing() Listing {
	return Listing{
		SearchColumns: []string{"title", "slug", "content"},
		Filters:       map[string]string{"template": "template"},
		OrderBy:       "sort_order ASC, title ASC",
		HasStatus:     true,
	}
}

// IsVisualEditor reports whether the page is owned by the visual editor.
// Such pages keep their slug exactly as the editor sent it.
func (p *Page) IsVisualEditor() bool {
	return p.Template == TemplateVisualEditor
}

func (p *Page) Normalize() {
	path := strings.TrimSpace(p.Slug)
	p.Record.Normalize()
	p.Template = strings.TrimSpace(p.Template)
	if p.Template == "" {
		p.Template = TemplateRichText
	}
	if p.IsVisualEditor() && path != "" {
		p.Slug = path
	}
}

func (p *Page) Validate() error {
	slugCheck := validSlug
	if p.IsVisualEditor() {
		slugCheck = validPath
	}
	rules := append(p.Record.rules(slugCheck),
		validation.Field(&p.Template, validation.Required, validation.Length(1, 64)),
		validation.Field(&p.Order, validation.Min(0)),
	)
	return validation.ValidateStruct(p, rules...)
}
