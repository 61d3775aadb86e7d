package models

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// Article is a blog post.
type Article struct {
	Base
	Record
	Excerpt       string     `json:"excerpt" gorm:"type:text"`
	FeaturedImage string     `json:"featuredImage" gorm:"type:text"`
	ReadTime      int        `json:"readTime" gorm:"type:integer;not null;default:0"`
	CategoryID    *uuid.UUID `json:"categoryId" gorm:"type:uuid;index"`

	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID;references:ID;constraint:OnDelete:SET NULL"`
}

func (Article) EntityType() string { return "article" }

func (Article) Listing() Listing {
	return Listing{
		SearchColumns: []string{"title", "excerpt", "content"},
		Filters:       map[string]string{"categoryId": "category_id"},
		UUIDFilters:   []string{"categoryId"},
		HasStatus:     true,
	}
}

func (a *Article) Normalize() {
	a.Record.Normalize()
	if a.ReadTime <= 0 {
		a.ReadTime = estimateReadTime(a.Content)
	}
}

// ResetDerived clears the fields computed from the content, so an update
// that does not send them gets fresh values from Normalize.
func (a *Article) ResetDerived() {
	a.ReadTime = 0
}

func (a *Article) Validate() error {
	rules := append(a.Record.validationRules(),
		validation.Field(&a.Excerpt, validation.Length(0, 1000)),
		validation.Field(&a.ReadTime, validation.Min(0)),
	)
	return validation.ValidateStruct(a, rules...)
}

const wordsPerMinute = 200

func estimateReadTime(content string) int {
	words := len(strings.Fields(stripTags(content)))
	if words == 0 {
		return 0
	}
	return (words + wordsPerMinute - 1) / wordsPerMinute
}

func stripTags(html string) string {
	var b strings.Builder
	inTag := false
	for _, r := range html {
		switch {
		case r == '<':
			inTag = true
			b.WriteRune(' ')
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}
