package models

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type CategoryType string

const (
	CategoryArticle CategoryType = "ARTICLE"
	CategoryEvent   CategoryType = "EVENT"
)

type Category struct {
	Base
	Name        string       `json:"name" gorm:"type:text;not null"`
	Slug        string       `json:"slug" gorm:"type:varchar(255);not null;uniqueIndex"`
	Description string       `json:"description" gorm:"type:text"`
	Type        CategoryType `json:"type" gorm:"type:varchar(16);not null;index"`
	Order       int          `json:"order" gorm:"column:sort_order;not null;default:0"`
}

func (Category) EntityType() string { return "category" }

func (Category) Listing() Listing {
	return Listing{
		SearchColumns: []string{"name", "description"},
		Filters:       map[string]string{"type": "type"},
		OrderBy:       "sort_order ASC, name ASC",
	}
}

func (c *Category) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	source := c.Slug
	if strings.TrimSpace(source) == "" {
		source = c.Name
	}
	c.Slug = NormalizeSlug(source)
	c.Type = CategoryType(strings.ToUpper(strings.TrimSpace(string(c.Type))))
	if c.Type == "" {
		c.Type = CategoryArticle
	}
}

func (c *Category) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Name, validation.Required.Error("le nom est requis"), validation.Length(1, 255)),
		validation.Field(&c.Slug, validation.Required, validation.By(validSlug)),
		validation.Field(&c.Type, validation.In(CategoryArticle, CategoryEvent).Error("type inconnu")),
		validation.Field(&c.Order, validation.Min(0)),
	)
}
