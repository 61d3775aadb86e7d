package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageNormalizeKeepsEditorPath(t *testing.T) {
	visual := &Page{Record: Record{Title: "Événementiel", Slug: " /nos-services/evenementiel "}, Template: TemplateVisualEditor}
	visual.Normalize()
	assert.Equal(t, "/nos-services/evenementiel", visual.Slug)
	assert.NoError(t, visual.Validate())

	rich := &Page{Record: Record{Title: "Agence", Slug: "Notre Agence"}}
	rich.Normalize()
	assert.Equal(t, "notre-agence", rich.Slug)
	assert.Equal(t, TemplateRichText, rich.Template)
	assert.NoError(t, rich.Validate())
}

func TestPageEditorPathValidation(t *testing.T) {
	tests := map[string]bool{
		"/":                   true,
		"contact":             true,
		"/contact":            true,
		"a/b-c/d1":            true,
		"Contact":             false,
		"/contact/":           false,
		"a//b":                false,
		"nos services/agence": false,
		"a/ b":                false,
	}

	for path, ok := range tests {
		t.Run(path, func(t *testing.T) {
			p := &Page{Record: Record{Title: "Page", Slug: path}, Template: TemplateVisualEditor}
			p.Normalize()
			if ok {
				assert.NoError(t, p.Validate())
			} else {
				assert.Error(t, p.Validate())
			}
		})
	}
}

func TestPageDistinctPathsStayDistinct(t *testing.T) {
	paths := []string{"a/b", "ab", "/contact", "contact"}
	seen := map[string]bool{}
	for _, path := range paths {
		p := &Page{Record: Record{Title: "Page", Slug: path}, Template: TemplateVisualEditor}
		p.Normalize()
		assert.False(t, seen[p.Slug], path)
		seen[p.Slug] = true
	}
}
