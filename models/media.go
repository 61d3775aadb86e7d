package models

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// Media is an uploaded asset. The bytes live in object storage; the row
// keeps the public URL and descriptive metadata.
type Media struct {
	Base
	Filename     string    `json:"filename" gorm:"type:text;not null"`
	OriginalName string    `json:"originalName" gorm:"type:text"`
	MimeType     string    `json:"mimeType" gorm:"type:varchar(128);not null"`
	Size         int64     `json:"size" gorm:"not null;default:0"`
	URL          string    `json:"url" gorm:"type:text;not null"`
	StorageKey   string    `json:"-" gorm:"type:text"`
	Alt          string    `json:"alt" gorm:"type:text"`
	Folder       string    `json:"folder" gorm:"type:varchar(128);index"`
	UploadedBy   uuid.UUID `json:"uploadedBy" gorm:"type:uuid;index"`
}

func (Media) EntityType() string { return "media" }

func (Media) Listing() Listing {
	return Listing{
		SearchColumns: []string{"filename", "original_name", "alt"},
		Filters:       map[string]string{"folder": "folder", "mimeType": "mime_type"},
	}
}

func (m *Media) Normalize() {
	m.Filename = strings.TrimSpace(m.Filename)
	m.Folder = strings.Trim(strings.TrimSpace(m.Folder), "/")
	if m.OriginalName == "" {
		m.OriginalName = m.Filename
	}
}

func (m *Media) Validate() error {
	return validation.ValidateStruct(m,
		validation.Field(&m.Filename, validation.Required.Error("le nom de fichier est requis")),
		validation.Field(&m.MimeType, validation.Required.Error("le type MIME est requis")),
		validation.Field(&m.URL, validation.Required.Error("l'URL est requise")),
		validation.Field(&m.Size, validation.Min(int64(0))),
	)
}
