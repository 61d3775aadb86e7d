package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// Event is an agency event. Its description is the record content.
type Event struct {
	Base
	Record
	Location   string     `json:"location" gorm:"type:text"`
	StartDate  time.Time  `json:"startDate" gorm:"not null;index"`
	EndDate    *time.Time `json:"endDate"`
	Image      string     `json:"image" gorm:"type:text"`
	CategoryID *uuid.UUID `json:"categoryId" gorm:"type:uuid;index"`

	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID;references:ID;constraint:OnDelete:SET NULL"`
}

func (Event) EntityType() string { return "event" }

func (Event) Listing() Listing {
	return Listing{
		SearchColumns: []string{"title", "content", "location"},
		Filters:       map[string]string{"categoryId": "category_id"},
		UUIDFilters:   []string{"categoryId"},
		HasStatus:     true,
	}
}

func (e *Event) Validate() error {
	rules := append(e.Record.validationRules(),
		validation.Field(&e.StartDate, validation.Required.Error("la date de début est requise")),
		validation.Field(&e.EndDate, validation.By(func(any) error {
			if e.EndDate != nil && e.EndDate.Before(e.StartDate) {
				return validation.NewError("validation_event_dates", "la date de fin précède la date de début")
			}
			return nil
		})),
	)
	return validation.ValidateStruct(e, rules...)
}
