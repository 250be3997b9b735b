package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service catalogue entry: reference data, looked up by id at booking time.
type Service struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	Name  string   `gorm:"size:100;not null" json:"name"`
	Price *float64 `json:"price"`

	// Nil means the default duration applies.
	DurationMinutes *int `json:"durationMinutes"`

	Active bool `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s *Service) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
