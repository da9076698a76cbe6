package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/coach-scheduler/internal/idgen"
)

// CoachService is a bookable offering. Duration keeps the free text shown
// to students ("60 min"); DurationMin is its parsed value.
type CoachService struct {
	ID      string `gorm:"primaryKey;size:36" json:"id"`
	CoachID string `gorm:"size:36;index" json:"coach_id"`

	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"size:255" json:"description"`
	Duration    string `gorm:"size:30" json:"duration"`
	DurationMin int    `json:"duration_min"`
	Price       int    `json:"price"`

	IsPackage        bool `gorm:"default:false" json:"is_package"`
	SessionsIncluded int  `json:"sessions_included,omitempty"`
	Active           bool `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *CoachService) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = idgen.NewID()
	}
	return nil
}
