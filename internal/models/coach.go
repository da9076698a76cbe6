package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/coach-scheduler/internal/idgen"
)

type Coach struct {
	ID       string `gorm:"primaryKey;size:36" json:"id"`
	Slug     string `gorm:"size:120;uniqueIndex;not null" json:"slug"`
	Name     string `gorm:"size:100;not null" json:"name"`
	Headline string `gorm:"size:160" json:"headline"`
	Bio      string `gorm:"type:text" json:"bio"`
	Email    string `gorm:"size:100" json:"email"`
	Timezone string `gorm:"size:64" json:"timezone"`

	Credentials []string `gorm:"serializer:json" json:"credentials"`
	Specialties []string `gorm:"serializer:json" json:"specialties"`

	IntroEnabled bool `gorm:"default:true" json:"intro_enabled"`
	IntroMinutes int  `gorm:"default:15" json:"intro_minutes"`
	Active       bool `gorm:"default:true" json:"active"`

	Services []CoachService `json:"services,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Coach) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = idgen.NewID()
	}
	return nil
}
