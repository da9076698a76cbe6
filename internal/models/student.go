package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/coach-scheduler/internal/idgen"
)

// Student is the booking contact, keyed by the authenticated subject.
type Student struct {
	ID      string `gorm:"primaryKey;size:36" json:"id"`
	Subject string `gorm:"size:100;uniqueIndex" json:"subject"`

	Name  string `gorm:"size:100;not null" json:"name"`
	Email string `gorm:"size:100" json:"email"`
	Phone string `gorm:"size:20" json:"phone"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Student) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = idgen.NewID()
	}
	return nil
}
