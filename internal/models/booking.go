package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/coach-scheduler/internal/idgen"
)

type Booking struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	Reference string `gorm:"size:12;uniqueIndex" json:"reference"`

	CoachID string `gorm:"size:36;index" json:"coach_id"`
	Coach   Coach  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"coach"`

	StudentID *string  `gorm:"size:36;index" json:"student_id"`
	Student   *Student `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"student,omitempty"`

	ServiceID *string       `gorm:"size:36" json:"service_id"`
	Service   *CoachService `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"service,omitempty"`
	PackageID *string       `gorm:"size:36" json:"package_id"`

	Type        string    `gorm:"size:20;not null" json:"type"`
	ScheduledAt time.Time `gorm:"index" json:"scheduled_at"`
	Duration    int       `json:"duration"`
	// stored copy of EndsAt(); backs the overlap constraint
	FinishesAt time.Time `gorm:"column:ends_at" json:"-"`
	Price       int       `json:"price"`

	Status string `gorm:"size:20;default:'pending'" json:"status"`
	Notes  string `gorm:"size:500" json:"notes"`

	ContactName  string `gorm:"size:100" json:"contact_name"`
	ContactEmail string `gorm:"size:100" json:"contact_email"`
	ContactPhone string `gorm:"size:20" json:"contact_phone"`

	ConfirmedAt *time.Time `json:"confirmed_at"`
	CancelledAt *time.Time `json:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = idgen.NewID()
	}
	if b.Reference == "" {
		b.Reference = idgen.Reference()
	}
	return nil
}

func (b *Booking) BeforeSave(tx *gorm.DB) error {
	b.FinishesAt = b.EndsAt()
	return nil
}

func (b *Booking) EndsAt() time.Time {
	return b.ScheduledAt.Add(time.Duration(b.Duration) * time.Minute)
}
