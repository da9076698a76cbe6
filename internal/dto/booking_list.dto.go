package dto

import "time"

type BookingListDTO struct {
	ID          string    `json:"id"`
	Reference   string    `json:"reference"`
	Type        string    `json:"type"`
	Status      string    `json:"status"`
	ScheduledAt time.Time `json:"scheduled_at"`
	EndsAt      time.Time `json:"ends_at"`
	Duration    int       `json:"duration"`
	Price       int       `json:"price"`
	CoachName   string    `json:"coach_name,omitempty"`
	StudentName string    `json:"student_name"`
	ServiceName string    `json:"service_name"`
}
