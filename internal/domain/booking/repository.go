package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/BruksfildServices01/coach-scheduler/internal/models"
)

// CreateBookingInput is the write payload sent to the booking store.
// ScheduledAt is composed by the caller; the store never recomputes it.
type CreateBookingInput struct {
	CoachID     string    `json:"coach_id"`
	StudentID   *string   `json:"student_id,omitempty"`
	ServiceID   *string   `json:"service_id,omitempty"`
	PackageID   *string   `json:"package_id,omitempty"`
	Type        Type      `json:"type"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Duration    int       `json:"duration"`
	Price       int       `json:"price"`
	Notes       string    `json:"notes,omitempty"`

	ContactName  string `json:"contact_name,omitempty"`
	ContactEmail string `json:"contact_email,omitempty"`
	ContactPhone string `json:"contact_phone,omitempty"`
}

func (in CreateBookingInput) Validate() error {
	switch {
	case in.CoachID == "":
		return fmt.Errorf("%w: coach_id", ErrMissingField)
	case !in.Type.Valid():
		return fmt.Errorf("invalid booking type %q", in.Type)
	case in.ScheduledAt.IsZero():
		return fmt.Errorf("%w: scheduled_at", ErrMissingField)
	case in.Duration <= 0:
		return fmt.Errorf("%w: %d", ErrInvalidDuration, in.Duration)
	case in.Price < 0:
		return fmt.Errorf("invalid price %d", in.Price)
	case in.Type == TypeIntro && in.Price != 0:
		return fmt.Errorf("free intro cannot carry a price")
	}
	return nil
}

// Window is the calendar time the booking would hold.
func (in CreateBookingInput) Window() Window {
	return Window{
		Start: in.ScheduledAt,
		End:   in.ScheduledAt.Add(time.Duration(in.Duration) * time.Minute),
	}
}

// Store is the write side the wizard depends on.
type Store interface {
	CreateBooking(
		ctx context.Context,
		in CreateBookingInput,
	) (*models.Booking, error)
}

type Repository interface {
	Store

	// -------- Coach --------
	GetCoachByID(
		ctx context.Context,
		id string,
	) (*models.Coach, error)

	GetCoachBySlug(
		ctx context.Context,
		slug string,
	) (*models.Coach, error)

	ListCoaches(
		ctx context.Context,
	) ([]models.Coach, error)

	// -------- Service --------
	ListServices(
		ctx context.Context,
		coachID string,
	) ([]models.CoachService, error)

	GetService(
		ctx context.Context,
		coachID string,
		serviceID string,
	) (*models.CoachService, error)

	// -------- Student --------
	GetOrCreateStudent(
		ctx context.Context,
		subject string,
		name string,
		email string,
		phone string,
	) (*models.Student, error)

	GetStudentBySubject(
		ctx context.Context,
		subject string,
	) (*models.Student, error)

	// -------- Booking (state change) --------
	GetBooking(
		ctx context.Context,
		id string,
	) (*models.Booking, error)

	UpdateBooking(
		ctx context.Context,
		b *models.Booking,
	) error

	// -------- Listing / availability --------
	ListBookingsForCoach(
		ctx context.Context,
		coachID string,
		start time.Time,
		end time.Time,
	) ([]models.Booking, error)

	ListBookingsForStudent(
		ctx context.Context,
		studentID string,
	) ([]models.Booking, error)

	ListReservedWindows(
		ctx context.Context,
		coachID string,
		start time.Time,
		end time.Time,
	) ([]Window, error)
}
