package booking

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/coach-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/coach-scheduler/internal/dto"
	"github.com/BruksfildServices01/coach-scheduler/internal/httperr"
	"github.com/BruksfildServices01/coach-scheduler/internal/models"
	"github.com/BruksfildServices01/coach-scheduler/internal/timezone"
)

// ======================================================
// BY DATE (coach)
// ======================================================

type ListBookingsByDate struct {
	repo domain.Repository
}

func NewListBookingsByDate(repo domain.Repository) *ListBookingsByDate {
	return &ListBookingsByDate{repo: repo}
}

// Execute lists the coach's bookings on the calendar day of date, in the
// coach's timezone.
func (uc *ListBookingsByDate) Execute(
	ctx context.Context,
	coachID string,
	date time.Time,
) ([]dto.BookingListDTO, error) {

	coach, err := uc.repo.GetCoachByID(ctx, coachID)
	if err != nil {
		return nil, err
	}

	loc := timezone.Location(coach.Timezone)
	start := domain.CalendarDay(date, loc)
	end := start.AddDate(0, 0, 1)

	bookings, err := uc.repo.ListBookingsForCoach(ctx, coachID, start, end)
	if err != nil {
		return nil, err
	}

	return toListDTO(bookings, false), nil
}

// ======================================================
// BY MONTH (coach)
// ======================================================

type ListBookingsByMonth struct {
	repo domain.Repository
}

func NewListBookingsByMonth(repo domain.Repository) *ListBookingsByMonth {
	return &ListBookingsByMonth{repo: repo}
}

func (uc *ListBookingsByMonth) Execute(
	ctx context.Context,
	coachID string,
	year int,
	month int,
) ([]dto.BookingListDTO, error) {

	if month < 1 || month > 12 {
		return nil, httperr.ErrBusiness("invalid_month")
	}

	coach, err := uc.repo.GetCoachByID(ctx, coachID)
	if err != nil {
		return nil, err
	}

	loc := timezone.Location(coach.Timezone)
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0)

	bookings, err := uc.repo.ListBookingsForCoach(ctx, coachID, start, end)
	if err != nil {
		return nil, err
	}

	return toListDTO(bookings, false), nil
}

// ======================================================
// STUDENT
// ======================================================

type ListStudentBookings struct {
	repo domain.Repository
}

func NewListStudentBookings(repo domain.Repository) *ListStudentBookings {
	return &ListStudentBookings{repo: repo}
}

// Execute lists bookings made by the authenticated subject. A subject that
// never booked has an empty list.
func (uc *ListStudentBookings) Execute(
	ctx context.Context,
	subject string,
) ([]dto.BookingListDTO, error) {

	st, err := uc.repo.GetStudentBySubject(ctx, subject)
	if httperr.IsBusiness(err, "student_not_found") {
		return []dto.BookingListDTO{}, nil
	}
	if err != nil {
		return nil, err
	}

	bookings, err := uc.repo.ListBookingsForStudent(ctx, st.ID)
	if err != nil {
		return nil, err
	}

	return toListDTO(bookings, true), nil
}

func toListDTO(bookings []models.Booking, withCoach bool) []dto.BookingListDTO {
	out := make([]dto.BookingListDTO, 0, len(bookings))

	for _, b := range bookings {
		item := dto.BookingListDTO{
			ID:          b.ID,
			Reference:   b.Reference,
			Type:        b.Type,
			Status:      b.Status,
			ScheduledAt: b.ScheduledAt,
			EndsAt:      b.EndsAt(),
			Duration:    b.Duration,
			Price:       b.Price,
			StudentName: b.ContactName,
			ServiceName: "Free intro session",
		}
		if b.Service != nil {
			item.ServiceName = b.Service.Name
		}
		if withCoach {
			item.CoachName = b.Coach.Name
		}
		out = append(out, item)
	}

	return out
}
