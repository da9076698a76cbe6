package fixtures

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/BruksfildServices01/coach-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/coach-scheduler/internal/httperr"
	"github.com/BruksfildServices01/coach-scheduler/internal/idgen"
	"github.com/BruksfildServices01/coach-scheduler/internal/models"
)

// Repository keeps coaches and bookings in memory. It backs the API when no
// database is configured and stands in for postgres in tests.
type Repository struct {
	mu       sync.RWMutex
	coaches  map[string]models.Coach
	students map[string]models.Student
	bookings []models.Booking
	now      func() time.Time
}

func NewRepository(coaches []models.Coach) *Repository {
	r := &Repository{
		coaches:  make(map[string]models.Coach, len(coaches)),
		students: make(map[string]models.Student),
		now:      time.Now,
	}
	for _, c := range coaches {
		r.coaches[c.ID] = c
	}
	return r
}

// NewSampleRepository is NewRepository seeded with Coaches().
func NewSampleRepository() (*Repository, error) {
	coaches, err := Coaches()
	if err != nil {
		return nil, err
	}
	return NewRepository(coaches), nil
}

// --------------------------------------------------
// Coach
// --------------------------------------------------

func (r *Repository) GetCoachByID(ctx context.Context, id string) (*models.Coach, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.coaches[id]
	if !ok {
		return nil, httperr.ErrBusiness("coach_not_found")
	}
	return &c, nil
}

func (r *Repository) GetCoachBySlug(ctx context.Context, slug string) (*models.Coach, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.coaches {
		if c.Slug == slug && c.Active {
			return &c, nil
		}
	}
	return nil, httperr.ErrBusiness("coach_not_found")
}

func (r *Repository) ListCoaches(ctx context.Context) ([]models.Coach, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Coach, 0, len(r.coaches))
	for _, c := range r.coaches {
		if c.Active {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// --------------------------------------------------
// Service
// --------------------------------------------------

func (r *Repository) ListServices(ctx context.Context, coachID string) ([]models.CoachService, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.coaches[coachID]
	if !ok {
		return nil, httperr.ErrBusiness("coach_not_found")
	}

	out := make([]models.CoachService, 0, len(c.Services))
	for _, s := range c.Services {
		if s.Active {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *Repository) GetService(ctx context.Context, coachID, serviceID string) (*models.CoachService, error) {
	services, err := r.ListServices(ctx, coachID)
	if err != nil {
		return nil, err
	}
	for _, s := range services {
		if s.ID == serviceID {
			return &s, nil
		}
	}
	return nil, httperr.ErrBusiness("service_not_found")
}

// --------------------------------------------------
// Student
// --------------------------------------------------

func (r *Repository) GetOrCreateStudent(
	ctx context.Context,
	subject, name, email, phone string,
) (*models.Student, error) {

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.students[subject]; ok {
		return &s, nil
	}

	s := models.Student{
		ID:        idgen.NewID(),
		Subject:   subject,
		Name:      name,
		Email:     email,
		Phone:     phone,
		CreatedAt: r.now(),
		UpdatedAt: r.now(),
	}
	r.students[subject] = s
	return &s, nil
}

func (r *Repository) GetStudentBySubject(ctx context.Context, subject string) (*models.Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.students[subject]
	if !ok {
		return nil, httperr.ErrBusiness("student_not_found")
	}
	return &s, nil
}

// --------------------------------------------------
// Booking
// --------------------------------------------------

func (r *Repository) CreateBooking(
	ctx context.Context,
	in booking.CreateBookingInput,
) (*models.Booking, error) {

	if err := in.Validate(); err != nil {
		return nil, httperr.ErrBusiness("invalid_booking")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.coaches[in.CoachID]
	if !ok {
		return nil, httperr.ErrBusiness("coach_not_found")
	}

	if in.ServiceID != nil && !hasService(c, *in.ServiceID) {
		return nil, httperr.ErrBusiness("service_not_found")
	}

	w := in.Window()
	for _, b := range r.bookings {
		if b.CoachID != in.CoachID || !booking.Status(b.Status).Active() {
			continue
		}
		if w.Overlaps(b.ScheduledAt, b.EndsAt()) {
			return nil, httperr.ErrBusiness("time_conflict")
		}
	}

	now := r.now()
	b := models.Booking{
		ID:           idgen.NewID(),
		Reference:    idgen.Reference(),
		CoachID:      in.CoachID,
		StudentID:    in.StudentID,
		ServiceID:    in.ServiceID,
		PackageID:    in.PackageID,
		Type:         string(in.Type),
		ScheduledAt:  in.ScheduledAt,
		Duration:     in.Duration,
		Price:        in.Price,
		Status:       string(booking.InitialStatus(in.Type)),
		Notes:        in.Notes,
		ContactName:  in.ContactName,
		ContactEmail: in.ContactEmail,
		ContactPhone: in.ContactPhone,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.bookings = append(r.bookings, b)

	return r.withRelations(b), nil
}

func (r *Repository) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.bookings {
		if b.ID == id {
			return r.withRelations(b), nil
		}
	}
	return nil, httperr.ErrBusiness("booking_not_found")
}

func (r *Repository) UpdateBooking(ctx context.Context, b *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.bookings {
		if r.bookings[i].ID == b.ID {
			updated := *b
			updated.Coach = models.Coach{}
			updated.Student = nil
			updated.Service = nil
			updated.UpdatedAt = r.now()
			r.bookings[i] = updated
			return nil
		}
	}
	return httperr.ErrBusiness("booking_not_found")
}

func (r *Repository) ListBookingsForCoach(
	ctx context.Context,
	coachID string,
	start, end time.Time,
) ([]models.Booking, error) {

	return r.filter(func(b models.Booking) bool {
		return b.CoachID == coachID && !b.ScheduledAt.Before(start) && b.ScheduledAt.Before(end)
	}), nil
}

func (r *Repository) ListBookingsForStudent(ctx context.Context, studentID string) ([]models.Booking, error) {
	return r.filter(func(b models.Booking) bool {
		return b.StudentID != nil && *b.StudentID == studentID
	}), nil
}

func (r *Repository) ListReservedWindows(
	ctx context.Context,
	coachID string,
	start, end time.Time,
) ([]booking.Window, error) {

	bookings := r.filter(func(b models.Booking) bool {
		w := booking.Window{Start: b.ScheduledAt, End: b.EndsAt()}
		return b.CoachID == coachID && booking.Status(b.Status).Active() && w.Overlaps(start, end)
	})

	out := make([]booking.Window, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, booking.Window{Start: b.ScheduledAt, End: b.EndsAt()})
	}
	return out, nil
}

// --------------------------------------------------
// helpers
// --------------------------------------------------

func (r *Repository) filter(keep func(models.Booking) bool) []models.Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Booking, 0)
	for _, b := range r.bookings {
		if keep(b) {
			out = append(out, *r.withRelations(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out
}

// withRelations fills the preloaded associations the gorm repository would
// return. Callers hold r.mu.
func (r *Repository) withRelations(b models.Booking) *models.Booking {
	c := r.coaches[b.CoachID]
	b.Coach = c
	b.Coach.Services = nil

	if b.ServiceID != nil {
		for _, s := range c.Services {
			if s.ID == *b.ServiceID {
				svc := s
				b.Service = &svc
				break
			}
		}
	}
	if b.StudentID != nil {
		for _, s := range r.students {
			if s.ID == *b.StudentID {
				st := s
				b.Student = &st
				break
			}
		}
	}
	return &b
}

func hasService(c models.Coach, serviceID string) bool {
	for _, s := range c.Services {
		if s.ID == serviceID && s.Active {
			return true
		}
	}
	return false
}

var _ booking.Repository = (*Repository)(nil)
