package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/coach-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/coach-scheduler/internal/httperr"
	"github.com/BruksfildServices01/coach-scheduler/internal/models"
)

var activeStatuses = []string{
	string(domain.StatusPending),
	string(domain.StatusConfirmed),
}

type BookingGormRepository struct {
	db *gorm.DB
}

func NewBookingGormRepository(db *gorm.DB) *BookingGormRepository {
	return &BookingGormRepository{db: db}
}

// --------------------------------------------------
// Coach
// --------------------------------------------------

func (r *BookingGormRepository) GetCoachByID(
	ctx context.Context,
	id string,
) (*models.Coach, error) {

	var c models.Coach
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "coach_not_found")
	}
	return &c, nil
}

func (r *BookingGormRepository) GetCoachBySlug(
	ctx context.Context,
	slug string,
) (*models.Coach, error) {

	var c models.Coach
	if err := r.db.WithContext(ctx).
		Where("slug = ? AND active = true", slug).
		First(&c).Error; err != nil {
		return nil, notFound(err, "coach_not_found")
	}
	return &c, nil
}

func (r *BookingGormRepository) ListCoaches(
	ctx context.Context,
) ([]models.Coach, error) {

	var coaches []models.Coach
	if err := r.db.WithContext(ctx).
		Where("active = true").
		Order("name ASC").
		Find(&coaches).Error; err != nil {
		return nil, err
	}
	return coaches, nil
}

// --------------------------------------------------
// Service
// --------------------------------------------------

func (r *BookingGormRepository) ListServices(
	ctx context.Context,
	coachID string,
) ([]models.CoachService, error) {

	var services []models.CoachService
	if err := r.db.WithContext(ctx).
		Where("coach_id = ? AND active = true", coachID).
		Order("price ASC").
		Find(&services).Error; err != nil {
		return nil, err
	}
	return services, nil
}

func (r *BookingGormRepository) GetService(
	ctx context.Context,
	coachID string,
	serviceID string,
) (*models.CoachService, error) {

	var svc models.CoachService
	if err := r.db.WithContext(ctx).
		Where("id = ? AND coach_id = ? AND active = true", serviceID, coachID).
		First(&svc).Error; err != nil {
		return nil, notFound(err, "service_not_found")
	}
	return &svc, nil
}

// --------------------------------------------------
// Student
// --------------------------------------------------

func (r *BookingGormRepository) GetOrCreateStudent(
	ctx context.Context,
	subject string,
	name string,
	email string,
	phone string,
) (*models.Student, error) {

	var st models.Student
	err := r.db.WithContext(ctx).
		Where("subject = ?", subject).
		First(&st).Error

	if err == nil {
		return &st, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	st = models.Student{
		Subject: subject,
		Name:    name,
		Email:   email,
		Phone:   phone,
	}

	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&st).Error; err != nil {
		return nil, err
	}

	// lost a race with a concurrent insert
	if err := r.db.WithContext(ctx).Where("subject = ?", subject).First(&st).Error; err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *BookingGormRepository) GetStudentBySubject(
	ctx context.Context,
	subject string,
) (*models.Student, error) {

	var st models.Student
	if err := r.db.WithContext(ctx).
		Where("subject = ?", subject).
		First(&st).Error; err != nil {
		return nil, notFound(err, "student_not_found")
	}
	return &st, nil
}

// --------------------------------------------------
// Booking (create)
// --------------------------------------------------

// CreateBooking persists the booking inside a transaction that locks the
// coach's overlapping active bookings. Racing inserts into a free window are
// caught by the bookings_no_overlap constraint and reported as
// time_conflict. scheduled_at is stored as given.
func (r *BookingGormRepository) CreateBooking(
	ctx context.Context,
	in domain.CreateBookingInput,
) (*models.Booking, error) {

	if err := in.Validate(); err != nil {
		return nil, httperr.ErrBusiness("invalid_booking")
	}

	var created models.Booking

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		var coach models.Coach
		if err := tx.Select("id").First(&coach, "id = ?", in.CoachID).Error; err != nil {
			return notFound(err, "coach_not_found")
		}

		if in.ServiceID != nil {
			var count int64
			if err := tx.Model(&models.CoachService{}).
				Where("id = ? AND coach_id = ? AND active = true", *in.ServiceID, in.CoachID).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return httperr.ErrBusiness("service_not_found")
			}
		}

		w := in.Window()

		var conflicts []models.Booking
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where(
				"coach_id = ? AND status IN ? AND scheduled_at < ? AND ends_at > ?",
				in.CoachID, activeStatuses, w.End, w.Start,
			).
			Find(&conflicts).Error; err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return httperr.ErrBusiness("time_conflict")
		}

		b := models.Booking{
			CoachID:      in.CoachID,
			StudentID:    in.StudentID,
			ServiceID:    in.ServiceID,
			PackageID:    in.PackageID,
			Type:         string(in.Type),
			ScheduledAt:  in.ScheduledAt,
			Duration:     in.Duration,
			Price:        in.Price,
			Status:       string(domain.InitialStatus(in.Type)),
			Notes:        in.Notes,
			ContactName:  in.ContactName,
			ContactEmail: in.ContactEmail,
			ContactPhone: in.ContactPhone,
		}

		if err := tx.Omit(clause.Associations).Create(&b).Error; err != nil {
			return err
		}

		created = b
		return nil
	})
	if httperr.IsExclusionConflict(err) {
		return nil, httperr.ErrBusiness("time_conflict")
	}
	if err != nil {
		return nil, err
	}

	return r.GetBooking(ctx, created.ID)
}

// --------------------------------------------------
// Booking (state change)
// --------------------------------------------------

func (r *BookingGormRepository) GetBooking(
	ctx context.Context,
	id string,
) (*models.Booking, error) {

	var b models.Booking
	if err := r.db.WithContext(ctx).
		Preload("Coach").
		Preload("Student").
		Preload("Service").
		First(&b, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "booking_not_found")
	}
	return &b, nil
}

func (r *BookingGormRepository) UpdateBooking(
	ctx context.Context,
	b *models.Booking,
) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(b).Error
}

// --------------------------------------------------
// Listing / availability
// --------------------------------------------------

func (r *BookingGormRepository) ListBookingsForCoach(
	ctx context.Context,
	coachID string,
	start time.Time,
	end time.Time,
) ([]models.Booking, error) {

	var bookings []models.Booking
	if err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Service").
		Where(
			"coach_id = ? AND scheduled_at >= ? AND scheduled_at < ?",
			coachID, start, end,
		).
		Order("scheduled_at ASC").
		Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *BookingGormRepository) ListBookingsForStudent(
	ctx context.Context,
	studentID string,
) ([]models.Booking, error) {

	var bookings []models.Booking
	if err := r.db.WithContext(ctx).
		Preload("Coach").
		Preload("Service").
		Where("student_id = ?", studentID).
		Order("scheduled_at ASC").
		Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *BookingGormRepository) ListReservedWindows(
	ctx context.Context,
	coachID string,
	start time.Time,
	end time.Time,
) ([]domain.Window, error) {

	var bookings []models.Booking
	if err := r.db.WithContext(ctx).
		Select("scheduled_at", "duration").
		Where(
			"coach_id = ? AND status IN ? AND scheduled_at < ? AND ends_at > ?",
			coachID, activeStatuses, end, start,
		).
		Order("scheduled_at ASC").
		Find(&bookings).Error; err != nil {
		return nil, err
	}

	out := make([]domain.Window, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, domain.Window{Start: b.ScheduledAt, End: b.EndsAt()})
	}
	return out, nil
}

func notFound(err error, code string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return httperr.ErrBusiness(code)
	}
	return err
}

// Compile-time check
var _ domain.Repository = (*BookingGormRepository)(nil)
