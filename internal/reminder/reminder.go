package reminder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/coach-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/coach-scheduler/internal/models"
	"github.com/BruksfildServices01/coach-scheduler/internal/timezone"
)

const TypeBookingReminder = "booking:reminder"

type Payload struct {
	BookingID string `json:"booking_id"`
}

// NewTask builds the reminder task for a booking, fired at fireAt. The task
// id is derived from the booking so a booking is reminded once.
func NewTask(bookingID string, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(Payload{BookingID: bookingID})
	if err != nil {
		return nil, nil, err
	}

	task := asynq.NewTask(TypeBookingReminder, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.TaskID("reminder:" + bookingID),
		asynq.MaxRetry(3),
	}
	return task, opts, nil
}

// ======================================================
// SCHEDULER (api side)
// ======================================================

type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type Scheduler struct {
	client Enqueuer
	lead   time.Duration
	now    func() time.Time
}

func NewScheduler(client Enqueuer, lead time.Duration) *Scheduler {
	return &Scheduler{client: client, lead: lead, now: time.Now}
}

// Schedule enqueues a reminder lead before the booking starts. Bookings that
// start sooner than that are not reminded.
func (s *Scheduler) Schedule(ctx context.Context, b *models.Booking) error {
	fireAt := b.ScheduledAt.Add(-s.lead)
	if !fireAt.After(s.now()) {
		return nil
	}

	task, opts, err := NewTask(b.ID, fireAt)
	if err != nil {
		return err
	}

	if _, err := s.client.EnqueueContext(ctx, task, opts...); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return nil
		}
		return fmt.Errorf("failed to enqueue reminder: %w", err)
	}
	return nil
}

// ======================================================
// HANDLER (worker side)
// ======================================================

type BookingLoader interface {
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
}

type Handler struct {
	repo BookingLoader
	log  *zap.Logger
}

func NewHandler(repo BookingLoader, log *zap.Logger) *Handler {
	return &Handler{repo: repo, log: log}
}

// ProcessTask logs the reminder with both calendar links. Cancelled or
// completed bookings are skipped.
func (h *Handler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p Payload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("invalid reminder payload: %v: %w", err, asynq.SkipRetry)
	}

	b, err := h.repo.GetBooking(ctx, p.BookingID)
	if err != nil {
		return err
	}

	if !booking.Status(b.Status).Active() {
		h.log.Info("reminder skipped",
			zap.String("booking_id", b.ID),
			zap.String("status", b.Status),
		)
		return nil
	}

	ev := booking.EventFor(b, timezone.Location(b.Coach.Timezone))

	google, err := booking.GoogleCalendarURL(ev)
	if err != nil {
		return fmt.Errorf("reminder calendar link: %v: %w", err, asynq.SkipRetry)
	}

	h.log.Info("booking reminder",
		zap.String("booking_id", b.ID),
		zap.String("reference", b.Reference),
		zap.String("coach", b.Coach.Name),
		zap.String("contact_email", b.ContactEmail),
		zap.Time("scheduled_at", b.ScheduledAt),
		zap.String("google_calendar_url", google),
		zap.String("ics_file", booking.ICSFilename(b.Coach.Name, ev.Date)),
	)
	return nil
}
