package booking

import (
	"context"
	"time"

	"github.com/BruksfildServices01/coach-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/coach-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/coach-scheduler/internal/httperr"
	"github.com/BruksfildServices01/coach-scheduler/internal/models"
	"github.com/BruksfildServices01/coach-scheduler/internal/timezone"
)

// transition loads a booking owned by coachID, applies a domain action and
// persists it.
type transition struct {
	repo   domain.Repository
	audit  *audit.Dispatcher
	action string
	apply  func(*models.Booking, time.Time) error
}

func (t transition) run(
	ctx context.Context,
	coachID string,
	bookingID string,
) (*models.Booking, error) {

	b, err := t.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.CoachID != coachID {
		return nil, httperr.ErrBusiness("booking_not_found")
	}

	now := timezone.NowIn(b.Coach.Timezone)
	if err := t.apply(b, now); err != nil {
		return nil, err
	}

	if err := t.repo.UpdateBooking(ctx, b); err != nil {
		return nil, err
	}

	actor := coachID
	t.audit.Dispatch(audit.Event{
		CoachID:  coachID,
		ActorID:  &actor,
		Action:   t.action,
		Entity:   "booking",
		EntityID: &b.ID,
	})

	return b, nil
}

// ======================================================
// CONFIRM
// ======================================================

type ConfirmBooking struct {
	t transition
}

func NewConfirmBooking(repo domain.Repository, audit *audit.Dispatcher) *ConfirmBooking {
	return &ConfirmBooking{t: transition{repo: repo, audit: audit, action: "booking_confirmed", apply: domain.Confirm}}
}

func (uc *ConfirmBooking) Execute(ctx context.Context, coachID, bookingID string) (*models.Booking, error) {
	return uc.t.run(ctx, coachID, bookingID)
}

// ======================================================
// CANCEL
// ======================================================

type CancelBooking struct {
	t transition
}

func NewCancelBooking(repo domain.Repository, audit *audit.Dispatcher) *CancelBooking {
	return &CancelBooking{t: transition{repo: repo, audit: audit, action: "booking_cancelled", apply: domain.Cancel}}
}

func (uc *CancelBooking) Execute(ctx context.Context, coachID, bookingID string) (*models.Booking, error) {
	return uc.t.run(ctx, coachID, bookingID)
}

// ======================================================
// COMPLETE
// ======================================================

type CompleteBooking struct {
	t transition
}

func NewCompleteBooking(repo domain.Repository, audit *audit.Dispatcher) *CompleteBooking {
	return &CompleteBooking{t: transition{repo: repo, audit: audit, action: "booking_completed", apply: domain.Complete}}
}

func (uc *CompleteBooking) Execute(ctx context.Context, coachID, bookingID string) (*models.Booking, error) {
	return uc.t.run(ctx, coachID, bookingID)
}
