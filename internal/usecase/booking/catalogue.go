package booking

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/coach-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/coach-scheduler/internal/httperr"
	"github.com/BruksfildServices01/coach-scheduler/internal/models"
	"github.com/BruksfildServices01/coach-scheduler/internal/timezone"
)

// ======================================================
// COACHES
// ======================================================

type Catalogue struct {
	repo domain.Repository
}

func NewCatalogue(repo domain.Repository) *Catalogue {
	return &Catalogue{repo: repo}
}

func (uc *Catalogue) Coaches(ctx context.Context) ([]models.Coach, error) {
	return uc.repo.ListCoaches(ctx)
}

// Coach returns the profile with its active services attached.
func (uc *Catalogue) Coach(ctx context.Context, slug string) (*models.Coach, error) {
	c, err := uc.repo.GetCoachBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	services, err := uc.repo.ListServices(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.Services = services
	return c, nil
}

func (uc *Catalogue) Services(ctx context.Context, slug string) ([]models.CoachService, error) {
	c, err := uc.repo.GetCoachBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return uc.repo.ListServices(ctx, c.ID)
}

// ======================================================
// SLOTS
// ======================================================

type GetSlotsInput struct {
	CoachSlug string
	Date      string // YYYY-MM-DD
	ServiceID string // optional; sizes the overlap check
}

type SlotsOutput struct {
	Date     string            `json:"date"`
	Timezone string            `json:"timezone"`
	Slots    []domain.TimeSlot `json:"slots"`
}

type GetSlots struct {
	repo domain.Repository
	now  func() time.Time
}

func NewGetSlots(repo domain.Repository) *GetSlots {
	return &GetSlots{repo: repo, now: time.Now}
}

func (uc *GetSlots) Execute(ctx context.Context, in GetSlotsInput) (*SlotsOutput, error) {
	c, err := uc.repo.GetCoachBySlug(ctx, in.CoachSlug)
	if err != nil {
		return nil, err
	}

	loc := timezone.Location(c.Timezone)
	day, err := time.ParseInLocation(dateLayout, in.Date, loc)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date")
	}

	minutes := c.IntroMinutes
	if in.ServiceID != "" {
		svc, err := uc.repo.GetService(ctx, c.ID, in.ServiceID)
		if err != nil {
			return nil, err
		}
		minutes = svc.DurationMin
	}

	policy, err := reservedPolicy(ctx, uc.repo, c.ID, day, loc, minutes, uc.now())
	if err != nil {
		return nil, err
	}

	return &SlotsOutput{
		Date:     day.Format(dateLayout),
		Timezone: loc.String(),
		Slots:    policy.SlotsFor(day),
	}, nil
}

// reservedPolicy is the default schedule with the coach's existing
// bookings on day and every slot not after now blocked out.
func reservedPolicy(
	ctx context.Context,
	repo domain.Repository,
	coachID string,
	day time.Time,
	loc *time.Location,
	minutes int,
	now time.Time,
) (domain.ReservedPolicy, error) {

	if minutes <= 0 {
		minutes = domain.DefaultIntroMinutes
	}

	start := domain.CalendarDay(day, loc)
	windows, err := repo.ListReservedWindows(ctx, coachID, start, start.AddDate(0, 0, 1))
	if err != nil {
		return domain.ReservedPolicy{}, err
	}

	return domain.ReservedPolicy{
		Base:     domain.DefaultPolicy(),
		Location: loc,
		Duration: time.Duration(minutes) * time.Minute,
		Reserved: windows,
		Now:      now,
	}, nil
}
