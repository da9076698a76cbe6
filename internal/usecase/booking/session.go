package booking

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/coach-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/coach-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/coach-scheduler/internal/httperr"
	"github.com/BruksfildServices01/coach-scheduler/internal/idgen"
	"github.com/BruksfildServices01/coach-scheduler/internal/models"
	"github.com/BruksfildServices01/coach-scheduler/internal/timezone"
)

const dateLayout = "2006-01-02"

// ReminderScheduler is satisfied by *reminder.Scheduler.
type ReminderScheduler interface {
	Schedule(ctx context.Context, b *models.Booking) error
}

type SessionConfig struct {
	FreeIntroMinutes int
	SubmitLockTTL    time.Duration

	// EmailCheck, when set, must accept the contact email before anything
	// is written.
	EmailCheck func(email string) bool
}

// ======================================================
// INPUT
// ======================================================

type StartSessionInput struct {
	CoachSlug string
	Kind      domain.Kind
	Timezone  string
	Owner     string
}

// SubmitResult is the state after a submit together with the stored
// booking, when one was created.
type SubmitResult struct {
	State   domain.State
	Booking *models.Booking
}

// ======================================================
// SERVICE
// ======================================================

// SessionService drives the booking wizard across HTTP requests. Each call
// loads the snapshot, applies one wizard operation and saves it back.
type SessionService struct {
	repo      domain.Repository
	sessions  domain.SessionStore
	audit     *audit.Dispatcher
	reminders ReminderScheduler
	log       *zap.Logger
	cfg       SessionConfig
	now       func() time.Time
}

func NewSessionService(
	repo domain.Repository,
	sessions domain.SessionStore,
	audit *audit.Dispatcher,
	reminders ReminderScheduler,
	log *zap.Logger,
	cfg SessionConfig,
) *SessionService {

	if log == nil {
		log = zap.NewNop()
	}
	if cfg.SubmitLockTTL <= 0 {
		cfg.SubmitLockTTL = 30 * time.Second
	}

	return &SessionService{
		repo:      repo,
		sessions:  sessions,
		audit:     audit,
		reminders: reminders,
		log:       log,
		cfg:       cfg,
		now:       time.Now,
	}
}

// --------------------------------------------------
// Start / Get
// --------------------------------------------------

func (s *SessionService) Start(ctx context.Context, in StartSessionInput) (domain.State, error) {
	if !in.Kind.Valid() {
		return domain.State{}, httperr.ErrBusiness("invalid_kind")
	}

	c, err := s.repo.GetCoachBySlug(ctx, in.CoachSlug)
	if err != nil {
		return domain.State{}, err
	}
	if in.Kind == domain.KindFreeIntro && !c.IntroEnabled {
		return domain.State{}, httperr.ErrBusiness("intro_not_offered")
	}

	tz := c.Timezone
	if timezone.IsValid(in.Timezone) {
		tz = in.Timezone
	}

	introMinutes := c.IntroMinutes
	if introMinutes <= 0 {
		introMinutes = s.cfg.FreeIntroMinutes
	}

	w, err := domain.NewWizard(domain.State{
		ID:           idgen.NewID(),
		Kind:         in.Kind,
		CoachID:      c.ID,
		CoachName:    c.Name,
		Owner:        in.Owner,
		Timezone:     tz,
		IntroMinutes: introMinutes,
	}, domain.DefaultPolicy(), s.repo, domain.WithClock(s.now))
	if err != nil {
		return domain.State{}, err
	}

	st := w.State()
	if err := s.sessions.Save(ctx, st); err != nil {
		return domain.State{}, err
	}

	s.log.Debug("booking session started",
		zap.String("session_id", st.ID),
		zap.String("coach_id", st.CoachID),
		zap.String("kind", string(st.Kind)),
	)
	return st, nil
}

func (s *SessionService) Get(ctx context.Context, id, owner string) (domain.State, error) {
	w, err := s.load(ctx, id, owner, domain.DefaultPolicy())
	if err != nil {
		return domain.State{}, err
	}
	return w.State(), nil
}

// --------------------------------------------------
// Steps
// --------------------------------------------------

func (s *SessionService) SelectService(ctx context.Context, id, owner, serviceID string) (domain.State, error) {
	w, err := s.load(ctx, id, owner, domain.DefaultPolicy())
	if err != nil {
		return domain.State{}, err
	}

	svc, err := s.repo.GetService(ctx, w.State().CoachID, serviceID)
	if err != nil {
		return domain.State{}, err
	}

	selected := domain.SelectedService{
		ID:          svc.ID,
		Name:        svc.Name,
		Duration:    svc.Duration,
		Price:       svc.Price,
		Description: svc.Description,
	}
	if svc.IsPackage {
		selected.PackageID = svc.ID
	}

	if err := w.SelectService(selected); err != nil {
		return domain.State{}, err
	}
	return s.save(ctx, w)
}

// SelectDateTime checks the choice against the default schedule with the
// coach's existing bookings blocked out.
func (s *SessionService) SelectDateTime(ctx context.Context, id, owner, date, clock string) (domain.State, error) {
	st, err := s.loadState(ctx, id, owner)
	if err != nil {
		return domain.State{}, err
	}

	loc := timezone.Location(st.Timezone)
	day, err := time.ParseInLocation(dateLayout, date, loc)
	if err != nil {
		return domain.State{}, &domain.InvalidSelectionError{Reason: "date is not YYYY-MM-DD", Value: date}
	}

	policy, err := reservedPolicy(ctx, s.repo, st.CoachID, day, loc, sessionMinutes(st), s.now())
	if err != nil {
		return domain.State{}, err
	}

	w, err := s.wizard(ctx, st, policy)
	if err != nil {
		return domain.State{}, err
	}
	if err := w.SelectDateTime(day, clock); err != nil {
		return domain.State{}, err
	}
	return s.save(ctx, w)
}

func (s *SessionService) Back(ctx context.Context, id, owner string) (domain.State, error) {
	w, err := s.load(ctx, id, owner, domain.DefaultPolicy())
	if err != nil {
		return domain.State{}, err
	}
	if err := w.Back(); err != nil {
		return domain.State{}, err
	}
	return s.save(ctx, w)
}

func (s *SessionService) Retry(ctx context.Context, id, owner string) (domain.State, error) {
	w, err := s.load(ctx, id, owner, domain.DefaultPolicy())
	if err != nil {
		return domain.State{}, err
	}
	if err := w.Retry(); err != nil {
		return domain.State{}, err
	}
	return s.save(ctx, w)
}

// Cancel discards the session. Refused while a submit is in flight.
func (s *SessionService) Cancel(ctx context.Context, id, owner string) error {
	w, err := s.load(ctx, id, owner, domain.DefaultPolicy())
	if err != nil {
		return err
	}

	locked, err := s.sessions.SubmitLocked(ctx, id)
	if err != nil {
		return err
	}
	if locked {
		return domain.ErrSubmitInFlight
	}

	if err := w.Cancel(); err != nil {
		return err
	}
	return s.sessions.Delete(ctx, id)
}

// --------------------------------------------------
// Submit
// --------------------------------------------------

// Submit performs the single store write for the session. A second submit
// while the first is in flight, from any process sharing the session
// store, gets ErrSubmitInFlight.
func (s *SessionService) Submit(ctx context.Context, id, owner string, form domain.FormData) (*SubmitResult, error) {
	if _, err := s.loadState(ctx, id, owner); err != nil {
		return nil, err
	}

	token := idgen.NewID()
	acquired, err := s.sessions.AcquireSubmitLock(ctx, id, token, s.cfg.SubmitLockTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, domain.ErrSubmitInFlight
	}
	defer func() {
		if err := s.sessions.ReleaseSubmitLock(context.WithoutCancel(ctx), id, token); err != nil {
			s.log.Warn("submit lock release failed", zap.String("session_id", id), zap.Error(err))
		}
	}()

	// reload under the lock
	st, err := s.loadState(ctx, id, owner)
	if err != nil {
		return nil, err
	}

	switch st.Step {
	case domain.StepDetails, domain.StepFailed, domain.StepSubmitting:
		if err := form.Validate(); err != nil {
			return nil, err
		}
		if s.cfg.EmailCheck != nil && !s.cfg.EmailCheck(form.Email) {
			return nil, &domain.InvalidSelectionError{Reason: "email domain does not receive mail", Value: form.Email}
		}
		if owner != "" {
			student, err := s.repo.GetOrCreateStudent(ctx, owner, form.Name, form.Email, form.Phone)
			if err != nil {
				return nil, err
			}
			st.StudentID = student.ID
		}
	}

	w, err := domain.NewWizard(st, domain.DefaultPolicy(), s.repo,
		domain.WithClock(s.now),
		domain.WithSubmittingHook(func(ctx context.Context, snap domain.State) error {
			return s.sessions.Save(ctx, snap)
		}),
	)
	if err != nil {
		return nil, err
	}

	// we own the lock, so a snapshot left in submitting is stale
	w.Interrupted()

	// the write must finish while we still hold the lock
	writeCtx, cancel := context.WithTimeout(ctx, writeBudget(s.cfg.SubmitLockTTL))
	b, submitErr := w.Submit(writeCtx, form)
	cancel()

	final := w.State()
	if err := s.sessions.Save(context.WithoutCancel(ctx), final); err != nil {
		s.log.Error("booking session save failed", zap.String("session_id", id), zap.Error(err))
	}

	if submitErr != nil {
		if final.Step == domain.StepFailed {
			s.log.Warn("booking submit rejected",
				zap.String("session_id", id),
				zap.String("coach_id", final.CoachID),
				zap.Error(submitErr),
			)
			return &SubmitResult{State: final}, submitErr
		}
		return nil, submitErr
	}

	s.afterCreate(ctx, final, b)
	return &SubmitResult{State: final, Booking: b}, nil
}

func (s *SessionService) afterCreate(ctx context.Context, st domain.State, b *models.Booking) {
	var actor *string
	if st.Owner != "" {
		owner := st.Owner
		actor = &owner
	}

	s.audit.Dispatch(audit.Event{
		CoachID:  b.CoachID,
		ActorID:  actor,
		Action:   "booking_created",
		Entity:   "booking",
		EntityID: &b.ID,
		Metadata: map[string]any{
			"type":         b.Type,
			"status":       b.Status,
			"scheduled_at": b.ScheduledAt,
			"session_id":   st.ID,
		},
	})

	if s.reminders != nil {
		if err := s.reminders.Schedule(ctx, b); err != nil {
			s.log.Warn("reminder not scheduled", zap.String("booking_id", b.ID), zap.Error(err))
		}
	}

	s.log.Info("booking created",
		zap.String("booking_id", b.ID),
		zap.String("reference", b.Reference),
		zap.String("type", b.Type),
		zap.String("status", b.Status),
	)
}

// ======================================================
// HELPERS
// ======================================================

func (s *SessionService) loadState(ctx context.Context, id, owner string) (domain.State, error) {
	st, err := s.sessions.Load(ctx, id)
	if err != nil {
		return domain.State{}, err
	}
	if st.Owner != owner || st.Closed {
		return domain.State{}, domain.ErrSessionNotFound
	}
	return st, nil
}

func (s *SessionService) load(ctx context.Context, id, owner string, policy domain.AvailabilityPolicy) (*domain.Wizard, error) {
	st, err := s.loadState(ctx, id, owner)
	if err != nil {
		return nil, err
	}
	return s.wizard(ctx, st, policy)
}

// wizard rebuilds the wizard from a snapshot. A snapshot left in submitting
// without a live submit lock belongs to a write that never finished; it is
// turned into a failed attempt so the student can retry.
func (s *SessionService) wizard(ctx context.Context, st domain.State, policy domain.AvailabilityPolicy) (*domain.Wizard, error) {
	w, err := domain.NewWizard(st, policy, s.repo, domain.WithClock(s.now))
	if err != nil {
		return nil, err
	}

	if st.Step != domain.StepSubmitting {
		return w, nil
	}

	locked, err := s.sessions.SubmitLocked(ctx, st.ID)
	if err != nil {
		return nil, err
	}
	if !locked && w.Interrupted() {
		if _, err := s.save(ctx, w); err != nil {
			return nil, err
		}
	}
	return w, nil
}

func (s *SessionService) save(ctx context.Context, w *domain.Wizard) (domain.State, error) {
	st := w.State()
	if err := s.sessions.Save(ctx, st); err != nil {
		return domain.State{}, err
	}
	return st, nil
}

// writeBudget leaves a fifth of the lock TTL for saving the final state
// and releasing the lock.
func writeBudget(lockTTL time.Duration) time.Duration {
	return lockTTL - lockTTL/5
}

func sessionMinutes(st domain.State) int {
	if st.Kind == domain.KindSession && st.Service != nil {
		if m, err := domain.ParseDurationText(st.Service.Duration); err == nil {
			return m
		}
	}
	return st.IntroMinutes
}
