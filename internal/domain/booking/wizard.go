package booking

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/BruksfildServices01/coach-scheduler/internal/models"
	"github.com/BruksfildServices01/coach-scheduler/internal/timezone"
)

const (
	dateLayout          = "2006-01-02"
	DefaultIntroMinutes = 15
)

// ======================================================
// TYPES
// ======================================================

// Kind is what the student is booking.
type Kind string

const (
	KindFreeIntro Kind = "free-intro"
	KindSession   Kind = "session"
)

func (k Kind) Valid() bool {
	return k == KindFreeIntro || k == KindSession
}

// Step is the wizard cursor.
type Step string

const (
	StepService    Step = "service-selection"
	StepDateTime   Step = "datetime-selection"
	StepDetails    Step = "contact-details"
	StepSubmitting Step = "submitting"
	StepConfirmed  Step = "confirmed"
	StepFailed     Step = "failed"
)

// Index is the position of the step in the linear flow. Failed shares the
// index of contact-details since a retry resumes there.
func (s Step) Index() int {
	switch s {
	case StepService:
		return 0
	case StepDateTime:
		return 1
	case StepDetails, StepFailed:
		return 2
	case StepSubmitting:
		return 3
	case StepConfirmed:
		return 4
	}
	return -1
}

type SelectedService struct {
	ID          string `json:"id"`
	PackageID   string `json:"package_id,omitempty"`
	Name        string `json:"name"`
	Duration    string `json:"duration"`
	Price       int    `json:"price"`
	Description string `json:"description,omitempty"`
}

type FormData struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
	Notes string `json:"notes,omitempty"`
}

// Validate checks the contact fields required before any write.
func (f FormData) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("%w: name", ErrMissingField)
	}
	if strings.TrimSpace(f.Email) == "" {
		return fmt.Errorf("%w: email", ErrMissingField)
	}
	if _, err := mail.ParseAddress(f.Email); err != nil {
		return invalidSelection("email is not valid", f.Email)
	}
	return nil
}

// State is the serialisable snapshot of one booking attempt.
type State struct {
	ID        string `json:"id"`
	Kind      Kind   `json:"kind"`
	Step      Step   `json:"step"`
	CoachID   string `json:"coach_id"`
	CoachName string `json:"coach_name"`
	StudentID string `json:"student_id,omitempty"`
	Owner     string `json:"owner,omitempty"`
	Timezone  string `json:"timezone"`

	IntroMinutes int `json:"intro_minutes,omitempty"`

	Service *SelectedService `json:"selected_service,omitempty"`
	Date    string           `json:"selected_date,omitempty"`
	Time    string           `json:"selected_time,omitempty"`
	Form    *FormData        `json:"form_data,omitempty"`

	BookingID        string `json:"booking_id,omitempty"`
	BookingReference string `json:"booking_reference,omitempty"`
	LastError        string `json:"last_error,omitempty"`
	Closed           bool   `json:"closed,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (s State) clone() State {
	out := s
	if s.Service != nil {
		svc := *s.Service
		out.Service = &svc
	}
	if s.Form != nil {
		f := *s.Form
		out.Form = &f
	}
	return out
}

// ======================================================
// WIZARD
// ======================================================

// Wizard sequences service → date/time → contact details → submit.
// It is safe for concurrent use; at most one store write is in flight.
type Wizard struct {
	mu     sync.Mutex
	state  State
	policy AvailabilityPolicy
	store  Store
	now    func() time.Time
	loc    *time.Location

	onSubmitting func(ctx context.Context, st State) error
}

type Option func(*Wizard)

func WithClock(now func() time.Time) Option {
	return func(w *Wizard) { w.now = now }
}

// WithSubmittingHook runs after the wizard enters submitting and before the
// store write. An error aborts the submission without writing.
func WithSubmittingHook(fn func(ctx context.Context, st State) error) Option {
	return func(w *Wizard) { w.onSubmitting = fn }
}

// NewWizard starts (or resumes, when st.Step is set) a booking attempt.
func NewWizard(
	st State,
	policy AvailabilityPolicy,
	store Store,
	opts ...Option,
) (*Wizard, error) {

	if !st.Kind.Valid() {
		return nil, fmt.Errorf("invalid booking kind %q", st.Kind)
	}
	if st.CoachID == "" {
		return nil, fmt.Errorf("%w: coach_id", ErrMissingField)
	}
	if policy == nil || store == nil {
		return nil, fmt.Errorf("wizard needs an availability policy and a store")
	}

	w := &Wizard{
		state:  st.clone(),
		policy: policy,
		store:  store,
		now:    time.Now,
		loc:    timezone.Location(st.Timezone),
	}
	for _, opt := range opts {
		opt(w)
	}

	if w.state.Timezone == "" {
		w.state.Timezone = w.loc.String()
	}
	if w.state.Step == "" {
		w.state.Step = firstStep(st.Kind)
	}
	if w.state.CreatedAt.IsZero() {
		w.state.CreatedAt = w.now()
	}

	return w, nil
}

// Interrupted moves a snapshot stuck in submitting to failed. Callers use it
// only when they know no write is in flight anymore (e.g. the submit lock
// expired), so the student can retry.
func (w *Wizard) Interrupted() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state.Step != StepSubmitting {
		return false
	}
	w.state.Step = StepFailed
	w.state.LastError = "previous submission did not complete"
	return true
}

func firstStep(k Kind) Step {
	if k == KindFreeIntro {
		return StepDateTime
	}
	return StepService
}

// State returns a copy of the current snapshot.
func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state.clone()
}

func (w *Wizard) Location() *time.Location {
	return w.loc
}

// Slots returns the policy's slots for the calendar day of date.
func (w *Wizard) Slots(date time.Time) []TimeSlot {
	return w.policy.SlotsFor(CalendarDay(date, w.loc))
}

// SelectService stores the chosen offering and advances to date/time.
func (w *Wizard) SelectService(svc SelectedService) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.expect(StepService); err != nil {
		return err
	}
	if strings.TrimSpace(svc.Name) == "" {
		return invalidSelection("service has no name", svc.ID)
	}
	if _, err := ParseDurationText(svc.Duration); err != nil {
		return invalidSelection("service duration is not readable", svc.Duration)
	}
	if svc.Price < 0 {
		return invalidSelection("service price is negative", fmt.Sprint(svc.Price))
	}

	w.state.Service = &svc
	w.state.Step = StepDateTime
	return nil
}

// SelectDateTime checks the date is today or later and the clock is an
// available slot for that day, then advances to contact details.
func (w *Wizard) SelectDateTime(date time.Time, clock string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.expect(StepDateTime); err != nil {
		return err
	}

	now := w.now().In(w.loc)
	day := CalendarDay(date, w.loc)
	if day.Before(StartOfDay(now, w.loc)) {
		return invalidSelection("date is in the past", day.Format(dateLayout))
	}

	slot, ok := FindSlot(w.policy.SlotsFor(day), clock)
	if !ok {
		return invalidSelection("time is not offered on this date", clock)
	}
	if !slot.Available {
		return invalidSelection("time slot is not available", clock)
	}

	start, err := ApplyClock(day, slot.Time)
	if err != nil {
		return invalidSelection(err.Error(), clock)
	}
	if !start.After(now) {
		return invalidSelection("time has already passed", clock)
	}

	w.state.Date = day.Format(dateLayout)
	w.state.Time = slot.Time
	w.state.Step = StepDetails
	return nil
}

// Back returns one step without discarding entered data.
func (w *Wizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state.Closed {
		return ErrSessionClosed
	}

	switch w.state.Step {
	case StepDateTime:
		if w.state.Kind == KindFreeIntro {
			return ErrWrongStep
		}
		w.state.Step = StepService
	case StepDetails, StepFailed:
		w.state.Step = StepDateTime
	case StepSubmitting:
		return ErrSubmitInFlight
	default:
		return ErrWrongStep
	}
	return nil
}

// Retry moves a failed attempt back to contact details, keeping all data.
func (w *Wizard) Retry() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.expect(StepFailed); err != nil {
		return err
	}
	w.state.Step = StepDetails
	return nil
}

// Cancel discards the attempt. A write already in flight cannot be
// cancelled.
func (w *Wizard) Cancel() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state.Step == StepSubmitting {
		return ErrSubmitInFlight
	}

	w.state = State{
		ID:        w.state.ID,
		Kind:      w.state.Kind,
		CoachID:   w.state.CoachID,
		Owner:     w.state.Owner,
		Timezone:  w.state.Timezone,
		Closed:    true,
		CreatedAt: w.state.CreatedAt,
	}
	return nil
}

// Payload composes the store input from the accumulated state.
func (w *Wizard) Payload() (CreateBookingInput, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.payloadLocked()
}

// Submit sends the booking to the store. Allowed from contact details and,
// as a retry, from failed. Nothing is written unless every required field
// is present.
func (w *Wizard) Submit(ctx context.Context, form FormData) (*models.Booking, error) {
	w.mu.Lock()

	if w.state.Closed {
		w.mu.Unlock()
		return nil, ErrSessionClosed
	}
	switch w.state.Step {
	case StepSubmitting:
		w.mu.Unlock()
		return nil, ErrSubmitInFlight
	case StepDetails, StepFailed:
	default:
		w.mu.Unlock()
		return nil, ErrWrongStep
	}

	if err := form.Validate(); err != nil {
		w.mu.Unlock()
		return nil, err
	}
	w.state.Form = &form

	in, err := w.payloadLocked()
	if err != nil {
		w.mu.Unlock()
		return nil, err
	}

	prevStep := w.state.Step
	w.state.Step = StepSubmitting
	w.state.LastError = ""
	snapshot := w.state.clone()
	w.mu.Unlock()

	if w.onSubmitting != nil {
		if err := w.onSubmitting(ctx, snapshot); err != nil {
			w.mu.Lock()
			w.state.Step = prevStep
			w.mu.Unlock()
			return nil, err
		}
	}

	b, err := w.store.CreateBooking(ctx, in)

	w.mu.Lock()
	defer w.mu.Unlock()

	if err != nil {
		w.state.Step = StepFailed
		w.state.LastError = err.Error()
		return nil, err
	}

	w.state.Step = StepConfirmed
	w.state.BookingID = b.ID
	w.state.BookingReference = b.Reference
	return b, nil
}

// ======================================================
// HELPERS
// ======================================================

func (w *Wizard) expect(step Step) error {
	if w.state.Closed {
		return ErrSessionClosed
	}
	if w.state.Step == StepSubmitting && step != StepSubmitting {
		return ErrSubmitInFlight
	}
	if w.state.Step != step {
		return fmt.Errorf("%w: at %s", ErrWrongStep, w.state.Step)
	}
	return nil
}

func (w *Wizard) payloadLocked() (CreateBookingInput, error) {
	st := w.state

	if st.Kind == KindSession && st.Service == nil {
		return CreateBookingInput{}, fmt.Errorf("%w: selected_service", ErrMissingField)
	}
	if st.Date == "" {
		return CreateBookingInput{}, fmt.Errorf("%w: selected_date", ErrMissingField)
	}
	if st.Time == "" {
		return CreateBookingInput{}, fmt.Errorf("%w: selected_time", ErrMissingField)
	}
	if st.Form == nil {
		return CreateBookingInput{}, fmt.Errorf("%w: form_data", ErrMissingField)
	}

	day, err := time.ParseInLocation(dateLayout, st.Date, w.loc)
	if err != nil {
		return CreateBookingInput{}, fmt.Errorf("%w: selected_date %q", ErrMissingField, st.Date)
	}
	scheduledAt, err := ApplyClock(day, st.Time)
	if err != nil {
		return CreateBookingInput{}, err
	}

	in := CreateBookingInput{
		CoachID:      st.CoachID,
		ScheduledAt:  scheduledAt,
		Notes:        st.Form.Notes,
		ContactName:  st.Form.Name,
		ContactEmail: st.Form.Email,
		ContactPhone: st.Form.Phone,
	}
	if st.StudentID != "" {
		id := st.StudentID
		in.StudentID = &id
	}

	switch st.Kind {
	case KindFreeIntro:
		in.Type = TypeIntro
		in.Duration = st.IntroMinutes
		if in.Duration <= 0 {
			in.Duration = DefaultIntroMinutes
		}
	case KindSession:
		svc := st.Service
		minutes, err := ParseDurationText(svc.Duration)
		if err != nil {
			return CreateBookingInput{}, err
		}
		in.Type = TypeSession
		in.Duration = minutes
		in.Price = svc.Price
		if svc.ID != "" {
			id := svc.ID
			in.ServiceID = &id
		}
		if svc.PackageID != "" {
			pkg := svc.PackageID
			in.PackageID = &pkg
			in.Type = TypePackageSession
		}
	}

	if err := in.Validate(); err != nil {
		return CreateBookingInput{}, err
	}
	return in, nil
}
