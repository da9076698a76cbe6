package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/BruksfildServices01/coach-scheduler/internal/models"
)

// fakeStore records writes. When gate is set each write blocks until it is
// closed; entered is signalled once the write has started.
type fakeStore struct {
	mu      sync.Mutex
	calls   []CreateBookingInput
	fail    error
	gate    chan struct{}
	entered chan struct{}
}

func (s *fakeStore) CreateBooking(ctx context.Context, in CreateBookingInput) (*models.Booking, error) {
	s.mu.Lock()
	s.calls = append(s.calls, in)
	n := len(s.calls)
	fail := s.fail
	s.mu.Unlock()

	if s.entered != nil {
		s.entered <- struct{}{}
	}
	if s.gate != nil {
		<-s.gate
	}
	if fail != nil {
		return nil, fail
	}

	return &models.Booking{
		ID:          "bk-" + string(rune('0'+n)),
		Reference:   "REF0000" + string(rune('0'+n)),
		CoachID:     in.CoachID,
		Type:        string(in.Type),
		ScheduledAt: in.ScheduledAt,
		Duration:    in.Duration,
		Price:       in.Price,
		Status:      string(InitialStatus(in.Type)),
	}, nil
}

func (s *fakeStore) writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *fakeStore) last() CreateBookingInput {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[len(s.calls)-1]
}

// Friday 2026-10-16 10:00 UTC.
var fixedNow = time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)

var tuesday = time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)

var resumeReview = SelectedService{
	ID:       "svc-resume",
	Name:     "Resume Review",
	Duration: "60 min",
	Price:    150,
}

var validForm = FormData{Name: "Alex Student", Email: "alex@example.com", Phone: "555-0100"}

func newTestWizard(t *testing.T, kind Kind, store Store, opts ...Option) *Wizard {
	t.Helper()

	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	w, err := NewWizard(State{
		ID:        "sess-1",
		Kind:      kind,
		CoachID:   "coach-1",
		CoachName: "Jane Doe",
		Timezone:  "UTC",
	}, DefaultPolicy(), store, opts...)
	if err != nil {
		t.Fatalf("NewWizard: %v", err)
	}
	return w
}

func walkToDetails(t *testing.T, w *Wizard) {
	t.Helper()
	if w.State().Step == StepService {
		if err := w.SelectService(resumeReview); err != nil {
			t.Fatalf("SelectService: %v", err)
		}
	}
	if err := w.SelectDateTime(tuesday, "2:00 PM"); err != nil {
		t.Fatalf("SelectDateTime: %v", err)
	}
}

func TestWizardSessionHappyPath(t *testing.T) {
	store := &fakeStore{}
	w := newTestWizard(t, KindSession, store)

	if got := w.State().Step; got != StepService {
		t.Fatalf("initial step = %s", got)
	}

	if err := w.SelectService(resumeReview); err != nil {
		t.Fatal(err)
	}
	if got := w.State().Step; got != StepDateTime {
		t.Fatalf("after service: %s", got)
	}

	if err := w.SelectDateTime(tuesday, "2:00 pm"); err != nil {
		t.Fatal(err)
	}
	st := w.State()
	if st.Step != StepDetails || st.Date != "2026-10-20" || st.Time != "2:00 PM" {
		t.Fatalf("after datetime: %+v", st)
	}

	b, err := w.Submit(context.Background(), validForm)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if b.Status != string(StatusPending) {
		t.Errorf("session status = %s, want pending", b.Status)
	}

	st = w.State()
	if st.Step != StepConfirmed || st.BookingID != b.ID || st.BookingReference != b.Reference {
		t.Fatalf("final state: %+v", st)
	}

	in := store.last()
	want := time.Date(2026, 10, 20, 14, 0, 0, 0, time.UTC)
	if !in.ScheduledAt.Equal(want) {
		t.Errorf("scheduled_at = %s, want %s", in.ScheduledAt, want)
	}
	if in.Type != TypeSession || in.Duration != 60 || in.Price != 150 {
		t.Errorf("payload = %+v", in)
	}
	if in.ServiceID == nil || *in.ServiceID != "svc-resume" {
		t.Errorf("service id = %v", in.ServiceID)
	}
	if in.ContactEmail != "alex@example.com" {
		t.Errorf("contact email = %q", in.ContactEmail)
	}
}

func TestWizardFreeIntroSkipsServiceStep(t *testing.T) {
	store := &fakeStore{}
	w := newTestWizard(t, KindFreeIntro, store)

	if got := w.State().Step; got != StepDateTime {
		t.Fatalf("free intro starts at %s", got)
	}
	if err := w.SelectService(resumeReview); !errors.Is(err, ErrWrongStep) {
		t.Fatalf("SelectService on intro: got %v", err)
	}
	if err := w.Back(); !errors.Is(err, ErrWrongStep) {
		t.Fatalf("Back from first intro step: got %v", err)
	}

	walkToDetails(t, w)
	b, err := w.Submit(context.Background(), validForm)
	if err != nil {
		t.Fatal(err)
	}
	if b.Status != string(StatusConfirmed) {
		t.Errorf("intro status = %s, want confirmed", b.Status)
	}

	in := store.last()
	if in.Type != TypeIntro || in.Duration != DefaultIntroMinutes || in.Price != 0 || in.ServiceID != nil {
		t.Errorf("intro payload = %+v", in)
	}
}

func TestWizardPackageSessionType(t *testing.T) {
	store := &fakeStore{}
	w := newTestWizard(t, KindSession, store)

	pkg := resumeReview
	pkg.PackageID = "pkg-3"
	if err := w.SelectService(pkg); err != nil {
		t.Fatal(err)
	}
	if err := w.SelectDateTime(tuesday, "10:00 AM"); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Submit(context.Background(), validForm); err != nil {
		t.Fatal(err)
	}

	in := store.last()
	if in.Type != TypePackageSession || in.PackageID == nil || *in.PackageID != "pkg-3" {
		t.Fatalf("package payload = %+v", in)
	}
}

func TestWizardRejectsInvalidSelections(t *testing.T) {
	cases := []struct {
		name  string
		date  time.Time
		clock string
	}{
		{"unavailable slot", tuesday, "11:00 AM"},
		{"time not offered", tuesday, "2:30 PM"},
		{"weekday time on weekend", time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC), "9:00 AM"},
		{"past date", time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC), "2:00 PM"},
		{"earlier today", fixedNow, "9:00 AM"},
		{"malformed", tuesday, "25:99 AM"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := newTestWizard(t, KindFreeIntro, &fakeStore{})

			err := w.SelectDateTime(tc.date, tc.clock)
			if !IsInvalidSelection(err) {
				t.Fatalf("got %v, want invalid selection", err)
			}
			st := w.State()
			if st.Step != StepDateTime || st.Date != "" || st.Time != "" {
				t.Fatalf("state changed on rejection: %+v", st)
			}
		})
	}
}

func TestWizardAcceptsLaterSlotToday(t *testing.T) {
	w := newTestWizard(t, KindFreeIntro, &fakeStore{})

	if err := w.SelectDateTime(fixedNow, "12:00 PM"); err != nil {
		t.Fatalf("later slot today refused: %v", err)
	}
}

func TestWizardRejectsBadService(t *testing.T) {
	w := newTestWizard(t, KindSession, &fakeStore{})

	bad := resumeReview
	bad.Duration = "a while"
	if err := w.SelectService(bad); !IsInvalidSelection(err) {
		t.Fatalf("got %v", err)
	}
	if w.State().Step != StepService {
		t.Fatal("step advanced on rejected service")
	}
}

func TestWizardBackKeepsData(t *testing.T) {
	w := newTestWizard(t, KindSession, &fakeStore{})
	walkToDetails(t, w)

	if err := w.Back(); err != nil {
		t.Fatal(err)
	}
	st := w.State()
	if st.Step != StepDateTime || st.Date != "2026-10-20" || st.Time != "2:00 PM" {
		t.Fatalf("after back: %+v", st)
	}

	if err := w.Back(); err != nil {
		t.Fatal(err)
	}
	st = w.State()
	if st.Step != StepService || st.Service == nil || st.Service.ID != "svc-resume" {
		t.Fatalf("after second back: %+v", st)
	}

	if err := w.Back(); !errors.Is(err, ErrWrongStep) {
		t.Fatalf("back from first step: got %v", err)
	}
}

func TestWizardSubmitRequiresAllFields(t *testing.T) {
	store := &fakeStore{}
	w := newTestWizard(t, KindSession, store)

	// not yet at contact details
	if _, err := w.Submit(context.Background(), validForm); !errors.Is(err, ErrWrongStep) {
		t.Fatalf("early submit: got %v", err)
	}

	walkToDetails(t, w)

	for _, form := range []FormData{
		{Email: "alex@example.com"},
		{Name: "Alex"},
		{Name: "   ", Email: "alex@example.com"},
	} {
		if _, err := w.Submit(context.Background(), form); !errors.Is(err, ErrMissingField) {
			t.Errorf("form %+v: got %v, want ErrMissingField", form, err)
		}
	}

	if _, err := w.Submit(context.Background(), FormData{Name: "Alex", Email: "not-an-email"}); !IsInvalidSelection(err) {
		t.Errorf("bad email: got %v", err)
	}

	if store.writes() != 0 {
		t.Fatalf("store written %d times with incomplete data", store.writes())
	}
	if w.State().Step != StepDetails {
		t.Fatalf("step = %s", w.State().Step)
	}
}

func TestWizardFailureAndRetry(t *testing.T) {
	rejected := errors.New("slot already taken")
	store := &fakeStore{fail: rejected}
	w := newTestWizard(t, KindSession, store)
	walkToDetails(t, w)

	_, err := w.Submit(context.Background(), validForm)
	if !errors.Is(err, rejected) {
		t.Fatalf("store error not surfaced: %v", err)
	}
	st := w.State()
	if st.Step != StepFailed || st.LastError != rejected.Error() {
		t.Fatalf("after failure: %+v", st)
	}
	if st.Form == nil || st.Form.Name != validForm.Name || st.Time != "2:00 PM" {
		t.Fatalf("entered data lost: %+v", st)
	}

	if err := w.Retry(); err != nil {
		t.Fatal(err)
	}
	if w.State().Step != StepDetails {
		t.Fatalf("retry lands on %s", w.State().Step)
	}

	store.mu.Lock()
	store.fail = nil
	store.mu.Unlock()

	if _, err := w.Submit(context.Background(), validForm); err != nil {
		t.Fatal(err)
	}
	if store.writes() != 2 {
		t.Fatalf("writes = %d, want 2", store.writes())
	}
	if w.State().Step != StepConfirmed {
		t.Fatalf("step = %s", w.State().Step)
	}
}

func TestWizardSubmitFromFailedResubmits(t *testing.T) {
	store := &fakeStore{fail: errors.New("boom")}
	w := newTestWizard(t, KindFreeIntro, store)
	walkToDetails(t, w)

	_, _ = w.Submit(context.Background(), validForm)

	store.mu.Lock()
	store.fail = nil
	store.mu.Unlock()

	if _, err := w.Submit(context.Background(), validForm); err != nil {
		t.Fatalf("submit from failed: %v", err)
	}
}

func TestWizardSingleWriteInFlight(t *testing.T) {
	store := &fakeStore{gate: make(chan struct{}), entered: make(chan struct{}, 1)}
	w := newTestWizard(t, KindSession, store)
	walkToDetails(t, w)

	done := make(chan error, 1)
	go func() {
		_, err := w.Submit(context.Background(), validForm)
		done <- err
	}()

	<-store.entered

	if got := w.State().Step; got != StepSubmitting {
		t.Fatalf("step during write = %s", got)
	}
	if _, err := w.Submit(context.Background(), validForm); !errors.Is(err, ErrSubmitInFlight) {
		t.Fatalf("second submit: got %v", err)
	}
	if err := w.Cancel(); !errors.Is(err, ErrSubmitInFlight) {
		t.Fatalf("cancel during write: got %v", err)
	}
	if err := w.Back(); !errors.Is(err, ErrSubmitInFlight) {
		t.Fatalf("back during write: got %v", err)
	}

	close(store.gate)
	if err := <-done; err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if store.writes() != 1 {
		t.Fatalf("writes = %d, want 1", store.writes())
	}
}

func TestWizardCancelCloses(t *testing.T) {
	store := &fakeStore{}
	w := newTestWizard(t, KindSession, store)
	walkToDetails(t, w)

	if err := w.Cancel(); err != nil {
		t.Fatal(err)
	}
	st := w.State()
	if !st.Closed || st.Service != nil || st.Date != "" || st.Form != nil {
		t.Fatalf("cancel kept data: %+v", st)
	}

	if _, err := w.Submit(context.Background(), validForm); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("submit after cancel: got %v", err)
	}
	if err := w.SelectService(resumeReview); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("select after cancel: got %v", err)
	}
	if store.writes() != 0 {
		t.Fatal("cancelled session wrote a booking")
	}
}

func TestWizardSubmittingHookAbort(t *testing.T) {
	store := &fakeStore{}
	hookErr := errors.New("lock unavailable")

	var seen Step
	w := newTestWizard(t, KindSession, store, WithSubmittingHook(func(ctx context.Context, st State) error {
		seen = st.Step
		return hookErr
	}))
	walkToDetails(t, w)

	if _, err := w.Submit(context.Background(), validForm); !errors.Is(err, hookErr) {
		t.Fatalf("got %v", err)
	}
	if seen != StepSubmitting {
		t.Errorf("hook saw step %s", seen)
	}
	if w.State().Step != StepDetails {
		t.Errorf("step after aborted submit = %s", w.State().Step)
	}
	if store.writes() != 0 {
		t.Error("store written after hook abort")
	}
}

func TestWizardInterrupted(t *testing.T) {
	w, err := NewWizard(State{
		ID:       "sess-2",
		Kind:     KindFreeIntro,
		CoachID:  "coach-1",
		Step:     StepSubmitting,
		Timezone: "UTC",
	}, DefaultPolicy(), &fakeStore{})
	if err != nil {
		t.Fatal(err)
	}

	if !w.Interrupted() {
		t.Fatal("submitting snapshot not flagged")
	}
	if st := w.State(); st.Step != StepFailed || st.LastError == "" {
		t.Fatalf("state = %+v", st)
	}
	if w.Interrupted() {
		t.Fatal("failed snapshot flagged twice")
	}
}

func TestNewWizardValidation(t *testing.T) {
	if _, err := NewWizard(State{Kind: "other", CoachID: "c"}, DefaultPolicy(), &fakeStore{}); err == nil {
		t.Error("unknown kind accepted")
	}
	if _, err := NewWizard(State{Kind: KindSession}, DefaultPolicy(), &fakeStore{}); !errors.Is(err, ErrMissingField) {
		t.Errorf("missing coach: got %v", err)
	}
	if _, err := NewWizard(State{Kind: KindSession, CoachID: "c"}, nil, &fakeStore{}); err == nil {
		t.Error("nil policy accepted")
	}
}

func TestStepIndex(t *testing.T) {
	order := []Step{StepService, StepDateTime, StepDetails, StepSubmitting, StepConfirmed}
	for i, s := range order {
		if s.Index() != i {
			t.Errorf("%s index = %d, want %d", s, s.Index(), i)
		}
	}
	if StepFailed.Index() != StepDetails.Index() {
		t.Error("failed should share the contact-details index")
	}
}
