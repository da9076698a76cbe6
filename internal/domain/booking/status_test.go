package booking

import (
	"errors"
	"testing"
	"time"

	"github.com/BruksfildServices01/coach-scheduler/internal/httperr"
	"github.com/BruksfildServices01/coach-scheduler/internal/models"
)

func TestInitialStatus(t *testing.T) {
	cases := map[Type]Status{
		TypeIntro:          StatusConfirmed,
		TypeSession:        StatusPending,
		TypePackageSession: StatusPending,
	}
	for typ, want := range cases {
		if got := InitialStatus(typ); got != want {
			t.Errorf("InitialStatus(%s) = %s, want %s", typ, got, want)
		}
	}
}

func TestBookingTransitions(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

	b := &models.Booking{Status: string(StatusPending)}
	if err := Complete(b, now); !httperr.IsBusiness(err, "invalid_state") {
		t.Fatalf("complete from pending: got %v", err)
	}
	if err := Confirm(b, now); err != nil {
		t.Fatal(err)
	}
	if b.Status != string(StatusConfirmed) || b.ConfirmedAt == nil {
		t.Fatalf("after confirm: %+v", b)
	}
	if err := Confirm(b, now); !httperr.IsBusiness(err, "invalid_state") {
		t.Fatalf("double confirm: got %v", err)
	}
	if err := Complete(b, now); err != nil {
		t.Fatal(err)
	}
	if err := Cancel(b, now); !httperr.IsBusiness(err, "invalid_state") {
		t.Fatalf("cancel completed: got %v", err)
	}
}

func TestCancelStampsTime(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	b := &models.Booking{Status: string(StatusConfirmed)}

	if err := Cancel(b, now); err != nil {
		t.Fatal(err)
	}
	if b.CancelledAt == nil || !b.CancelledAt.Equal(now) {
		t.Fatalf("cancelled_at = %v", b.CancelledAt)
	}
}

func TestCreateBookingInputValidate(t *testing.T) {
	base := CreateBookingInput{
		CoachID:     "coach-1",
		Type:        TypeIntro,
		ScheduledAt: time.Date(2026, 10, 20, 14, 0, 0, 0, time.UTC),
		Duration:    15,
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}

	priced := base
	priced.Price = 50
	if err := priced.Validate(); err == nil {
		t.Error("paid intro accepted")
	}

	noDuration := base
	noDuration.Duration = 0
	if err := noDuration.Validate(); !errors.Is(err, ErrInvalidDuration) {
		t.Errorf("zero duration: got %v", err)
	}

	noCoach := base
	noCoach.CoachID = ""
	if err := noCoach.Validate(); !errors.Is(err, ErrMissingField) {
		t.Errorf("missing coach: got %v", err)
	}
}

func TestParseDurationText(t *testing.T) {
	cases := map[string]int{
		"60 min":    60,
		"45 mins":   45,
		"90":        90,
		"1 hour":    60,
		"1.5 hours": 90,
		" 2 Hours ": 120,
		"30min":     30,
	}
	for in, want := range cases {
		got, err := ParseDurationText(in)
		if err != nil || got != want {
			t.Errorf("ParseDurationText(%q) = %d, %v; want %d", in, got, err, want)
		}
	}

	for _, in := range []string{"", "min", "0 min", "ten minutes", "3 days"} {
		if _, err := ParseDurationText(in); !errors.Is(err, ErrInvalidDuration) {
			t.Errorf("ParseDurationText(%q): got %v", in, err)
		}
	}
}
