package booking

import (
	"context"

	domain "github.com/BruksfildServices01/coach-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/coach-scheduler/internal/httperr"
	"github.com/BruksfildServices01/coach-scheduler/internal/timezone"
)

const (
	ProviderGoogle = "google"
	ProviderICS    = "ics"
)

type ExportCalendarInput struct {
	BookingID string
	Provider  string

	// Subject of the caller. Coaches may export their own bookings,
	// students the bookings they made.
	ActorID string
	IsCoach bool
}

type CalendarExport struct {
	Provider string `json:"provider"`
	URL      string `json:"url"`
	Filename string `json:"filename,omitempty"`
}

type ExportCalendar struct {
	repo domain.Repository
}

func NewExportCalendar(repo domain.Repository) *ExportCalendar {
	return &ExportCalendar{repo: repo}
}

func (uc *ExportCalendar) Execute(ctx context.Context, in ExportCalendarInput) (*CalendarExport, error) {
	if in.Provider != ProviderGoogle && in.Provider != ProviderICS {
		return nil, httperr.ErrBusiness("invalid_provider")
	}

	b, err := uc.repo.GetBooking(ctx, in.BookingID)
	if err != nil {
		return nil, err
	}

	owner := b.CoachID == in.ActorID
	if !in.IsCoach {
		owner = b.Student != nil && b.Student.Subject == in.ActorID
	}
	if !owner {
		return nil, httperr.ErrBusiness("booking_not_found")
	}

	if !domain.Status(b.Status).Active() {
		return nil, httperr.ErrBusiness("invalid_state")
	}

	ev := domain.EventFor(b, timezone.Location(b.Coach.Timezone))

	out := &CalendarExport{Provider: in.Provider}
	switch in.Provider {
	case ProviderGoogle:
		out.URL, err = domain.GoogleCalendarURL(ev)
	case ProviderICS:
		out.URL, err = domain.ICSDataURI(ev)
		out.Filename = domain.ICSFilename(ev.CoachName, ev.Date)
	}
	if err != nil {
		return nil, err
	}

	return out, nil
}
