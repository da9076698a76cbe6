package booking

import (
	"time"

	"github.com/BruksfildServices01/coach-scheduler/internal/models"
)

const clockLayout = "3:04 PM"

// EventFor describes a stored booking for the calendar exports, using the
// coach's local calendar day and clock.
func EventFor(b *models.Booking, loc *time.Location) EventInput {
	if loc == nil {
		loc = time.UTC
	}
	local := b.ScheduledAt.In(loc)

	details := "Free intro session"
	if b.Service != nil && b.Service.Name != "" {
		details = b.Service.Name
	} else if Type(b.Type) != TypeIntro {
		details = "Coaching session"
	}

	return EventInput{
		CoachName:       b.Coach.Name,
		Date:            CalendarDay(local, loc),
		Time:            local.Format(clockLayout),
		DurationMinutes: b.Duration,
		Details:         details,
		UID:             b.ID + "@coach-scheduler",
	}
}
