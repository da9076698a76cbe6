package booking

import (
	"strings"
	"time"
)

// TimeSlot is one offerable appointment time on a given day.
type TimeSlot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

// AvailabilityPolicy produces the ordered slots for a calendar day.
// Implementations must be pure and return a non-empty slice for every date.
type AvailabilityPolicy interface {
	SlotsFor(date time.Time) []TimeSlot
}

// PolicyFunc adapts a plain function to AvailabilityPolicy.
type PolicyFunc func(date time.Time) []TimeSlot

func (f PolicyFunc) SlotsFor(date time.Time) []TimeSlot {
	return f(date)
}

// ======================================================
// STATIC POLICY (weekday / weekend)
// ======================================================

// StaticPolicy keys the day's slots on the weekday only.
type StaticPolicy struct {
	Weekday []TimeSlot
	Weekend []TimeSlot
}

// DefaultPolicy is the placeholder schedule offered while coaches have no
// real availability calendar: 9 weekday slots, 4 weekend slots.
func DefaultPolicy() StaticPolicy {
	return StaticPolicy{
		Weekday: []TimeSlot{
			{Time: "9:00 AM", Available: true},
			{Time: "10:00 AM", Available: true},
			{Time: "11:00 AM", Available: false},
			{Time: "12:00 PM", Available: true},
			{Time: "1:00 PM", Available: true},
			{Time: "2:00 PM", Available: true},
			{Time: "3:00 PM", Available: false},
			{Time: "4:00 PM", Available: true},
			{Time: "5:00 PM", Available: true},
		},
		Weekend: []TimeSlot{
			{Time: "10:00 AM", Available: true},
			{Time: "11:00 AM", Available: true},
			{Time: "2:00 PM", Available: false},
			{Time: "3:00 PM", Available: true},
		},
	}
}

func (p StaticPolicy) SlotsFor(date time.Time) []TimeSlot {
	src := p.Weekday
	if IsWeekend(date) {
		src = p.Weekend
	}

	out := make([]TimeSlot, len(src))
	copy(out, src)
	return out
}

func IsWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// ======================================================
// RESERVED POLICY (existing bookings)
// ======================================================

// Window is a half-open [Start, End) interval already taken on a coach's
// calendar.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Overlaps(start, end time.Time) bool {
	return start.Before(w.End) && end.After(w.Start)
}

// ReservedPolicy marks base slots as unavailable when a slot of the given
// duration would overlap a reserved window, or when it starts at or before
// Now. Reserved windows are loaded by the caller before the policy is used.
// A zero Now disables the past check.
type ReservedPolicy struct {
	Base     AvailabilityPolicy
	Location *time.Location
	Duration time.Duration
	Reserved []Window
	Now      time.Time
}

func (p ReservedPolicy) SlotsFor(date time.Time) []TimeSlot {
	slots := p.Base.SlotsFor(date)
	if len(p.Reserved) == 0 && p.Now.IsZero() {
		return slots
	}

	loc := p.Location
	if loc == nil {
		loc = date.Location()
	}
	day := CalendarDay(date, loc)

	for i := range slots {
		if !slots[i].Available {
			continue
		}
		start, err := ApplyClock(day, slots[i].Time)
		if err != nil {
			slots[i].Available = false
			continue
		}
		if !p.Now.IsZero() && !start.After(p.Now) {
			slots[i].Available = false
			continue
		}
		end := start.Add(p.Duration)

		for _, w := range p.Reserved {
			if w.Overlaps(start, end) {
				slots[i].Available = false
				break
			}
		}
	}

	return slots
}

// FindSlot returns the slot whose clock string matches (case and spacing
// insensitive).
func FindSlot(slots []TimeSlot, clock string) (TimeSlot, bool) {
	want := normalizeClock(clock)
	for _, s := range slots {
		if normalizeClock(s.Time) == want {
			return s, true
		}
	}
	return TimeSlot{}, false
}

func normalizeClock(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}
