package booking

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseClock converts a 12-hour clock string ("2:00 PM", "12 AM") to a
// 24-hour hour and minute. Anything that is not H[:MM] followed by an AM/PM
// marker is rejected with ErrMalformedTime.
func ParseClock(s string) (hour, minute int, err error) {
	num, meridiem, ok := splitMeridiem(s)
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}

	hStr, mStr, hasMinute := strings.Cut(num, ":")

	hour, ok = parseDigits(hStr)
	if !ok || hour < 1 || hour > 12 {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}

	if hasMinute {
		if len(mStr) != 2 {
			return 0, 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
		}
		minute, ok = parseDigits(mStr)
		if !ok || minute > 59 {
			return 0, 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
		}
	}

	switch {
	case meridiem == "PM" && hour != 12:
		hour += 12
	case meridiem == "AM" && hour == 12:
		hour = 0
	}

	return hour, minute, nil
}

func splitMeridiem(s string) (num, meridiem string, ok bool) {
	fields := strings.Fields(s)

	switch len(fields) {
	case 2:
		num, meridiem = fields[0], strings.ToUpper(fields[1])
	case 1:
		f := fields[0]
		if len(f) < 3 {
			return "", "", false
		}
		num, meridiem = f[:len(f)-2], strings.ToUpper(f[len(f)-2:])
	default:
		return "", "", false
	}

	if meridiem != "AM" && meridiem != "PM" {
		return "", "", false
	}
	return num, meridiem, num != ""
}

func parseDigits(s string) (int, bool) {
	if s == "" || len(s) > 2 {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}

// ApplyClock places the clock time on the calendar day of date, in date's
// location, at zero seconds.
func ApplyClock(date time.Time, clock string) (time.Time, error) {
	h, m, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), h, m, 0, 0, date.Location()), nil
}

// EventWindow returns the start and end instants of an appointment.
func EventWindow(date time.Time, clock string, durationMinutes int) (start, end time.Time, err error) {
	if durationMinutes <= 0 {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %d", ErrInvalidDuration, durationMinutes)
	}

	start, err = ApplyClock(date, clock)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, start.Add(time.Duration(durationMinutes) * time.Minute), nil
}

// CalendarDay keeps the year/month/day of date and places it at midnight in
// loc. The time-of-day and location of date are ignored.
func CalendarDay(date time.Time, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
}

// StartOfDay truncates t to midnight in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
