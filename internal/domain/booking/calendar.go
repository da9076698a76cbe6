package booking

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

const (
	googleCalendarBase = "https://calendar.google.com/calendar/render"
	icsDataURIPrefix   = "data:text/calendar;charset=utf8,"
	compactUTCLayout   = "20060102T150405Z"
	icsProductID       = "-//coach-scheduler//Booking Export//EN"
)

// EventInput carries what both calendar exports need.
type EventInput struct {
	CoachName       string
	Date            time.Time
	Time            string
	DurationMinutes int
	Details         string

	// UID overrides the generated event identifier (ICS only).
	UID string
}

func (in EventInput) Title() string {
	return "Coaching with " + in.CoachName
}

// Window resolves the start/end instants of the event.
func (in EventInput) Window() (time.Time, time.Time, error) {
	return EventWindow(in.Date, in.Time, in.DurationMinutes)
}

// CompactUTC renders t as an ISO timestamp in UTC without punctuation or
// sub-second precision, e.g. 20240102T140000Z.
func CompactUTC(t time.Time) string {
	return t.UTC().Format(compactUTCLayout)
}

// ParseCompactUTC is the inverse of CompactUTC.
func ParseCompactUTC(s string) (time.Time, error) {
	return time.Parse(compactUTCLayout, s)
}

// uriComponentUnescapes undoes the escapes QueryEscape applies to characters
// encodeURIComponent leaves alone; spaces become %20, never '+'.
var uriComponentUnescapes = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EncodeURIComponent percent-encodes every byte except A-Z a-z 0-9 and
// - _ . ! ~ * ' ( ), the same set as JavaScript's encodeURIComponent.
func EncodeURIComponent(s string) string {
	return uriComponentUnescapes.Replace(url.QueryEscape(s))
}

// ======================================================
// GOOGLE CALENDAR
// ======================================================

// GoogleCalendarURL builds an add-event link for Google Calendar.
func GoogleCalendarURL(in EventInput) (string, error) {
	start, end, err := in.Window()
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(
		"%s?action=TEMPLATE&text=%s&dates=%s/%s&details=%s",
		googleCalendarBase,
		EncodeURIComponent(in.Title()),
		CompactUTC(start),
		CompactUTC(end),
		EncodeURIComponent(in.Details),
	), nil
}

// ======================================================
// ICS (Apple / Outlook)
// ======================================================

// ICSDocument renders a text/calendar document holding a single VEVENT.
// DTSTAMP is pinned to the start instant so the output is deterministic.
func ICSDocument(in EventInput) (string, error) {
	start, end, err := in.Window()
	if err != nil {
		return "", err
	}

	uid := in.UID
	if uid == "" {
		uid = eventUID(in, start, end)
	}

	cal := ics.NewCalendar()
	cal.SetProductId(icsProductID)
	cal.SetMethod(ics.MethodPublish)

	ev := cal.AddEvent(uid)
	ev.SetDtStampTime(start)
	ev.SetStartAt(start)
	ev.SetEndAt(end)
	ev.SetSummary(in.Title())
	ev.SetDescription(in.Details)

	return cal.Serialize(), nil
}

// ICSDataURI wraps the ICS document in a data: URI usable as a link target.
func ICSDataURI(in EventInput) (string, error) {
	doc, err := ICSDocument(in)
	if err != nil {
		return "", err
	}
	return icsDataURIPrefix + EncodeURIComponent(doc), nil
}

// DecodeICSDataURI extracts the document from a URI built by ICSDataURI.
func DecodeICSDataURI(uri string) (string, error) {
	body, ok := strings.CutPrefix(uri, icsDataURIPrefix)
	if !ok {
		return "", fmt.Errorf("not a text/calendar data uri")
	}
	return url.QueryUnescape(body)
}

// ICSFilename is the download name hint for the ICS export.
func ICSFilename(coachName string, date time.Time) string {
	return fmt.Sprintf("coaching-%s-%s.ics", slug.Make(coachName), date.Format("2006-01-02"))
}

func eventUID(in EventInput, start, end time.Time) string {
	name := strings.Join([]string{in.CoachName, CompactUTC(start), CompactUTC(end), in.Details}, "|")
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String() + "@coach-scheduler"
}
