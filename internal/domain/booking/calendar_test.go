package booking

import (
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/BruksfildServices01/coach-scheduler/internal/models"
)

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Skipf("timezone %s unavailable: %v", name, err)
	}
	return loc
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		in     string
		hour   int
		minute int
	}{
		{"10:00 AM", 10, 0},
		{"2:00 PM", 14, 0},
		{"12:00 PM", 12, 0},
		{"12:00 AM", 0, 0},
		{"12:30 am", 0, 30},
		{"11:59 PM", 23, 59},
		{"9 AM", 9, 0},
		{"3PM", 15, 0},
		{"4:15pm", 16, 15},
	}

	for _, tc := range cases {
		h, m, err := ParseClock(tc.in)
		if err != nil {
			t.Errorf("ParseClock(%q): unexpected error %v", tc.in, err)
			continue
		}
		if h != tc.hour || m != tc.minute {
			t.Errorf("ParseClock(%q) = %02d:%02d, want %02d:%02d", tc.in, h, m, tc.hour, tc.minute)
		}
	}
}

func TestParseClockRejectsMalformed(t *testing.T) {
	for _, in := range []string{
		"",
		"14:00",
		"25:99 AM",
		"13:00 PM",
		"0:30 AM",
		"ten AM",
		"10:5 AM",
		"10:60 AM",
		"10:00 XM",
		"10:00 AM extra",
		"+1:00 PM",
		"AM",
	} {
		if _, _, err := ParseClock(in); !errors.Is(err, ErrMalformedTime) {
			t.Errorf("ParseClock(%q): got %v, want ErrMalformedTime", in, err)
		}
	}
}

func TestEventWindowKeepsCalendarDay(t *testing.T) {
	loc := mustLoad(t, "America/Los_Angeles")

	for _, clock := range []string{"12:00 AM", "9:00 AM", "11:59 PM"} {
		date := time.Date(2026, 10, 20, 17, 45, 12, 999, loc)
		start, end, err := EventWindow(date, clock, 60)
		if err != nil {
			t.Fatalf("EventWindow(%q): %v", clock, err)
		}

		back := start.In(loc)
		if back.Year() != 2026 || back.Month() != 10 || back.Day() != 20 {
			t.Errorf("%s: start moved to %s", clock, back)
		}
		if back.Second() != 0 || back.Nanosecond() != 0 {
			t.Errorf("%s: seconds not zeroed: %s", clock, back)
		}
		if end.Sub(start) != time.Hour {
			t.Errorf("%s: end-start = %s", clock, end.Sub(start))
		}
	}
}

func TestEventWindowRejectsBadDuration(t *testing.T) {
	date := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)
	if _, _, err := EventWindow(date, "2:00 PM", 0); !errors.Is(err, ErrInvalidDuration) {
		t.Fatalf("got %v, want ErrInvalidDuration", err)
	}
}

func TestCompactUTC(t *testing.T) {
	loc := mustLoad(t, "America/Sao_Paulo")
	ts := time.Date(2026, 10, 20, 14, 5, 9, 123456789, loc)

	if got := CompactUTC(ts); got != "20261020T170509Z" {
		t.Fatalf("CompactUTC = %s", got)
	}
}

func TestGoogleCalendarURL(t *testing.T) {
	in := EventInput{
		CoachName:       "Jane Doe",
		Date:            time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC),
		Time:            "2:00 PM",
		DurationMinutes: 45,
		Details:         "Resume Review & Mock Interview",
	}

	got, err := GoogleCalendarURL(in)
	if err != nil {
		t.Fatalf("GoogleCalendarURL: %v", err)
	}

	want := "https://calendar.google.com/calendar/render?action=TEMPLATE" +
		"&text=Coaching%20with%20Jane%20Doe" +
		"&dates=20261020T140000Z/20261020T144500Z" +
		"&details=Resume%20Review%20%26%20Mock%20Interview"
	if got != want {
		t.Fatalf("url mismatch\n got: %s\nwant: %s", got, want)
	}
}

func TestGoogleCalendarURLRoundTrip(t *testing.T) {
	loc := mustLoad(t, "Asia/Kolkata")
	in := EventInput{
		CoachName:       "Ravi",
		Date:            time.Date(2026, 11, 2, 0, 0, 0, 0, loc),
		Time:            "9:30 AM",
		DurationMinutes: 90,
		Details:         "Career strategy",
	}

	link, err := GoogleCalendarURL(in)
	if err != nil {
		t.Fatal(err)
	}
	u, err := url.Parse(link)
	if err != nil {
		t.Fatal(err)
	}

	dates := strings.Split(u.Query().Get("dates"), "/")
	if len(dates) != 2 {
		t.Fatalf("dates param = %q", u.Query().Get("dates"))
	}

	start, end, _ := in.Window()
	gotStart, err := ParseCompactUTC(dates[0])
	if err != nil || !gotStart.Equal(start) {
		t.Errorf("start round trip: got %s (%v), want %s", gotStart, err, start)
	}
	gotEnd, err := ParseCompactUTC(dates[1])
	if err != nil || !gotEnd.Equal(end) {
		t.Errorf("end round trip: got %s (%v), want %s", gotEnd, err, end)
	}
	if u.Query().Get("text") != "Coaching with Ravi" {
		t.Errorf("text = %q", u.Query().Get("text"))
	}
}

func TestICSDataURIMatchesGoogleTimestamps(t *testing.T) {
	in := EventInput{
		CoachName:       "Jane Doe",
		Date:            time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC),
		Time:            "10:00 AM",
		DurationMinutes: 60,
		Details:         "Interview prep",
	}

	uri, err := ICSDataURI(in)
	if err != nil {
		t.Fatalf("ICSDataURI: %v", err)
	}
	if !strings.HasPrefix(uri, "data:text/calendar;charset=utf8,") {
		t.Fatalf("unexpected prefix: %.40s", uri)
	}

	doc, err := DecodeICSDataURI(uri)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if n := strings.Count(doc, "BEGIN:VEVENT"); n != 1 {
		t.Fatalf("want exactly one VEVENT, got %d", n)
	}

	props := icsProps(doc)
	if props["DTSTART"] != "20261020T100000Z" || props["DTEND"] != "20261020T110000Z" {
		t.Errorf("DTSTART/DTEND = %s/%s", props["DTSTART"], props["DTEND"])
	}
	if props["SUMMARY"] != "Coaching with Jane Doe" {
		t.Errorf("SUMMARY = %q", props["SUMMARY"])
	}
	if props["DESCRIPTION"] != "Interview prep" {
		t.Errorf("DESCRIPTION = %q", props["DESCRIPTION"])
	}

	link, _ := GoogleCalendarURL(in)
	if !strings.Contains(link, "dates="+props["DTSTART"]+"/"+props["DTEND"]) {
		t.Errorf("google link %s does not carry ICS timestamps", link)
	}
}

func TestICSDocumentParses(t *testing.T) {
	in := EventInput{
		CoachName:       "Sam Lee",
		Date:            time.Date(2026, 10, 24, 0, 0, 0, 0, time.UTC),
		Time:            "3:00 PM",
		DurationMinutes: 30,
		Details:         "Free intro",
	}

	doc, err := ICSDocument(in)
	if err != nil {
		t.Fatal(err)
	}

	cal, err := ics.ParseCalendar(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ParseCalendar: %v", err)
	}
	events := cal.Events()
	if len(events) != 1 {
		t.Fatalf("got %d events", len(events))
	}
	if p := events[0].GetProperty(ics.ComponentPropertyDtStart); p == nil || p.Value != "20261024T150000Z" {
		t.Errorf("DTSTART property = %+v", p)
	}
}

func TestICSDocumentIsDeterministic(t *testing.T) {
	in := EventInput{
		CoachName:       "Jane Doe",
		Date:            time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC),
		Time:            "10:00 AM",
		DurationMinutes: 60,
		Details:         "Interview prep",
	}

	a, _ := ICSDocument(in)
	b, _ := ICSDocument(in)
	if a != b {
		t.Fatal("ICS output differs between identical calls")
	}

	in.Details = "Something else"
	c, _ := ICSDocument(in)
	if icsProps(a)["UID"] == icsProps(c)["UID"] {
		t.Error("different events share a UID")
	}
}

func TestTuesdayTwoPMScenario(t *testing.T) {
	loc := mustLoad(t, "America/New_York")
	tuesday := time.Date(2026, 10, 20, 8, 0, 0, 0, loc)
	if tuesday.Weekday() != time.Tuesday {
		t.Fatalf("fixture is %s", tuesday.Weekday())
	}

	in := EventInput{CoachName: "Jane", Date: tuesday, Time: "2:00 PM", DurationMinutes: 45, Details: "Session"}
	start, end, err := in.Window()
	if err != nil {
		t.Fatal(err)
	}

	if s := start.In(loc); s.Hour() != 14 || s.Minute() != 0 || s.Day() != 20 {
		t.Errorf("start = %s", s)
	}
	if e := end.In(loc); e.Hour() != 14 || e.Minute() != 45 || e.Day() != 20 {
		t.Errorf("end = %s", e)
	}

	link, _ := GoogleCalendarURL(in)
	uri, _ := ICSDataURI(in)
	doc, _ := DecodeICSDataURI(uri)
	props := icsProps(doc)

	// 14:00 EDT == 18:00 UTC
	if props["DTSTART"] != "20261020T180000Z" || props["DTEND"] != "20261020T184500Z" {
		t.Errorf("ICS window = %s-%s", props["DTSTART"], props["DTEND"])
	}
	if !strings.Contains(link, "dates=20261020T180000Z/20261020T184500Z") {
		t.Errorf("google link = %s", link)
	}
}

func TestExportsDoNotMutateInputDate(t *testing.T) {
	date := time.Date(2026, 10, 20, 7, 30, 0, 0, time.UTC)
	orig := date

	in := EventInput{CoachName: "A", Date: date, Time: "1:00 PM", DurationMinutes: 30}
	_, _ = GoogleCalendarURL(in)
	_, _ = ICSDataURI(in)

	if !in.Date.Equal(orig) || in.Date.Location() != orig.Location() {
		t.Fatalf("input date changed: %s", in.Date)
	}
}

func TestExportsRejectMalformedTime(t *testing.T) {
	in := EventInput{CoachName: "A", Date: time.Now(), Time: "25:99 AM", DurationMinutes: 30}

	if _, err := GoogleCalendarURL(in); !errors.Is(err, ErrMalformedTime) {
		t.Errorf("google: got %v", err)
	}
	if _, err := ICSDataURI(in); !errors.Is(err, ErrMalformedTime) {
		t.Errorf("ics: got %v", err)
	}
}

func TestICSFilename(t *testing.T) {
	got := ICSFilename("Jane Doe", time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC))
	if got != "coaching-jane-doe-2026-10-20.ics" {
		t.Fatalf("ICSFilename = %s", got)
	}
}

// icsProps returns NAME -> value for unfolded content lines (parameters
// stripped).
func icsProps(doc string) map[string]string {
	doc = strings.ReplaceAll(doc, "\r\n ", "")
	out := map[string]string{}
	for _, line := range strings.Split(doc, "\n") {
		line = strings.TrimRight(line, "\r")
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if i := strings.Index(name, ";"); i >= 0 {
			name = name[:i]
		}
		out[name] = value
	}
	return out
}

func TestEncodeURIComponentMatchesJavaScript(t *testing.T) {
	cases := map[string]string{
		"Jane Doe":            "Jane%20Doe",
		"a+b=c&d":             "a%2Bb%3Dc%26d",
		"Hi! (it's *great*)":  "Hi!%20(it's%20*great*)",
		"-_.~":                "-_.~",
		"line\nbreak":         "line%0Abreak",
		"café/100%":           "caf%C3%A9%2F100%25",
	}
	for in, want := range cases {
		if got := EncodeURIComponent(in); got != want {
			t.Errorf("EncodeURIComponent(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEventForStoredBooking(t *testing.T) {
	loc := mustLoad(t, "America/New_York")
	b := &models.Booking{
		ID:          "bk-1",
		Coach:       models.Coach{Name: "Jane Doe"},
		Service:     &models.CoachService{Name: "Mock Interview"},
		Type:        string(TypeSession),
		ScheduledAt: time.Date(2026, 10, 20, 18, 0, 0, 0, time.UTC),
		Duration:    45,
		Notes:       "Please review my CV first",
	}

	in := EventFor(b, loc)
	if in.Time != "2:00 PM" || in.Date.Day() != 20 || in.Details != "Mock Interview" {
		t.Fatalf("event input = %+v", in)
	}

	start, end, err := in.Window()
	if err != nil {
		t.Fatal(err)
	}
	if !start.Equal(b.ScheduledAt) || !end.Equal(b.EndsAt()) {
		t.Fatalf("window %s-%s does not match booking", start, end)
	}
}
