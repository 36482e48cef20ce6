package feed

import (
	"testing"
	"time"

	"github.com/spergel/princeton-academic-events/internal/source"
)

var ref = time.Date(2025, time.September, 1, 9, 0, 0, 0, time.UTC)

func feedSource() *source.Config {
	return &source.Config{
		Name:            "Mathematics",
		BaseURL:         "https://www.math.princeton.edu",
		EventsURL:       "https://www.math.princeton.edu/events/seminars.ics",
		MetaCategory:    "sciences_engineering",
		Kind:            "ics",
		DefaultLocation: "Fine Hall",
	}
}

const sampleICS = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Department of Mathematics//Events//EN
BEGIN:VEVENT
UID:evt-1@math.princeton.edu
DTSTART:20250924T190000Z
DTEND:20250924T202000Z
SUMMARY:Topology Seminar: Knot Invariants
DESCRIPTION:An introduction to recent work on knot invariants.
LOCATION:Fine Hall 314
URL:https://www.math.princeton.edu/events/evt-1
END:VEVENT
BEGIN:VEVENT
UID:evt-2@math.princeton.edu
DTSTART:20251001T170000Z
SUMMARY:Colloquium on Random Matrices
END:VEVENT
BEGIN:VEVENT
UID:evt-3@math.princeton.edu
DTSTART:20251002T170000Z
SUMMARY:
END:VEVENT
END:VCALENDAR
`

func TestParse_Feed(t *testing.T) {
	p := NewParser(nil, ref)
	events, err := p.Parse(sampleICS, feedSource())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	// The summary-less VEVENT is dropped.
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}

	first := events[0]
	if first.Title != "Topology Seminar: Knot Invariants" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.StartDate != "2025-09-24" {
		t.Errorf("StartDate = %q, want 2025-09-24", first.StartDate)
	}
	if first.Time != "7:00 pm - 8:20 pm" {
		t.Errorf("Time = %q, want \"7:00 pm - 8:20 pm\"", first.Time)
	}
	if first.Location != "Fine Hall 314" {
		t.Errorf("Location = %q", first.Location)
	}
	if first.SourceURL != "https://www.math.princeton.edu/events/evt-1" {
		t.Errorf("SourceURL = %q", first.SourceURL)
	}
	if first.EventType != "Seminar" {
		t.Errorf("EventType = %q, want Seminar", first.EventType)
	}
	if first.Department != "Mathematics" {
		t.Errorf("Department = %q", first.Department)
	}

	second := events[1]
	if second.Location != "Fine Hall" {
		t.Errorf("missing LOCATION should fall back to the source default, got %q", second.Location)
	}
	if second.SourceURL != feedSource().EventsURL {
		t.Errorf("missing URL should fall back to the feed URL, got %q", second.SourceURL)
	}
	if second.EventType != "Colloquium" {
		t.Errorf("EventType = %q, want Colloquium", second.EventType)
	}
}

func TestParse_AllDayVersusMidnight(t *testing.T) {
	data := `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Department of Mathematics//Events//EN
BEGIN:VEVENT
UID:evt-4@math.princeton.edu
DTSTART;VALUE=DATE:20251006
SUMMARY:Graduate Conference on Geometry
END:VEVENT
BEGIN:VEVENT
UID:evt-5@math.princeton.edu
DTSTART:20251231T000000Z
SUMMARY:Midnight Lecture Marathon
END:VEVENT
END:VCALENDAR
`
	p := NewParser(nil, ref)
	events, err := p.Parse(data, feedSource())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}

	allDay := events[0]
	if allDay.StartDate != "2025-10-06" {
		t.Errorf("StartDate = %q, want 2025-10-06", allDay.StartDate)
	}
	if allDay.Time != "" {
		t.Errorf("all-day event Time = %q, want empty", allDay.Time)
	}

	midnight := events[1]
	if midnight.Time != "12:00 am" {
		t.Errorf("midnight DATE-TIME event Time = %q, want \"12:00 am\"", midnight.Time)
	}
}

func TestParse_InvalidFeed(t *testing.T) {
	p := NewParser(nil, ref)
	if _, err := p.Parse("this is not a calendar", feedSource()); err == nil {
		t.Fatal("expected error for malformed ICS data")
	}
}

func TestParse_EmptyCalendar(t *testing.T) {
	p := NewParser(nil, ref)
	events, err := p.Parse("BEGIN:VCALENDAR\nVERSION:2.0\nPRODID:-//x//EN\nEND:VCALENDAR\n", feedSource())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(events) != 0 {
		t.Errorf("len(events) = %d, want 0", len(events))
	}
}
