package dedupe

import (
	"testing"

	"github.com/spergel/princeton-academic-events/internal/schema"
)

func ev(title, date, clock, location string) *schema.Event {
	return &schema.Event{Title: title, StartDate: date, Time: clock, Location: location}
}

func TestDedupe_CrossListedEventCollapses(t *testing.T) {
	events := []*schema.Event{
		ev("Quantum Computing Colloquium", "2025-09-24", "3:00 pm", "Jadwin Hall"),
		ev("quantum computing colloquium", "2025-09-24", "3:00 pm", "McDonnell Hall"),
	}

	got := Dedupe(events)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].Location != "Jadwin Hall" {
		t.Errorf("first occurrence should win, got location %q", got[0].Location)
	}
}

func TestDedupe_DifferentTimesAreDistinct(t *testing.T) {
	events := []*schema.Event{
		ev("Morning Session Workshop", "2025-09-24", "9:00 am", ""),
		ev("Morning Session Workshop", "2025-09-24", "2:00 pm", ""),
	}
	if got := Dedupe(events); len(got) != 2 {
		t.Errorf("len = %d, want 2: same title at different times is two events", len(got))
	}
}

func TestDedupe_NearDuplicatesKept(t *testing.T) {
	// Exact-key matching only; punctuation differences are distinct events.
	events := []*schema.Event{
		ev("Physics Colloquium: Dark Matter", "2025-09-24", "3:00 pm", ""),
		ev("Physics Colloquium - Dark Matter", "2025-09-24", "3:00 pm", ""),
	}
	if got := Dedupe(events); len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
}

func TestDedupe_Idempotent(t *testing.T) {
	events := []*schema.Event{
		ev("Seminar One On Topology", "2025-09-24", "", ""),
		ev("Seminar One On Topology", "2025-09-24", "", ""),
		ev("Seminar Two On Geometry", "2025-09-25", "", ""),
	}
	once := Dedupe(events)
	twice := Dedupe(once)
	if len(once) != 2 || len(twice) != 2 {
		t.Errorf("len(once) = %d, len(twice) = %d, want 2 and 2", len(once), len(twice))
	}
}

func TestDedupe_Empty(t *testing.T) {
	if got := Dedupe(nil); len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestMergeCorpus_NewRecordWins(t *testing.T) {
	existing := []*schema.Event{
		ev("Quantum Colloquium Series", "2025-09-24", "3:00 pm", "Old Location"),
	}
	incoming := []*schema.Event{
		ev("Quantum Colloquium Series", "2025-09-24", "3:00 pm", "New Location"),
	}

	got := MergeCorpus(existing, incoming)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].Location != "New Location" {
		t.Errorf("rescrape should refresh the record, got location %q", got[0].Location)
	}
}

func TestMergeCorpus_AppendsNewEvents(t *testing.T) {
	existing := []*schema.Event{
		ev("Existing Lecture Series", "2025-09-01", "", ""),
	}
	incoming := []*schema.Event{
		ev("Existing Lecture Series", "2025-09-01", "", ""),
		ev("Brand New Symposium", "2025-10-01", "", ""),
	}

	got := MergeCorpus(existing, incoming)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Title != "Existing Lecture Series" || got[1].Title != "Brand New Symposium" {
		t.Errorf("unexpected order: %q, %q", got[0].Title, got[1].Title)
	}
}
