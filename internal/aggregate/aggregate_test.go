package aggregate

import (
	"testing"
	"time"

	"github.com/spergel/princeton-academic-events/internal/schema"
)

var at = time.Date(2025, time.September, 1, 12, 0, 0, 0, time.UTC)

func dataset(dept, category string, events ...*schema.Event) *schema.Dataset {
	for _, e := range events {
		e.Department = dept
		e.MetaCategory = category
	}
	ds := schema.NewDataset(events, at)
	ds.Metadata.Department = dept
	return ds
}

func TestCombine_CountsAndSources(t *testing.T) {
	physics := dataset("Physics", "sciences_engineering",
		&schema.Event{Title: "Colloquium on Dark Matter", StartDate: "2025-09-24", Time: "3:00 pm"},
		&schema.Event{Title: "Seminar on Topology", StartDate: "2025-09-10"},
	)
	history := dataset("History", "arts_humanities",
		&schema.Event{Title: "Lecture on Trade Routes", StartDate: "2025-09-15"},
	)

	got := Combine([]*schema.Dataset{physics, history}, at)

	if got.Metadata.TotalEvents != 3 {
		t.Errorf("TotalEvents = %d, want 3", got.Metadata.TotalEvents)
	}
	if len(got.Metadata.Sources) != 2 {
		t.Errorf("Sources = %v", got.Metadata.Sources)
	}
	if got.Metadata.ByDepartment["Physics"] != 2 || got.Metadata.ByDepartment["History"] != 1 {
		t.Errorf("ByDepartment = %v", got.Metadata.ByDepartment)
	}
	if got.Metadata.ByCategory["sciences_engineering"] != 2 {
		t.Errorf("ByCategory = %v", got.Metadata.ByCategory)
	}
}

func TestCombine_SortsByDateWithDatelessLast(t *testing.T) {
	ds := dataset("Physics", "sciences_engineering",
		&schema.Event{Title: "No Date Announced Yet"},
		&schema.Event{Title: "Later Colloquium", StartDate: "2025-10-01"},
		&schema.Event{Title: "Earlier Seminar", StartDate: "2025-09-05"},
	)

	got := Combine([]*schema.Dataset{ds}, at)
	if got.Events[0].Title != "Earlier Seminar" {
		t.Errorf("Events[0] = %q", got.Events[0].Title)
	}
	if got.Events[1].Title != "Later Colloquium" {
		t.Errorf("Events[1] = %q", got.Events[1].Title)
	}
	if got.Events[2].StartDate != "" {
		t.Errorf("dateless event should sort last, got %q first", got.Events[2].Title)
	}
}

func TestCombine_CrossSourceDuplicateLastWins(t *testing.T) {
	a := dataset("Physics", "sciences_engineering",
		&schema.Event{Title: "Joint Colloquium", StartDate: "2025-09-24", Time: "3:00 pm", Location: "Jadwin Hall"},
	)
	b := dataset("Astrophysics", "sciences_engineering",
		&schema.Event{Title: "Joint Colloquium", StartDate: "2025-09-24", Time: "3:00 pm", Location: "Peyton Hall"},
	)

	got := Combine([]*schema.Dataset{a, b}, at)
	if got.Metadata.TotalEvents != 1 {
		t.Fatalf("TotalEvents = %d, want 1", got.Metadata.TotalEvents)
	}
	if got.Events[0].Location != "Peyton Hall" {
		t.Errorf("later dataset should win, got location %q", got.Events[0].Location)
	}
}

func TestCombine_Empty(t *testing.T) {
	got := Combine(nil, at)
	if got.Metadata.TotalEvents != 0 {
		t.Errorf("TotalEvents = %d, want 0", got.Metadata.TotalEvents)
	}
	if got.Events == nil {
		t.Error("Events must be an empty slice, not nil, for JSON output")
	}
}
