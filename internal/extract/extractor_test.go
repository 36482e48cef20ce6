package extract

import (
	"testing"

	"github.com/spergel/princeton-academic-events/internal/source"
)

const drupalListing = `
<html><body>
<div class="view-content">
  <div class="views-row">
    <span class="field--name-title"><a href="/events/dark-matter">Colloquium: Dark Matter Searches</a></span>
    <div class="field--name-field-ps-events-date">
      <span class="day">Wed, Sep 24, 2025</span>
      <span class="time">3:00 pm – 4:20 pm</span>
    </div>
    <div class="field--name-field-ps-events-location-name"><div class="field__item">Jadwin Hall A10</div></div>
    <div class="field--name-field-ps-summary">Recent results from direct detection experiments.</div>
  </div>
  <div class="views-row">
    <span class="field--name-title"><a href="/events/trade-routes">Lecture on Ancient Trade Routes</a></span>
    <div class="field--name-field-ps-events-date"><span class="day">Oct 3, 2025</span></div>
  </div>
</div>
</body></html>`

func TestExtract_ConfiguredContainers(t *testing.T) {
	x := New(nil)
	items, err := x.Extract(drupalListing, source.DrupalSelectors)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}

	first := items[0]
	if first.Strategy != "container" {
		t.Errorf("Strategy = %q, want container", first.Strategy)
	}
	if first.Title != "Colloquium: Dark Matter Searches" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.TitleURL != "/events/dark-matter" {
		t.Errorf("TitleURL = %q", first.TitleURL)
	}
	if first.DayText != "Wed, Sep 24, 2025" {
		t.Errorf("DayText = %q", first.DayText)
	}
	if first.TimeText != "3:00 pm – 4:20 pm" {
		t.Errorf("TimeText = %q", first.TimeText)
	}
	if first.Location != "Jadwin Hall A10" {
		t.Errorf("Location = %q", first.Location)
	}
	if first.Description != "Recent results from direct detection experiments." {
		t.Errorf("Description = %q", first.Description)
	}

	if items[1].TimeText != "" {
		t.Errorf("second item TimeText = %q, want empty", items[1].TimeText)
	}
}

func TestExtract_SelectorOrderFirstNonEmptyWins(t *testing.T) {
	html := `<html><body>
	<div class="event-item"><span class="field--name-title"><a href="/e/1">Seminar on Graph Theory</a></span></div>
	<div class="content-list-item"><p>no title markup here</p></div>
	</body></html>`

	// content-list-item comes first in the cascade and matches one node, so
	// event-item is never consulted.
	x := New(nil)
	items, err := x.Extract(html, source.DrupalSelectors)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("len(items) = %d, want 1 (first matching container selector wins)", len(items))
	}
}

func TestExtract_ClassScanFallback(t *testing.T) {
	html := `<html><body>
	<div class="calendar-card">
	  <span class="field--name-title"><a href="/talks/9">Workshop on Bayesian Methods</a></span>
	  <div class="field--name-field-ps-events-date">Nov 12, 2025</div>
	</div>
	</body></html>`

	x := New(nil)
	items, err := x.Extract(html, source.DrupalSelectors)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(items))
	}
	if items[0].Strategy != "class-scan" {
		t.Errorf("Strategy = %q, want class-scan", items[0].Strategy)
	}
	if items[0].Title != "Workshop on Bayesian Methods" {
		t.Errorf("Title = %q", items[0].Title)
	}
}

func TestExtract_ClassScanSkipsNestedBlocks(t *testing.T) {
	html := `<html><body>
	<div class="event-wrapper">
	  <div class="event-card">
	    <span class="field--name-title"><a href="/e/1">Panel on Climate Policy</a></span>
	  </div>
	</div>
	</body></html>`

	x := New(nil)
	items, err := x.Extract(html, source.DrupalSelectors)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("len(items) = %d, want 1 (nested event blocks collapse)", len(items))
	}
}

func TestExtract_FreeTextFallback(t *testing.T) {
	html := `<html><body>
	<p>Welcome to the department calendar.</p>
	<p>Special seminar with Prof. Example on September 24, 2025 at 3:00 pm in Fine Hall. All graduate students are encouraged to attend this talk.</p>
	<p>Our office is open weekdays nine to five.</p>
	</body></html>`

	x := New(nil)
	items, err := x.Extract(html, source.Selectors{})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(items))
	}
	if items[0].Strategy != "free-text" {
		t.Errorf("Strategy = %q, want free-text", items[0].Strategy)
	}
	if items[0].FreeText == "" {
		t.Error("FreeText should carry the candidate block")
	}
}

func TestExtract_EmptyPageIsNotAnError(t *testing.T) {
	x := New(nil)
	items, err := x.Extract("<html><body><p>No events scheduled.</p></body></html>", source.DrupalSelectors)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(items) != 0 {
		t.Errorf("len(items) = %d, want 0", len(items))
	}
}

func TestExtract_ChallengePageYieldsNothing(t *testing.T) {
	x := New(nil)
	items, err := x.Extract("<html><head><title>Just a moment...</title></head><body></body></html>", source.DrupalSelectors)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(items) != 0 {
		t.Errorf("len(items) = %d, want 0", len(items))
	}
}
