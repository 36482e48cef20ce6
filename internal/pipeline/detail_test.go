package pipeline

import "testing"

const speakerDetailPage = `<html><body>
<div class="field--name-body">A long abstract on direct detection experiments.</div>
<div class="field--name-field-ps-events-speaker">
  <a href="/people/1">Jane Doe</a>
  <a href="/people/2">John Smith</a>
</div>
<div class="field--name-field-ps-event-speaker-affil">Institute for Advanced Study</div>
<div class="field--name-field-ps-events-topics"><div class="field__item">dark matter</div></div>
<div class="field--name-field-ps-events-audience"><div class="field__item">Open to the public</div></div>
</body></html>`

func TestParseDetails_FieldSet(t *testing.T) {
	d, err := parseDetails(speakerDetailPage)
	if err != nil {
		t.Fatalf("parseDetails() error = %v", err)
	}
	if d.Description != "A long abstract on direct detection experiments." {
		t.Errorf("Description = %q", d.Description)
	}
	if d.Speaker != "Jane Doe; John Smith" {
		t.Errorf("Speaker = %q", d.Speaker)
	}
	if d.SpeakerAffiliation != "Institute for Advanced Study" {
		t.Errorf("SpeakerAffiliation = %q, want %q", d.SpeakerAffiliation, "Institute for Advanced Study")
	}
	if d.Audience != "Open to the public" {
		t.Errorf("Audience = %q", d.Audience)
	}
	if len(d.Topics) != 1 || d.Topics[0] != "dark matter" {
		t.Errorf("Topics = %v", d.Topics)
	}
}

func TestParseDetails_SpeakerCap(t *testing.T) {
	html := `<html><body><div class="field--name-field-ps-events-speaker">
	<a>Ana One</a><a>Ben Two</a><a>Cara Three</a><a>Dan Four</a>
	</div></body></html>`

	d, err := parseDetails(html)
	if err != nil {
		t.Fatalf("parseDetails() error = %v", err)
	}
	if d.Speaker != "Ana One; Ben Two; Cara Three" {
		t.Errorf("Speaker = %q, want the first three names only", d.Speaker)
	}
}

func TestParseDetails_EmptyPage(t *testing.T) {
	d, err := parseDetails("<html><body></body></html>")
	if err != nil {
		t.Fatalf("parseDetails() error = %v", err)
	}
	if d.Description != "" || d.Speaker != "" || d.SpeakerAffiliation != "" || len(d.Topics) != 0 {
		t.Errorf("empty page should yield zero details, got %+v", d)
	}
}
