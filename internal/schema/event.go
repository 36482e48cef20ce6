// Package schema defines the canonical event record produced by every source.
package schema

import (
	"strings"
	"time"
)

// Event is the normalized record for a single academic event. Field names
// match the published JSON schema consumed by downstream tooling.
type Event struct {
	ID                 string   `json:"id" yaml:"id"`
	Title              string   `json:"title" yaml:"title"`
	Description        string   `json:"description" yaml:"description"`
	StartDate          string   `json:"start_date" yaml:"start_date"` // YYYY-MM-DD or empty
	EndDate            string   `json:"end_date,omitempty" yaml:"end_date,omitempty"`
	Time               string   `json:"time" yaml:"time"` // "3:00 pm" or "3:00 pm - 4:20 pm" or empty
	Location           string   `json:"location" yaml:"location"`
	EventType          string   `json:"event_type" yaml:"event_type"`
	Department         string   `json:"department" yaml:"department"`
	MetaCategory       string   `json:"meta_category" yaml:"meta_category"`
	SourceURL          string   `json:"source_url" yaml:"source_url"`
	SourceName         string   `json:"source_name" yaml:"source_name"`
	Speaker            string   `json:"speaker,omitempty" yaml:"speaker,omitempty"`
	SpeakerAffiliation string   `json:"speaker_affiliation,omitempty" yaml:"speaker_affiliation,omitempty"`
	Audience           string   `json:"audience,omitempty" yaml:"audience,omitempty"`
	Topics             []string `json:"topics,omitempty" yaml:"topics,omitempty"`
	Tags               []string `json:"tags" yaml:"tags"`
	CreatedAt          string   `json:"created_at" yaml:"created_at"`
	UpdatedAt          string   `json:"updated_at" yaml:"updated_at"`
}

// DedupKey identifies an event for deduplication: normalized title plus the
// exact date and time strings. Exact match only; near-duplicates differing in
// punctuation are treated as distinct events.
func (e *Event) DedupKey() string {
	title := strings.ToLower(strings.TrimSpace(e.Title))
	return title + "|" + e.StartDate + "|" + e.Time
}

// NewID builds a deterministic per-source identifier from the department,
// the harvest date, and a title prefix. Uniqueness across sources is only
// guaranteed after deduplication.
func NewID(department string, ref time.Time, title string) string {
	dept := strings.ToLower(strings.ReplaceAll(department, " ", "_"))
	prefix := title
	// Truncate on runes so multi-byte titles stay valid UTF-8.
	if r := []rune(prefix); len(r) > 20 {
		prefix = string(r[:20])
	}
	prefix = strings.ReplaceAll(strings.TrimSpace(prefix), " ", "_")
	return dept + "_" + ref.Format("20060102") + "_" + prefix
}

// Details holds the optional fields recovered from an event's own page.
// Only fields that were actually resolved are non-zero.
type Details struct {
	Description        string
	Time               string
	Speaker            string
	SpeakerAffiliation string
	Audience           string
	Topics             []string
}

// Merge folds detail-page fields into the record. Scalar fields fill gaps
// only; a non-empty listing value is never overwritten, except Description,
// where the longer detail-page text wins. Topic lists append with
// deduplication.
func (e *Event) Merge(d Details) {
	if d.Description != "" && len(d.Description) > len(e.Description) {
		e.Description = d.Description
	}
	if e.Time == "" {
		e.Time = d.Time
	}
	if e.Speaker == "" {
		e.Speaker = d.Speaker
	}
	if e.SpeakerAffiliation == "" {
		e.SpeakerAffiliation = d.SpeakerAffiliation
	}
	if e.Audience == "" {
		e.Audience = d.Audience
	}
	e.Topics = appendUnique(e.Topics, d.Topics)
}

// AddTags appends tags, skipping duplicates and preserving order.
func (e *Event) AddTags(tags []string) {
	e.Tags = appendUnique(e.Tags, tags)
}

func appendUnique(dst, src []string) []string {
	seen := make(map[string]bool, len(dst))
	for _, s := range dst {
		seen[s] = true
	}
	for _, s := range src {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		dst = append(dst, s)
	}
	return dst
}
