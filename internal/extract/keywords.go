package extract

import "strings"

// TypeKeyword maps a lowercase keyword to the event type it implies.
type TypeKeyword struct {
	Keyword string
	Type    string
}

// Vocabulary is the shared keyword table driving event-type resolution,
// tag extraction, and the free-text container scan. One table serves every
// source so behavior is centrally testable instead of duplicated per
// department config.
type Vocabulary struct {
	// EventTypes is checked in order; the first keyword found in the
	// title+series text wins.
	EventTypes []TypeKeyword
	// CategoryTags maps a source's meta category to candidate tags that
	// are kept only when they actually appear in the event text.
	CategoryTags map[string][]string
	// CommonTags are candidate tags checked against every event.
	CommonTags []string
}

// DefaultVocabulary returns the standard academic-events keyword table.
func DefaultVocabulary() *Vocabulary {
	return &Vocabulary{
		EventTypes: []TypeKeyword{
			{"colloquium", "Colloquium"},
			{"seminar", "Seminar"},
			{"workshop", "Workshop"},
			{"lecture", "Lecture"},
			{"conference", "Conference"},
			{"panel", "Panel"},
			{"discussion", "Discussion"},
			{"symposium", "Symposium"},
			{"talk", "Talk"},
			{"meeting", "Meeting"},
			{"presentation", "Presentation"},
			{"screening", "Film Screening"},
			{"film", "Film Screening"},
			{"exhibition", "Exhibition"},
			{"artist", "Artist Talk"},
		},
		CategoryTags: map[string][]string{
			"arts_humanities":      {"humanities", "arts", "literature", "history", "philosophy", "culture"},
			"social_sciences":      {"social sciences", "sociology", "politics", "economics", "anthropology"},
			"sciences_engineering": {"science", "engineering", "technology", "research", "innovation"},
			"engineering":          {"engineering", "technology", "research", "innovation"},
			"area_studies":         {"area studies", "international", "global", "cultural studies"},
			"interdisciplinary":    {"interdisciplinary", "cross-disciplinary", "multidisciplinary"},
		},
		CommonTags: []string{
			"seminar", "colloquium", "lecture", "talk", "workshop",
			"conference", "presentation", "discussion", "symposium",
		},
	}
}

// EventType resolves the event type for a title plus optional series text.
// The fallback is used when no keyword matches; pass "" for the generic
// "Event".
func (v *Vocabulary) EventType(title, series, fallback string) string {
	text := strings.ToLower(title + " " + series)
	for _, tk := range v.EventTypes {
		if strings.Contains(text, tk.Keyword) {
			return tk.Type
		}
	}
	if fallback != "" {
		return fallback
	}
	return "Event"
}

// HasEventKeyword reports whether text mentions any known event type.
func (v *Vocabulary) HasEventKeyword(text string) bool {
	text = strings.ToLower(text)
	for _, tk := range v.EventTypes {
		if strings.Contains(text, tk.Keyword) {
			return true
		}
	}
	return false
}

// Tags returns the lowercase vocabulary tags that actually occur in the
// title or description, seeded by the source's meta category.
func (v *Vocabulary) Tags(metaCategory, title, description string) []string {
	text := strings.ToLower(title + " " + description)

	var tags []string
	seen := make(map[string]bool)
	keep := func(tag string) {
		if !seen[tag] && strings.Contains(text, tag) {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}

	for _, tag := range v.CategoryTags[metaCategory] {
		keep(tag)
	}
	for _, tag := range v.CommonTags {
		keep(tag)
	}
	return tags
}
