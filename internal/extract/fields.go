package extract

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/spergel/princeton-academic-events/internal/dates"
	"github.com/spergel/princeton-academic-events/internal/schema"
	"github.com/spergel/princeton-academic-events/internal/source"
)

// Normalizer turns raw items into canonical event records. Normalization is
// where each field's own cascade runs: structured fragments first, then
// pattern matching over looser text, then a per-source default, then empty.
// Empty is always preferred over a guessed value.
type Normalizer struct {
	vocab *Vocabulary
	ref   time.Time
}

// NewNormalizer creates a normalizer. The reference time supplies the year
// for dates that omit one and stamps created_at/updated_at; callers pass the
// harvest start so a whole run is internally consistent.
func NewNormalizer(vocab *Vocabulary, ref time.Time) *Normalizer {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	return &Normalizer{vocab: vocab, ref: ref}
}

// speaker heuristics for free text like "Jane Doe (MIT)" or "Speaker: Jane Doe".
var (
	reSpeakerParen = regexp.MustCompile(`^([A-Z][\w.'-]+(?:\s+[A-Z][\w.'-]+){1,3})\s*\(([^)]+)\)`)
	reSpeakerLabel = regexp.MustCompile(`(?i)\bspeakers?:\s*([^\n,;]+)`)
)

// Normalize converts one raw item into an event record. It returns nil when
// the item has no usable title, which is how boilerplate blocks (nav links,
// "View all events" footers) are discarded.
func (n *Normalizer) Normalize(item Item, cfg *source.Config) *schema.Event {
	title := cleanTitle(item.Title)
	if title == "" {
		return nil
	}

	e := &schema.Event{
		Title:        title,
		Description:  strings.TrimSpace(item.Description),
		Location:     strings.TrimSpace(item.Location),
		Audience:     strings.TrimSpace(item.Audience),
		Department:   cfg.Name,
		MetaCategory: cfg.MetaCategory,
		SourceName:   cfg.Name,
		SourceURL:    resolveURL(cfg.BaseURL, item.TitleURL),
		CreatedAt:    n.ref.Format(time.RFC3339),
		UpdatedAt:    n.ref.Format(time.RFC3339),
	}

	n.resolveWhen(e, item)

	if e.Location == "" {
		e.Location = cfg.DefaultLocation
	}
	if e.Location == "" {
		e.Location = "Location TBD"
	}

	e.EventType = n.vocab.EventType(e.Title, item.Series, cfg.DefaultType)

	if sp, aff := findSpeaker(item.Description, item.FreeText); sp != "" {
		e.Speaker = sp
		e.SpeakerAffiliation = aff
	}

	e.AddTags(n.vocab.Tags(cfg.MetaCategory, e.Title, e.Description))
	e.ID = schema.NewID(cfg.Name, n.ref, e.Title)
	return e
}

// resolveWhen fills start_date and time. Structured day/time fragments win;
// otherwise the full date text is mined, then the free-text block. A date
// that cannot be resolved stays empty.
func (n *Normalizer) resolveWhen(e *schema.Event, item Item) {
	if item.DayText != "" {
		e.StartDate = dates.ResolveDate(item.DayText, n.ref)
	}
	if item.TimeText != "" {
		e.Time = dates.ResolveTime(item.TimeText)
	}

	if e.StartDate == "" && item.DateText != "" {
		e.StartDate = dates.ResolveDate(item.DateText, n.ref)
	}
	if e.Time == "" && item.DateText != "" {
		e.Time = dates.ResolveTime(item.DateText)
	}

	if e.StartDate == "" && item.FreeText != "" {
		e.StartDate, e.Time = dates.Resolve(item.FreeText, n.ref)
	}
}

// cleanTitle rejects strings that cannot be real event titles: too short,
// purely numeric, or shouty all-caps navigation labels.
func cleanTitle(title string) string {
	title = strings.Join(strings.Fields(title), " ")
	if len(title) < 8 {
		return ""
	}
	if isDigitsAndPunct(title) {
		return ""
	}
	if isAllCaps(title) {
		return ""
	}
	return title
}

func isDigitsAndPunct(s string) bool {
	hasDigit := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case r == ' ' || r == '/' || r == '-' || r == ':' || r == ',' || r == '.':
		default:
			return false
		}
	}
	return hasDigit
}

// isAllCaps reports whether every letter is uppercase. Single acronym words
// pass through elsewhere; a whole uppercase phrase is nav chrome ("UPCOMING
// EVENTS", "SKIP TO MAIN CONTENT").
func isAllCaps(s string) bool {
	hasLetter := false
	for _, r := range s {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			hasLetter = true
		}
	}
	return hasLetter
}

// resolveURL makes a possibly-relative href absolute against the site base.
// Unparseable values pass through untouched rather than being dropped.
func resolveURL(base, href string) string {
	if href == "" {
		return base
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}

// findSpeaker scans the description and free text for speaker patterns.
func findSpeaker(texts ...string) (speaker, affiliation string) {
	for _, text := range texts {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if m := reSpeakerLabel.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1]), ""
		}
		if m := reSpeakerParen.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
		}
	}
	return "", ""
}
