// Package feed ingests ICS calendar feeds for the departments that publish
// one instead of (or alongside) an HTML listing. Feed events run through the
// same vocabulary and schema as scraped ones, so downstream consumers can't
// tell them apart.
package feed

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/spergel/princeton-academic-events/internal/extract"
	"github.com/spergel/princeton-academic-events/internal/logger"
	"github.com/spergel/princeton-academic-events/internal/schema"
	"github.com/spergel/princeton-academic-events/internal/source"
)

// Parser converts ICS feed data into event records.
type Parser struct {
	vocab *Vocab
	ref   time.Time
}

// Vocab is the subset of the keyword table the feed parser needs.
type Vocab = extract.Vocabulary

// NewParser creates a feed parser stamped with the harvest reference time.
func NewParser(vocab *Vocab, ref time.Time) *Parser {
	if vocab == nil {
		vocab = extract.DefaultVocabulary()
	}
	return &Parser{vocab: vocab, ref: ref}
}

// Parse decodes an ICS payload into normalized events. Individual VEVENTs
// that fail to parse are skipped with a warning; one malformed entry must
// not sink the feed.
func (p *Parser) Parse(data string, cfg *source.Config) ([]*schema.Event, error) {
	cal, err := ics.ParseCalendar(strings.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ICS feed: %w", err)
	}

	var events []*schema.Event
	for _, ve := range cal.Events() {
		e := p.convert(ve, cfg)
		if e == nil {
			continue
		}
		events = append(events, e)
	}
	logger.Debug("ICS feed parsed", "source", cfg.Name, "events", len(events))
	return events, nil
}

func (p *Parser) convert(ve *ics.VEvent, cfg *source.Config) *schema.Event {
	title := propValue(ve, ics.ComponentPropertySummary)
	if strings.TrimSpace(title) == "" {
		return nil
	}

	e := &schema.Event{
		Title:        strings.TrimSpace(title),
		Description:  strings.TrimSpace(propValue(ve, ics.ComponentPropertyDescription)),
		Location:     strings.TrimSpace(propValue(ve, ics.ComponentPropertyLocation)),
		Department:   cfg.Name,
		MetaCategory: cfg.MetaCategory,
		SourceName:   cfg.Name,
		SourceURL:    cfg.EventsURL,
		CreatedAt:    p.ref.Format(time.RFC3339),
		UpdatedAt:    p.ref.Format(time.RFC3339),
	}
	if u := propValue(ve, ics.ComponentPropertyUrl); u != "" {
		e.SourceURL = u
	}

	if start, err := ve.GetStartAt(); err == nil {
		e.StartDate = start.Format("2006-01-02")
		if !isAllDay(ve) {
			e.Time = formatClock(start)
			if end, err := ve.GetEndAt(); err == nil && end.After(start) {
				e.Time += " - " + formatClock(end)
				if end.Format("2006-01-02") != e.StartDate {
					e.EndDate = end.Format("2006-01-02")
				}
			}
		}
	} else {
		logger.Warn("ICS event has no parseable start", "source", cfg.Name, "title", e.Title)
	}

	if e.Location == "" {
		e.Location = cfg.DefaultLocation
	}
	if e.Location == "" {
		e.Location = "Location TBD"
	}

	e.EventType = p.vocab.EventType(e.Title, "", cfg.DefaultType)
	e.AddTags(p.vocab.Tags(cfg.MetaCategory, e.Title, e.Description))
	e.ID = schema.NewID(cfg.Name, p.ref, e.Title)
	return e
}

// isAllDay reports whether DTSTART is a DATE value rather than a DATE-TIME.
// An event genuinely starting at midnight keeps its time string.
func isAllDay(ve *ics.VEvent) bool {
	p := ve.GetProperty(ics.ComponentPropertyDtStart)
	if p == nil {
		return false
	}
	for _, v := range p.ICalParameters[string(ics.ParameterValue)] {
		if strings.EqualFold(v, "DATE") {
			return true
		}
	}
	// Bare 8-digit DATE values, for feeds that omit the VALUE parameter.
	return len(p.Value) == len("20060102")
}

func propValue(ve *ics.VEvent, prop ics.ComponentProperty) string {
	p := ve.GetProperty(prop)
	if p == nil {
		return ""
	}
	return p.Value
}

// formatClock renders a time the way the HTML resolver does: no leading
// zero on the hour, lowercase meridiem.
func formatClock(t time.Time) string {
	return t.Format("3:04 pm")
}
