package pipeline

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/spergel/princeton-academic-events/internal/dates"
	"github.com/spergel/princeton-academic-events/internal/fetcher"
	"github.com/spergel/princeton-academic-events/internal/logger"
	"github.com/spergel/princeton-academic-events/internal/schema"
)

// maxSpeakers caps how many linked names a detail page contributes; beyond
// that the list is organizers and sponsors, not speakers.
const maxSpeakers = 3

// detail-page selectors on the standard Drupal event node.
var (
	detailBodySelectors = []string{
		".field--name-body",
		".field--name-field-ps-summary",
	}
	detailSpeakerSelector = ".field--name-field-ps-events-speaker a"
	detailAffilSelector   = ".field--name-field-ps-event-speaker-affil"
	detailTopicsSelector  = ".field--name-field-ps-events-topics .field__item"
	detailDateSelector    = ".field--name-field-ps-events-date"
	detailAudienceSel     = ".field--name-field-ps-events-audience .field__item"
)

// enricher fetches an event's own page and recovers the fields listings
// truncate or omit. Enrichment is strictly best-effort: every failure path
// returns zero Details and the listing record stands as-is.
type enricher struct {
	fetch fetcher.Fetcher
	opts  fetcher.Options
}

// enrich fetches the detail page for an event and returns whatever extra
// fields it holds. A URL off the source's host is skipped; listings on
// shared calendar platforms link out to pages with foreign markup.
func (en *enricher) enrich(ctx context.Context, e *schema.Event, baseURL string) (schema.Details, error) {
	if e.SourceURL == "" || e.SourceURL == baseURL {
		return schema.Details{}, nil
	}
	if !sameHost(baseURL, e.SourceURL) {
		logger.Debug("skipping off-host detail page", "url", e.SourceURL)
		return schema.Details{}, nil
	}

	content, err := en.fetch.Fetch(ctx, e.SourceURL, en.opts)
	if err != nil {
		return schema.Details{}, fmt.Errorf("detail fetch failed: %w", err)
	}
	return parseDetails(content.HTML)
}

// parseDetails extracts the optional fields from a detail page.
func parseDetails(html string) (schema.Details, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return schema.Details{}, fmt.Errorf("failed to parse detail page: %w", err)
	}

	var d schema.Details

	for _, sel := range detailBodySelectors {
		if text := cleanText(doc.Find(sel).First().Text()); text != "" {
			d.Description = text
			break
		}
	}

	var speakers []string
	doc.Find(detailSpeakerSelector).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if name := cleanText(a.Text()); name != "" {
			speakers = append(speakers, name)
		}
		return len(speakers) < maxSpeakers
	})
	d.Speaker = strings.Join(speakers, "; ")

	var affils []string
	doc.Find(detailAffilSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if affil := cleanText(s.Text()); affil != "" {
			affils = append(affils, affil)
		}
		return len(affils) < maxSpeakers
	})
	d.SpeakerAffiliation = strings.Join(affils, "; ")

	doc.Find(detailTopicsSelector).Each(func(_ int, s *goquery.Selection) {
		if topic := cleanText(s.Text()); topic != "" {
			d.Topics = append(d.Topics, topic)
		}
	})

	if text := cleanText(doc.Find(detailDateSelector).First().Text()); text != "" {
		d.Time = dates.ResolveTime(text)
	}
	d.Audience = cleanText(doc.Find(detailAudienceSel).First().Text())

	return d, nil
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func sameHost(baseURL, target string) bool {
	b, err := url.Parse(baseURL)
	if err != nil {
		return false
	}
	t, err := url.Parse(target)
	if err != nil {
		return false
	}
	return strings.EqualFold(b.Hostname(), t.Hostname())
}
