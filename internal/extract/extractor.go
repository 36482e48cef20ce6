// Package extract turns fetched listing pages into raw event items and then
// into normalized records. Extraction is deliberately tolerant: a page that
// yields nothing is a valid result, not an error, because many department
// calendars are legitimately empty between semesters.
package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/spergel/princeton-academic-events/internal/dates"
	"github.com/spergel/princeton-academic-events/internal/logger"
	"github.com/spergel/princeton-academic-events/internal/source"
)

// Item is a raw extracted event before normalization. All fields are optional;
// the normalizer decides what survives.
type Item struct {
	Title       string
	TitleURL    string
	DateText    string
	DayText     string // structured day fragment within the date element
	TimeText    string // structured time fragment within the date element
	Location    string
	Description string
	Audience    string
	Series      string
	FreeText    string // free-text strategy only: the whole candidate block
	Strategy    string
}

// containerClassHints are class-name fragments that mark a block as an event
// container on sites whose markup the configured selectors don't match.
var containerClassHints = []string{"event", "seminar", "item", "card", "views-row"}

// Extractor pulls raw event items out of listing HTML using a cascade of
// three strategies: configured container selectors, a generic class-name
// scan, and finally free-text block detection. The first strategy that
// yields at least one item wins.
type Extractor struct {
	vocab *Vocabulary
}

// New creates an extractor. A nil vocabulary gets the default keyword table.
func New(vocab *Vocabulary) *Extractor {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	return &Extractor{vocab: vocab}
}

// Extract parses listing HTML and returns raw event items. A page where no
// strategy finds anything returns an empty slice and no error.
func (x *Extractor) Extract(html string, sel source.Selectors) ([]Item, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing HTML: %w", err)
	}

	if items := x.fromContainers(doc, sel); len(items) > 0 {
		return items, nil
	}
	if items := x.fromClassScan(doc, sel); len(items) > 0 {
		return items, nil
	}
	return x.fromFreeText(doc), nil
}

// fromContainers tries each configured container selector in order and
// extracts fields from the first one that matches anything.
func (x *Extractor) fromContainers(doc *goquery.Document, sel source.Selectors) []Item {
	for _, containerSel := range sel.Containers {
		nodes := doc.Find(containerSel)
		if nodes.Length() == 0 {
			continue
		}
		logger.Debug("container selector matched", "selector", containerSel, "count", nodes.Length())

		var items []Item
		nodes.Each(func(_ int, s *goquery.Selection) {
			item := x.fields(s, sel)
			item.Strategy = "container"
			items = append(items, item)
		})
		return items
	}
	return nil
}

// fromClassScan walks generic block elements looking for event-ish class
// names. It reuses the configured field selectors inside whatever it finds.
func (x *Extractor) fromClassScan(doc *goquery.Document, sel source.Selectors) []Item {
	var items []Item
	accepted := make(map[*html.Node]bool)

	doc.Find("div, article, li").Each(func(_ int, s *goquery.Selection) {
		class, _ := s.Attr("class")
		if !hasClassHint(class) {
			return
		}
		// Skip blocks nested inside an already-accepted block so one event
		// doesn't produce an item per wrapper div.
		for n := s.Nodes[0].Parent; n != nil; n = n.Parent {
			if accepted[n] {
				return
			}
		}
		item := x.fields(s, sel)
		if item.Title == "" {
			return
		}
		item.Strategy = "class-scan"
		accepted[s.Nodes[0]] = true
		items = append(items, item)
	})
	return items
}

func hasClassHint(class string) bool {
	class = strings.ToLower(class)
	if class == "" {
		return false
	}
	for _, hint := range containerClassHints {
		if strings.Contains(class, hint) {
			return true
		}
	}
	return false
}

// fromFreeText is the last resort: split the page text into blank-line
// blocks and keep any block that mentions both an event keyword and
// something date-shaped.
func (x *Extractor) fromFreeText(doc *goquery.Document) []Item {
	body := doc.Find("body")
	if body.Length() == 0 {
		return nil
	}
	body.Find("script, style, nav, header, footer").Remove()

	var items []Item
	for _, block := range splitBlocks(body.Text()) {
		if len(block) < 20 || len(block) > 2000 {
			continue
		}
		if !x.vocab.HasEventKeyword(block) || !dates.HasDateToken(block) {
			continue
		}
		items = append(items, Item{
			Title:    firstLine(block),
			FreeText: block,
			Strategy: "free-text",
		})
	}
	if len(items) > 0 {
		logger.Debug("free-text strategy recovered items", "count", len(items))
	}
	return items
}

// fields extracts the per-field values from one container using the
// selector cascade: first selector in each list that yields text wins.
func (x *Extractor) fields(s *goquery.Selection, sel source.Selectors) Item {
	item := Item{
		Description: firstText(s, sel.Description),
		Location:    firstText(s, sel.Location),
		Audience:    firstText(s, sel.Audience),
		Series:      firstText(s, sel.Series),
	}

	for _, titleSel := range sel.Title {
		node := s.Find(titleSel).First()
		if node.Length() == 0 {
			continue
		}
		text := clean(node.Text())
		if text == "" {
			continue
		}
		item.Title = text
		if href, ok := node.Attr("href"); ok {
			item.TitleURL = href
		} else if href, ok := node.Find("a").First().Attr("href"); ok {
			item.TitleURL = href
		}
		break
	}

	for _, dateSel := range sel.Date {
		node := s.Find(dateSel).First()
		if node.Length() == 0 {
			continue
		}
		text := clean(node.Text())
		if text == "" {
			continue
		}
		item.DateText = text
		item.DayText = clean(node.Find("span.day").First().Text())
		item.TimeText = clean(node.Find("span.time").First().Text())
		break
	}

	return item
}

// firstText returns the text of the first selector in the list that matches
// a node with non-empty text.
func firstText(s *goquery.Selection, selectors []string) string {
	for _, sel := range selectors {
		if text := clean(s.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// clean collapses runs of whitespace, including the newlines goquery keeps
// from nested block elements.
func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func splitBlocks(text string) []string {
	var blocks []string
	var current []string
	flush := func() {
		if len(current) > 0 {
			blocks = append(blocks, strings.Join(current, "\n"))
			current = current[:0]
		}
	}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()
	return blocks
}

func firstLine(block string) string {
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}
	return ""
}
