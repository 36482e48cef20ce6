// Package source defines per-site configuration. The harvester itself is
// generic; everything site-specific — URLs, selector overrides, defaults —
// arrives through a Config, so adding a department is a data change, not a
// code change.
package source

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Selectors carries the CSS selector lists a source may override. Each list
// is tried in order; the first selector yielding content wins. Empty lists
// fall back to the shared Drupal defaults.
type Selectors struct {
	Containers  []string `yaml:"containers"`
	Title       []string `yaml:"title"`
	Date        []string `yaml:"date"`
	Location    []string `yaml:"location"`
	Description []string `yaml:"description"`
	Audience    []string `yaml:"audience"`
	Series      []string `yaml:"series"`
}

// Config identifies one department site. Supplied by the caller and never
// mutated by the pipeline.
type Config struct {
	Name            string     `yaml:"name" validate:"required"`
	BaseURL         string     `yaml:"base_url" validate:"required,url"`
	EventsURL       string     `yaml:"events_url" validate:"required,url"`
	MetaCategory    string     `yaml:"meta_category" validate:"required"`
	Kind            string     `yaml:"kind" validate:"omitempty,oneof=html ics"`
	DefaultLocation string     `yaml:"default_location"`
	DefaultType     string     `yaml:"default_type"`
	MaxPages        int        `yaml:"max_pages" validate:"omitempty,min=1,max=50"`
	FetchDetails    *bool      `yaml:"fetch_details"`
	Selectors       *Selectors `yaml:"selectors"`
}

// WantsDetails reports whether detail pages should be fetched for this
// source (the default).
func (c *Config) WantsDetails() bool {
	return c.FetchDetails == nil || *c.FetchDetails
}

// IsFeed reports whether the source is an ICS calendar feed rather than an
// HTML listing.
func (c *Config) IsFeed() bool {
	return c.Kind == "ics"
}

type sourcesFile struct {
	Sources []Config `yaml:"sources"`
}

// Load reads and validates a YAML sources file.
func Load(path string) ([]Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates YAML source definitions.
func Parse(data []byte) ([]Config, error) {
	var f sourcesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse sources file: %w", err)
	}
	if len(f.Sources) == 0 {
		return nil, fmt.Errorf("sources file defines no sources")
	}

	validate := validator.New()
	for i := range f.Sources {
		if err := validate.Struct(&f.Sources[i]); err != nil {
			return nil, fmt.Errorf("source %q invalid: %w", f.Sources[i].Name, err)
		}
	}
	return f.Sources, nil
}

// DrupalSelectors is the shared selector set for the Drupal sites that make
// up the bulk of the departments. Sources without overrides use these.
var DrupalSelectors = Selectors{
	Containers: []string{
		"div.content-list-item",
		"div.event-item",
		"article.event",
		"div.views-row",
		"li.event",
	},
	Title: []string{
		"span.field--name-title a",
		".field--name-title a",
		"h2 a", "h3 a",
	},
	Date: []string{
		"div.field--name-field-ps-events-date",
		".date-badge",
	},
	Location: []string{
		".field--name-field-ps-events-location-name .field__item",
		".field--name-field-ps-events-location-name",
	},
	Description: []string{
		".field--name-field-ps-summary",
	},
	Audience: []string{
		".field--name-field-ps-events-audience",
	},
	Series: []string{
		".field--name-field-ps-events-category .field__item",
	},
}

// Effective returns the selector lists for a source, filling unset lists
// from the Drupal defaults.
func (c *Config) Effective() Selectors {
	eff := DrupalSelectors
	if c.Selectors == nil {
		return eff
	}
	if len(c.Selectors.Containers) > 0 {
		eff.Containers = c.Selectors.Containers
	}
	if len(c.Selectors.Title) > 0 {
		eff.Title = c.Selectors.Title
	}
	if len(c.Selectors.Date) > 0 {
		eff.Date = c.Selectors.Date
	}
	if len(c.Selectors.Location) > 0 {
		eff.Location = c.Selectors.Location
	}
	if len(c.Selectors.Description) > 0 {
		eff.Description = c.Selectors.Description
	}
	if len(c.Selectors.Audience) > 0 {
		eff.Audience = c.Selectors.Audience
	}
	if len(c.Selectors.Series) > 0 {
		eff.Series = c.Selectors.Series
	}
	return eff
}
