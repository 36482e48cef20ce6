package schema

import "time"

// Metadata describes one dataset file: who produced it, when, and how much.
type Metadata struct {
	TotalEvents  int            `json:"total_events" yaml:"total_events"`
	GeneratedAt  string         `json:"generated_at" yaml:"generated_at"`
	Sources      []string       `json:"sources,omitempty" yaml:"sources,omitempty"`
	Department   string         `json:"department,omitempty" yaml:"department,omitempty"`
	SourceURL    string         `json:"source_url,omitempty" yaml:"source_url,omitempty"`
	ByCategory   map[string]int `json:"by_category,omitempty" yaml:"by_category,omitempty"`
	ByDepartment map[string]int `json:"by_department,omitempty" yaml:"by_department,omitempty"`
}

// Dataset is the on-disk shape of both per-source outputs and the combined
// corpus: one metadata object plus a flat events array.
type Dataset struct {
	Metadata Metadata `json:"metadata" yaml:"metadata"`
	Events   []*Event `json:"events" yaml:"events"`
}

// NewDataset wraps events in a dataset stamped at the given time.
func NewDataset(events []*Event, at time.Time) *Dataset {
	if events == nil {
		events = []*Event{}
	}
	return &Dataset{
		Metadata: Metadata{
			TotalEvents: len(events),
			GeneratedAt: at.UTC().Format(time.RFC3339),
		},
		Events: events,
	}
}
