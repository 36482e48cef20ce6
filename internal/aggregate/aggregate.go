// Package aggregate combines per-source datasets into the published corpus.
package aggregate

import (
	"sort"
	"time"

	"github.com/spergel/princeton-academic-events/internal/dedupe"
	"github.com/spergel/princeton-academic-events/internal/logger"
	"github.com/spergel/princeton-academic-events/internal/schema"
)

// Combine merges per-source datasets into one corpus dataset, deduplicating
// across sources and tallying the per-category and per-department counts.
// Events sort by start date with undated events last, so consumers read the
// corpus chronologically.
func Combine(datasets []*schema.Dataset, at time.Time) *schema.Dataset {
	var all []*schema.Event
	var sources []string
	for _, ds := range datasets {
		if ds == nil {
			continue
		}
		all = dedupe.MergeCorpus(all, ds.Events)
		if ds.Metadata.Department != "" {
			sources = append(sources, ds.Metadata.Department)
		}
	}

	SortByDate(all)

	combined := schema.NewDataset(all, at)
	combined.Metadata.Sources = sources
	combined.Metadata.ByCategory = countBy(all, func(e *schema.Event) string { return e.MetaCategory })
	combined.Metadata.ByDepartment = countBy(all, func(e *schema.Event) string { return e.Department })

	logger.Info("corpus combined",
		"sources", len(sources),
		"total_events", len(all))
	return combined
}

// SortByDate orders events chronologically. Dateless events sink to the end;
// ties break on title so output is deterministic across runs.
func SortByDate(events []*schema.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i].StartDate, events[j].StartDate
		if a == "" && b == "" {
			return events[i].Title < events[j].Title
		}
		if a == "" {
			return false
		}
		if b == "" {
			return true
		}
		if a != b {
			return a < b
		}
		return events[i].Title < events[j].Title
	})
}

func countBy(events []*schema.Event, key func(*schema.Event) string) map[string]int {
	counts := make(map[string]int)
	for _, e := range events {
		if k := key(e); k != "" {
			counts[k]++
		}
	}
	return counts
}
