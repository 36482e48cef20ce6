// Package dedupe collapses duplicate event records. Duplicates are exact-key
// matches only: normalized title plus the literal date and time strings.
package dedupe

import (
	"github.com/spergel/princeton-academic-events/internal/logger"
	"github.com/spergel/princeton-academic-events/internal/schema"
)

// Dedupe removes duplicates within a single harvest, keeping the first
// occurrence of each key. Listing order usually puts the richer rendering
// of a cross-listed event first. Idempotent: deduping deduped output is a
// no-op.
func Dedupe(events []*schema.Event) []*schema.Event {
	seen := make(map[string]bool, len(events))
	out := events[:0:0]
	for _, e := range events {
		key := e.DedupKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, e)
	}
	if dropped := len(events) - len(out); dropped > 0 {
		logger.Debug("duplicates removed", "dropped", dropped, "kept", len(out))
	}
	return out
}

// MergeCorpus folds a new harvest into an existing corpus. On key collision
// the new record wins wholesale, so a rescrape refreshes stale fields.
// Ordering follows the existing corpus, with genuinely new events appended
// in harvest order.
func MergeCorpus(existing, incoming []*schema.Event) []*schema.Event {
	replacement := make(map[string]*schema.Event, len(incoming))
	for _, e := range incoming {
		replacement[e.DedupKey()] = e
	}

	out := make([]*schema.Event, 0, len(existing)+len(incoming))
	placed := make(map[string]bool, len(existing))
	for _, e := range existing {
		key := e.DedupKey()
		if placed[key] {
			continue
		}
		placed[key] = true
		if fresh, ok := replacement[key]; ok {
			out = append(out, fresh)
			continue
		}
		out = append(out, e)
	}
	for _, e := range incoming {
		key := e.DedupKey()
		if placed[key] {
			continue
		}
		placed[key] = true
		out = append(out, e)
	}
	return out
}
