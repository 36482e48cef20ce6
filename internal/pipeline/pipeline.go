// Package pipeline orchestrates a harvest: fetch listing pages, extract and
// normalize events, enrich from detail pages, and deduplicate, per source
// and across a whole source list.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/spergel/princeton-academic-events/internal/aggregate"
	"github.com/spergel/princeton-academic-events/internal/crawler"
	"github.com/spergel/princeton-academic-events/internal/dedupe"
	"github.com/spergel/princeton-academic-events/internal/extract"
	"github.com/spergel/princeton-academic-events/internal/feed"
	"github.com/spergel/princeton-academic-events/internal/fetcher"
	"github.com/spergel/princeton-academic-events/internal/logger"
	"github.com/spergel/princeton-academic-events/internal/schema"
	"github.com/spergel/princeton-academic-events/internal/source"
)

// Options tunes a harvest run.
type Options struct {
	// PageDelay is the politeness pause between listing page fetches.
	PageDelay time.Duration
	// DetailDelay is the pause between detail page fetches.
	DetailDelay time.Duration
	// SourceTimeout bounds one source's total harvest time.
	SourceTimeout time.Duration
	// Concurrency is the number of sources harvested in parallel.
	Concurrency int
	// Reference supplies "now" for year inference and record timestamps.
	// Zero means the wall clock at Run time.
	Reference time.Time
}

// DefaultOptions returns the tuning used by the CLI.
func DefaultOptions() Options {
	return Options{
		PageDelay:     1 * time.Second,
		DetailDelay:   500 * time.Millisecond,
		SourceTimeout: 5 * time.Minute,
		Concurrency:   3,
	}
}

// Result reports the outcome of harvesting one source.
type Result struct {
	Source  string
	Dataset *schema.Dataset
	Pages   int
	Err     error
	// Blocked marks failures caused by bot mitigation rather than ordinary
	// network or parse trouble.
	Blocked bool
}

// Runner executes harvests. Construct with New; the zero value is not usable.
type Runner struct {
	fetch fetcher.Fetcher
	opts  Options
	vocab *extract.Vocabulary
	ref   time.Time
}

// New creates a runner over the given fetcher. A nil vocabulary gets the
// default keyword table.
func New(f fetcher.Fetcher, vocab *extract.Vocabulary, opts Options) *Runner {
	if vocab == nil {
		vocab = extract.DefaultVocabulary()
	}
	ref := opts.Reference
	if ref.IsZero() {
		ref = time.Now()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultOptions().Concurrency
	}
	return &Runner{fetch: f, opts: opts, vocab: vocab, ref: ref}
}

// Run harvests one source into a dataset. The returned Result carries a
// dataset even on partial failure: pages harvested before the error are kept.
func (r *Runner) Run(ctx context.Context, cfg *source.Config) Result {
	res := Result{Source: cfg.Name}

	if r.opts.SourceTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.SourceTimeout)
		defer cancel()
	}

	logger.Info("harvest starting", "source", cfg.Name, "url", cfg.EventsURL, "kind", kindOf(cfg))

	var events []*schema.Event
	var err error
	if cfg.IsFeed() {
		events, err = r.runFeed(ctx, cfg)
	} else {
		events, res.Pages, err = r.runListing(ctx, cfg)
	}

	events = dedupe.Dedupe(events)
	aggregate.SortByDate(events)

	ds := schema.NewDataset(events, r.ref)
	ds.Metadata.Department = cfg.Name
	ds.Metadata.SourceURL = cfg.EventsURL
	res.Dataset = ds

	if err != nil {
		res.Err = err
		res.Blocked = fetcher.IsChallenge(err)
		logger.Error("harvest failed", "source", cfg.Name, "blocked", res.Blocked, "error", err)
		return res
	}

	logger.Info("harvest complete", "source", cfg.Name, "events", len(events), "pages", res.Pages)
	return res
}

func kindOf(cfg *source.Config) string {
	if cfg.IsFeed() {
		return "ics"
	}
	return "html"
}

func (r *Runner) runFeed(ctx context.Context, cfg *source.Config) ([]*schema.Event, error) {
	content, err := r.fetch.Fetch(ctx, cfg.EventsURL, fetcher.Options{})
	if err != nil {
		return nil, err
	}
	return feed.NewParser(r.vocab, r.ref).Parse(content.HTML, cfg)
}

func (r *Runner) runListing(ctx context.Context, cfg *source.Config) ([]*schema.Event, int, error) {
	extractor := extract.New(r.vocab)
	normalizer := extract.NewNormalizer(r.vocab, r.ref)
	sel := cfg.Effective()

	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = crawler.MaxPages
	}

	var events []*schema.Event
	pages := 0
	for page := 0; page < maxPages; page++ {
		if page > 0 {
			if err := sleepCtx(ctx, r.opts.PageDelay); err != nil {
				return events, pages, err
			}
		}

		pageURL := crawler.NextURL(cfg.EventsURL, page)
		content, err := r.fetch.Fetch(ctx, pageURL, fetcher.Options{})
		if err != nil {
			// Page zero failing means the source is down or blocked; a
			// later page failing just ends pagination early.
			if page == 0 {
				return events, pages, err
			}
			logger.Warn("pagination stopped early", "source", cfg.Name, "page", page, "error", err)
			break
		}
		pages++

		items, err := extractor.Extract(content.HTML, sel)
		if err != nil {
			return events, pages, err
		}
		logger.Debug("page extracted", "source", cfg.Name, "page", page, "items", len(items))

		for _, item := range items {
			if e := normalizer.Normalize(item, cfg); e != nil {
				events = append(events, e)
			}
		}

		if len(items) == 0 || !crawler.HasNextPage(content.HTML, page) {
			break
		}
	}

	if cfg.WantsDetails() {
		r.enrichAll(ctx, events, cfg)
	}
	return events, pages, nil
}

// enrichAll visits each event's detail page. Failures are logged and
// swallowed; enrichment never costs an event its listing data.
func (r *Runner) enrichAll(ctx context.Context, events []*schema.Event, cfg *source.Config) {
	en := &enricher{fetch: r.fetch}
	for i, e := range events {
		if i > 0 {
			if err := sleepCtx(ctx, r.opts.DetailDelay); err != nil {
				return
			}
		}
		details, err := en.enrich(ctx, e, cfg.BaseURL)
		if err != nil {
			logger.Warn("detail enrichment failed", "source", cfg.Name, "url", e.SourceURL, "error", err)
			continue
		}
		e.Merge(details)
	}
}

// RunAll harvests every source with a bounded worker pool and returns
// results in input order.
func (r *Runner) RunAll(ctx context.Context, cfgs []source.Config) []Result {
	results := make([]Result, len(cfgs))
	sem := make(chan struct{}, r.opts.Concurrency)
	var wg sync.WaitGroup

	for i := range cfgs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = r.Run(ctx, &cfgs[i])
		}(i)
	}
	wg.Wait()

	ok, failed, blocked, total := 0, 0, 0, 0
	for _, res := range results {
		switch {
		case res.Err == nil:
			ok++
		case res.Blocked:
			blocked++
		default:
			failed++
		}
		if res.Dataset != nil {
			total += len(res.Dataset.Events)
		}
	}
	logger.Info("harvest summary",
		"sources", len(cfgs),
		"succeeded", ok,
		"failed", failed,
		"blocked", blocked,
		"events", total)
	return results
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
