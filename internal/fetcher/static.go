package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/spergel/princeton-academic-events/internal/logger"
)

// StaticConfig holds configuration for the static fetcher.
type StaticConfig struct {
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int           // attempts beyond the first
	RetryDelay time.Duration // fixed wait between attempts
}

// DefaultStaticConfig returns sensible defaults.
func DefaultStaticConfig() StaticConfig {
	return StaticConfig{
		UserAgent:  defaultUserAgent,
		Timeout:    30 * time.Second,
		MaxRetries: 2,
		RetryDelay: 2 * time.Second,
	}
}

// StaticFetcher uses Colly for plain HTTP fetching with browser-like
// headers. It implements the Fetcher interface.
type StaticFetcher struct {
	config StaticConfig
}

// NewStatic creates a new static fetcher.
func NewStatic(cfg StaticConfig) *StaticFetcher {
	def := DefaultStaticConfig()
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = def.RetryDelay
	}
	return &StaticFetcher{config: cfg}
}

// Fetch retrieves a page, retrying transient failures with a fixed delay.
// Definitive 4xx responses and detected bot challenges are not retried here;
// challenges surface as ErrAntiBot so callers can apply a fallback.
func (f *StaticFetcher) Fetch(ctx context.Context, targetURL string, opts Options) (Content, error) {
	var lastErr error
	for attempt := 0; attempt <= f.config.MaxRetries; attempt++ {
		if attempt > 0 {
			logger.Debug("static fetch retrying", "url", targetURL, "attempt", attempt)
			select {
			case <-time.After(f.config.RetryDelay):
			case <-ctx.Done():
				return Content{URL: targetURL}, ctx.Err()
			}
		}

		content, err := f.fetchOnce(ctx, targetURL, opts)
		if err == nil {
			return content, nil
		}
		lastErr = err

		if !retryable(err) {
			return content, err
		}
	}
	return Content{URL: targetURL}, fmt.Errorf("fetch failed after %d attempts: %w", f.config.MaxRetries+1, lastErr)
}

// retryable reports whether an error is worth another attempt. Challenges
// and client errors won't improve on retry.
func retryable(err error) bool {
	if IsChallenge(err) {
		return false
	}
	var se *statusError
	if asStatusError(err, &se) {
		return se.code >= 500 || se.code == 429
	}
	// Network-level failures are transient until proven otherwise.
	return true
}

func (f *StaticFetcher) fetchOnce(ctx context.Context, targetURL string, opts Options) (Content, error) {
	result := Content{
		URL:       targetURL,
		FetchedAt: time.Now(),
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = f.config.UserAgent
	}

	// A fresh collector per request keeps fetches independent.
	c := colly.NewCollector(
		colly.UserAgent(userAgent),
	)

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = f.config.Timeout
	}
	c.SetRequestTimeout(timeout)

	c.OnRequest(func(r *colly.Request) {
		for k, v := range browserHeaders() {
			r.Headers.Set(k, v)
		}
		for k, v := range opts.Headers {
			r.Headers.Set(k, v)
		}
	})

	var fetchErr error

	c.OnResponse(func(r *colly.Response) {
		result.StatusCode = r.StatusCode
		result.ContentType = r.Headers.Get("Content-Type")
		result.HTML = string(r.Body)
		logger.Debug("static fetch response",
			"url", targetURL,
			"status", r.StatusCode,
			"body_size", len(r.Body))
	})

	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			result.StatusCode = r.StatusCode
			result.HTML = string(r.Body)
		}
		fetchErr = err
	})

	if err := c.Visit(targetURL); err != nil && fetchErr == nil {
		fetchErr = err
	}

	// Challenge pages can arrive as 403/503 errors or as a 200 with an
	// interstitial body; classify both before anything else.
	if looksLikeChallenge(result.HTML) {
		return result, fmt.Errorf("%w: %s", ErrAntiBot, targetURL)
	}

	if fetchErr != nil {
		if result.StatusCode != 0 {
			return result, &statusError{code: result.StatusCode, cause: fetchErr}
		}
		return result, fmt.Errorf("fetch error: %w", fetchErr)
	}

	if result.StatusCode >= 400 {
		return result, &statusError{code: result.StatusCode}
	}

	return result, nil
}

// Close releases resources.
func (f *StaticFetcher) Close() error {
	return nil
}

// Type returns the fetcher type.
func (f *StaticFetcher) Type() string {
	return "static"
}
