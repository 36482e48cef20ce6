package fetcher

import (
	"context"
	"fmt"

	"github.com/spergel/princeton-academic-events/internal/logger"
)

// ChallengeFetcher tries the cheap static strategy first and escalates only
// when bot mitigation gets in the way: first through FlareSolverr when one is
// configured, then through a headless browser. Ordinary failures (timeouts,
// 404s) are returned as-is; escalation is reserved for challenge errors.
type ChallengeFetcher struct {
	static  *StaticFetcher
	solver  *FlareSolverr
	dynamic *DynamicFetcher
}

// ChallengeConfig configures the fallback chain.
type ChallengeConfig struct {
	Static StaticConfig
	// FlareSolverrURL enables the FlareSolverr fallback when non-empty.
	FlareSolverrURL string
	// DisableBrowser skips the headless-browser fallback.
	DisableBrowser bool
}

// NewChallenge builds the fallback chain. The browser allocator is created
// lazily on first use, so configuring the chain is cheap even when no site
// ever escalates.
func NewChallenge(cfg ChallengeConfig) *ChallengeFetcher {
	f := &ChallengeFetcher{
		static: NewStatic(cfg.Static),
	}
	if cfg.FlareSolverrURL != "" {
		f.solver = NewFlareSolverr(cfg.FlareSolverrURL)
	}
	if !cfg.DisableBrowser {
		if d, err := NewDynamic(cfg.Static); err == nil {
			f.dynamic = d
		} else {
			logger.Warn("browser fallback unavailable", "error", err)
		}
	}
	return f
}

// Fetch retrieves a page, escalating through the fallback chain on
// challenge errors.
func (f *ChallengeFetcher) Fetch(ctx context.Context, url string, opts Options) (Content, error) {
	content, err := f.static.Fetch(ctx, url, opts)
	if err == nil || !IsChallenge(err) {
		return content, err
	}

	logger.Info("bot challenge detected, escalating", "url", url, "error", err)

	if f.solver != nil {
		content, solverErr := f.solver.Fetch(ctx, url, opts)
		if solverErr == nil {
			return content, nil
		}
		logger.Warn("FlareSolverr fallback failed", "url", url, "error", solverErr)
	}

	if f.dynamic != nil {
		content, browserErr := f.dynamic.Fetch(ctx, url, opts)
		if browserErr == nil {
			return content, nil
		}
		logger.Warn("browser fallback failed", "url", url, "error", browserErr)
		return content, fmt.Errorf("all fetch strategies failed: %w", browserErr)
	}

	return content, err
}

// Close releases resources held by every strategy in the chain.
func (f *ChallengeFetcher) Close() error {
	var firstErr error
	if err := f.static.Close(); err != nil {
		firstErr = err
	}
	if f.solver != nil {
		if err := f.solver.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if f.dynamic != nil {
		if err := f.dynamic.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Type returns the fetcher type.
func (f *ChallengeFetcher) Type() string {
	return "challenge-fallback"
}
