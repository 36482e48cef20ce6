// Package fetcher handles page retrieval, including the bot-mitigation
// fallbacks needed for sites fronted by Cloudflare-style challenges.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Fetcher abstracts page fetching strategies.
type Fetcher interface {
	// Fetch retrieves page content from a URL.
	Fetch(ctx context.Context, url string, opts Options) (Content, error)

	// Close releases any resources (browser instances, etc.).
	Close() error

	// Type returns a string identifying the fetcher type.
	Type() string
}

// Options controls fetching behavior.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	Headers   map[string]string
}

// Content represents fetched page data.
type Content struct {
	URL         string
	HTML        string
	StatusCode  int
	ContentType string
	FetchedAt   time.Time
}

// Error types for distinguishing failure reasons.
// Check with errors.Is(err, fetcher.ErrAntiBot).
var (
	// ErrAntiBot indicates the site's anti-bot protection blocked the request.
	ErrAntiBot = errors.New("anti-bot protection detected")
	// ErrCaptchaChallenge indicates the site served an interactive CAPTCHA.
	ErrCaptchaChallenge = errors.New("captcha challenge detected")
	// ErrChallengeTimeout indicates a timeout while waiting for a challenge to resolve.
	ErrChallengeTimeout = errors.New("challenge timeout")
	// ErrBadStatus indicates a definitive non-2xx response that is not a challenge.
	ErrBadStatus = errors.New("unexpected HTTP status")
)

// IsChallenge reports whether the error came from bot mitigation, as opposed
// to an ordinary network or HTTP failure.
func IsChallenge(err error) bool {
	return errors.Is(err, ErrAntiBot) ||
		errors.Is(err, ErrCaptchaChallenge) ||
		errors.Is(err, ErrChallengeTimeout)
}

// statusError carries the HTTP status of a failed response so the retry
// logic can distinguish server errors from definitive client errors.
type statusError struct {
	code  int
	cause error
}

func (e *statusError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("unexpected HTTP status %d: %v", e.code, e.cause)
	}
	return fmt.Sprintf("unexpected HTTP status %d", e.code)
}

func (e *statusError) Unwrap() error { return ErrBadStatus }

// StatusCode extracts the HTTP status from a fetch error, or 0.
func StatusCode(err error) int {
	var se *statusError
	if asStatusError(err, &se) {
		return se.code
	}
	return 0
}

func asStatusError(err error, target **statusError) bool {
	return errors.As(err, target)
}

// challengeMarkers are body fragments characteristic of interstitial
// challenge pages. Checked case-insensitively.
var challengeMarkers = []string{
	"just a moment...",
	"checking your browser",
	"cf-browser-verification",
	"cf_chl_opt",
	"attention required! | cloudflare",
	"enable javascript and cookies to continue",
	"ddos protection by",
}

// looksLikeChallenge reports whether a response body is a bot-mitigation
// interstitial rather than real page content.
func looksLikeChallenge(body string) bool {
	if body == "" {
		return false
	}
	lower := strings.ToLower(body)
	for _, marker := range challengeMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// Chrome user agent for better compatibility with picky sites.
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// browserHeaders mimics the header set a real desktop browser sends.
// Several department sites reject requests without them.
func browserHeaders() map[string]string {
	return map[string]string{
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,image/apng,*/*;q=0.8",
		"Accept-Language":           "en-US,en;q=0.9",
		"DNT":                       "1",
		"Connection":                "keep-alive",
		"Upgrade-Insecure-Requests": "1",
	}
}
