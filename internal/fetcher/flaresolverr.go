package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spergel/princeton-academic-events/internal/logger"
)

// ErrFlareSolverrUnavailable indicates the FlareSolverr service is not reachable.
var ErrFlareSolverrUnavailable = errors.New("FlareSolverr service unavailable")

// FlareSolverr is a client for the FlareSolverr API, a proxy service that
// solves Cloudflare challenges in a managed browser. It implements the
// Fetcher interface so the challenge fallback can treat it like any other
// fetch strategy.
type FlareSolverr struct {
	baseURL    string
	httpClient *http.Client
	maxTimeout int // milliseconds
}

type flareRequest struct {
	Cmd        string `json:"cmd"`
	URL        string `json:"url,omitempty"`
	MaxTimeout int    `json:"maxTimeout,omitempty"`
}

type flareResponse struct {
	Status   string         `json:"status"`
	Message  string         `json:"message"`
	Solution *flareSolution `json:"solution,omitempty"`
}

type flareSolution struct {
	URL      string            `json:"url"`
	Status   int               `json:"status"`
	Headers  map[string]string `json:"headers"`
	Response string            `json:"response"`
}

// NewFlareSolverr creates a new FlareSolverr client for the given endpoint,
// e.g. http://localhost:8191/v1.
func NewFlareSolverr(baseURL string) *FlareSolverr {
	return &FlareSolverr{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second, // challenge solving can take a while
		},
		maxTimeout: 60000,
	}
}

// Fetch routes the request through FlareSolverr and returns the solved page.
func (f *FlareSolverr) Fetch(ctx context.Context, targetURL string, _ Options) (Content, error) {
	result := Content{
		URL:       targetURL,
		FetchedAt: time.Now(),
	}

	reqBody := flareRequest{
		Cmd:        "request.get",
		URL:        targetURL,
		MaxTimeout: f.maxTimeout,
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return result, fmt.Errorf("failed to marshal FlareSolverr request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL, bytes.NewReader(jsonBody))
	if err != nil {
		return result, fmt.Errorf("failed to create FlareSolverr request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		logger.Warn("FlareSolverr request failed", "url", targetURL, "error", err)
		return result, fmt.Errorf("%w: %v", ErrFlareSolverrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return result, fmt.Errorf("failed to read FlareSolverr response: %w", err)
	}

	// FlareSolverr returns 500 with a JSON body on errors, so parse before
	// checking the status code.
	var fsResp flareResponse
	if err := json.Unmarshal(body, &fsResp); err != nil {
		return result, fmt.Errorf("failed to parse FlareSolverr response: %w", err)
	}

	if fsResp.Status != "ok" {
		return result, f.classifyError(targetURL, fsResp.Message)
	}
	if fsResp.Solution == nil {
		return result, fmt.Errorf("%w: no solution returned", ErrAntiBot)
	}

	result.StatusCode = fsResp.Solution.Status
	result.HTML = fsResp.Solution.Response
	result.ContentType = fsResp.Solution.Headers["content-type"]

	logger.Debug("FlareSolverr solved",
		"url", targetURL,
		"status_code", fsResp.Solution.Status,
		"response_size", len(fsResp.Solution.Response))
	return result, nil
}

// classifyError maps FlareSolverr error messages onto the fetch error taxonomy.
func (f *FlareSolverr) classifyError(url, message string) error {
	msgLower := strings.ToLower(message)

	if strings.Contains(msgLower, "timeout") || strings.Contains(msgLower, "timed out") {
		logger.Warn("FlareSolverr timed out", "url", url, "message", message)
		return fmt.Errorf("%w: %s", ErrChallengeTimeout, message)
	}

	if strings.Contains(msgLower, "could not be solved") ||
		strings.Contains(msgLower, "captcha") ||
		strings.Contains(msgLower, "turnstile") ||
		strings.Contains(msgLower, "hcaptcha") ||
		strings.Contains(msgLower, "recaptcha") {
		logger.Warn("FlareSolverr could not solve challenge", "url", url, "message", message)
		return fmt.Errorf("%w: %s", ErrCaptchaChallenge, message)
	}

	logger.Warn("FlareSolverr failed", "url", url, "message", message)
	return fmt.Errorf("%w: %s", ErrAntiBot, message)
}

// Close releases resources.
func (f *FlareSolverr) Close() error {
	return nil
}

// Type returns the fetcher type.
func (f *FlareSolverr) Type() string {
	return "flaresolverr"
}
