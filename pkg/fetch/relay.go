package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/AmeRaino/dompick/internal/logger"
)

// RelayConfig holds configuration for the relay fetcher.
type RelayConfig struct {
	// Endpoint is the relay service URL (e.g., http://localhost:8191/v1).
	Endpoint string

	// Timeout bounds the whole relayed request. Relays drive a real
	// browser, so this is generous by default.
	Timeout time.Duration

	// MaxSolveTime is passed to the relay as its own budget, in
	// milliseconds.
	MaxSolveTime int
}

// DefaultRelayConfig returns sensible defaults.
func DefaultRelayConfig() RelayConfig {
	return RelayConfig{
		Timeout:      120 * time.Second,
		MaxSolveTime: 60000,
	}
}

// RelayFetcher retrieves pages through a FlareSolverr-compatible relay
// service, which drives a browser and clears interactive challenges a
// plain GET cannot. One relay session is kept per domain so solved
// challenges carry over between fetches.
// It implements the Fetcher interface.
type RelayFetcher struct {
	config     RelayConfig
	httpClient *http.Client

	mu       sync.Mutex
	sessions map[string]string // domain -> relay session id
}

// NewRelay creates a relay fetcher against the given endpoint.
func NewRelay(cfg RelayConfig) *RelayFetcher {
	defaults := DefaultRelayConfig()
	if cfg.Timeout == 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.MaxSolveTime == 0 {
		cfg.MaxSolveTime = defaults.MaxSolveTime
	}
	return &RelayFetcher{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		sessions:   make(map[string]string),
	}
}

// relayRequest is the request body for the relay API.
type relayRequest struct {
	Cmd        string `json:"cmd"`
	URL        string `json:"url,omitempty"`
	Session    string `json:"session,omitempty"`
	MaxTimeout int    `json:"maxTimeout,omitempty"`
}

// relayResponse is the response from the relay API.
type relayResponse struct {
	Status   string         `json:"status"`
	Message  string         `json:"message"`
	Solution *relaySolution `json:"solution,omitempty"`
	Session  string         `json:"session,omitempty"`
}

// relaySolution contains the rendered result.
type relaySolution struct {
	URL       string            `json:"url"`
	Status    int               `json:"status"`
	Headers   map[string]string `json:"headers"`
	Response  string            `json:"response"`
	Cookies   []relayCookie     `json:"cookies"`
	UserAgent string            `json:"userAgent"`
}

type relayCookie struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Domain string `json:"domain"`
}

// Fetch retrieves page content through the relay.
func (f *RelayFetcher) Fetch(ctx context.Context, targetURL string, opts Options) (*Content, error) {
	logger.Debug("relay fetch starting", "url", targetURL, "endpoint", f.config.Endpoint)

	session := f.sessionFor(ctx, targetURL)

	resp, err := f.call(ctx, relayRequest{
		Cmd:        "request.get",
		URL:        targetURL,
		Session:    session,
		MaxTimeout: f.config.MaxSolveTime,
	})
	if err != nil {
		return nil, err
	}

	if resp.Status != "ok" {
		logger.Debug("relay returned error status",
			"url", targetURL,
			"status", resp.Status,
			"message", resp.Message)
		return nil, classifyRelayError(targetURL, resp.Message)
	}
	if resp.Solution == nil {
		logger.Warn("relay returned no solution", "url", targetURL)
		return nil, fmt.Errorf("%w: no solution returned", ErrBlocked)
	}

	logger.Debug("relay fetch complete",
		"url", targetURL,
		"session", session,
		"status_code", resp.Solution.Status,
		"cookies", len(resp.Solution.Cookies),
		"response_size", len(resp.Solution.Response))

	return &Content{
		URL:         targetURL,
		HTML:        resp.Solution.Response,
		Title:       pageTitle(resp.Solution.Response),
		StatusCode:  resp.Solution.Status,
		ContentType: resp.Solution.Headers["content-type"],
		FetchedAt:   time.Now(),
	}, nil
}

// sessionFor returns the relay session id for the URL's domain, creating
// one on first use. Session creation failures are tolerated; the relay
// then solves the challenge from scratch on each fetch.
func (f *RelayFetcher) sessionFor(ctx context.Context, targetURL string) string {
	u, err := url.Parse(targetURL)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	domain := u.Hostname()

	f.mu.Lock()
	defer f.mu.Unlock()

	if session, ok := f.sessions[domain]; ok {
		return session
	}

	session := "dompick-" + domain
	resp, err := f.call(ctx, relayRequest{Cmd: "sessions.create", Session: session})
	if err != nil || resp.Status != "ok" {
		logger.Debug("relay session create failed", "domain", domain, "error", err)
		return ""
	}

	f.sessions[domain] = session
	logger.Debug("relay session created", "domain", domain, "session", session)
	return session
}

// call posts one command to the relay and decodes the response.
func (f *RelayFetcher) call(ctx context.Context, body relayRequest) (*relayResponse, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal relay request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.config.Endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		logger.Warn("relay request failed", "endpoint", f.config.Endpoint, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrRelayUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read relay response: %w", err)
	}

	// Relays return errors as JSON bodies with non-200 statuses; parse
	// regardless so the message survives.
	var decoded relayResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		logger.Warn("relay returned invalid response", "status_code", resp.StatusCode, "body", string(respBody))
		return nil, fmt.Errorf("failed to parse relay response: %w", err)
	}
	return &decoded, nil
}

// Close destroys all relay sessions.
func (f *RelayFetcher) Close() error {
	f.mu.Lock()
	sessions := f.sessions
	f.sessions = make(map[string]string)
	f.mu.Unlock()

	for domain, session := range sessions {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if _, err := f.call(ctx, relayRequest{Cmd: "sessions.destroy", Session: session}); err != nil {
			// Cleanup failures are not actionable for the caller.
			logger.Debug("relay session destroy failed", "domain", domain, "error", err)
		} else {
			logger.Debug("relay session destroyed", "domain", domain, "session", session)
		}
		cancel()
	}
	return nil
}

// Type returns the fetcher type.
func (f *RelayFetcher) Type() string {
	return "relay"
}

// classifyRelayError maps relay error messages onto the package sentinels.
func classifyRelayError(url, message string) error {
	msgLower := strings.ToLower(message)

	if strings.Contains(msgLower, "timeout") || strings.Contains(msgLower, "timed out") {
		logger.Warn("relay timed out", "url", url, "message", message)
		return fmt.Errorf("%w: %s", ErrChallengeFailed, message)
	}

	if strings.Contains(msgLower, "captcha") ||
		strings.Contains(msgLower, "challenge") ||
		strings.Contains(msgLower, "could not be solved") {
		logger.Warn("relay could not clear challenge", "url", url, "message", message)
		return fmt.Errorf("%w: %s", ErrChallengeFailed, message)
	}

	logger.Warn("relay request rejected", "url", url, "message", message)
	return fmt.Errorf("%w: %s", ErrBlocked, message)
}
