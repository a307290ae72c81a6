// Package fetch retrieves page HTML for inspection sessions.
// Implement the Fetcher interface to plug in custom retrieval strategies
// with specific authentication or anti-bot requirements.
package fetch

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Fetcher abstracts page retrieval strategies.
type Fetcher interface {
	// Fetch retrieves page content from a URL.
	Fetch(ctx context.Context, url string, opts Options) (*Content, error)

	// Close releases any resources (relay sessions, etc.).
	Close() error

	// Type returns a string identifying the fetcher type (e.g., "static", "relay").
	Type() string
}

// Options controls fetching behavior.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	Headers   map[string]string
	Cookies   []Cookie
}

// Cookie represents an HTTP cookie.
type Cookie struct {
	Name   string
	Value  string
	Domain string
}

// Content represents fetched page data.
type Content struct {
	URL         string
	HTML        string
	Title       string
	StatusCode  int
	ContentType string
	FetchedAt   time.Time
}

// Error types for distinguishing failure reasons.
// Check with errors.Is(err, fetch.ErrRelayUnavailable).
var (
	// ErrRelayUnavailable indicates the relay service is not reachable.
	ErrRelayUnavailable = errors.New("relay service unavailable")
	// ErrChallengeFailed indicates the relay could not clear the site's challenge.
	ErrChallengeFailed = errors.New("challenge failed")
	// ErrBlocked indicates the site refused the request.
	ErrBlocked = errors.New("request blocked")
)

// NormalizeURL prefixes bare host names with https:// so users can type
// addresses without a scheme. Already-schemed URLs pass through unchanged.
func NormalizeURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return trimmed
	}
	if strings.Contains(trimmed, "://") {
		return trimmed
	}
	return "https://" + trimmed
}
