package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const fixturePage = `<html><head><title>Fixture Page</title></head><body><h1>Hello</h1></body></html>`

// --- Fetch ---

func TestStaticFetcher_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if _, err := w.Write([]byte(fixturePage)); err != nil {
			t.Errorf("write failed: %v", err)
		}
	}))
	t.Cleanup(srv.Close)

	f := NewStatic(StaticConfig{})
	content, err := f.Fetch(context.Background(), srv.URL, Options{})
	if err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}

	if content.HTML != fixturePage {
		t.Errorf("expected the page body, got %q", content.HTML)
	}
	if content.Title != "Fixture Page" {
		t.Errorf("expected title extracted, got %q", content.Title)
	}
	if content.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", content.StatusCode)
	}
	if !strings.Contains(content.ContentType, "text/html") {
		t.Errorf("expected content type recorded, got %q", content.ContentType)
	}
	if content.FetchedAt.IsZero() {
		t.Error("expected FetchedAt set")
	}
}

func TestStaticFetcher_Fetch_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	f := NewStatic(StaticConfig{})
	content, err := f.Fetch(context.Background(), srv.URL+"/missing", Options{})

	if err == nil {
		t.Fatal("expected an error for a 404 response")
	}
	if content.StatusCode != http.StatusNotFound {
		t.Errorf("expected the status recorded on the content, got %d", content.StatusCode)
	}
}

func TestStaticFetcher_Fetch_SendsHeadersAndCookies(t *testing.T) {
	var gotUA, gotHeader, gotCookie string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotHeader = r.Header.Get("X-Inspect")
		gotCookie = r.Header.Get("Cookie")
		if _, err := w.Write([]byte("<html></html>")); err != nil {
			t.Errorf("write failed: %v", err)
		}
	}))
	t.Cleanup(srv.Close)

	f := NewStatic(StaticConfig{UserAgent: "dompick-test/1.0"})
	_, err := f.Fetch(context.Background(), srv.URL, Options{
		Headers: map[string]string{"X-Inspect": "yes"},
		Cookies: []Cookie{{Name: "sid", Value: "abc123"}},
	})
	if err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}

	if gotUA != "dompick-test/1.0" {
		t.Errorf("expected configured user agent, got %q", gotUA)
	}
	if gotHeader != "yes" {
		t.Errorf("expected custom header forwarded, got %q", gotHeader)
	}
	if !strings.Contains(gotCookie, "sid=abc123") {
		t.Errorf("expected cookie forwarded, got %q", gotCookie)
	}
}

func TestStaticFetcher_Fetch_UserAgentOverride(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	t.Cleanup(srv.Close)

	f := NewStatic(StaticConfig{UserAgent: "config-agent"})
	if _, err := f.Fetch(context.Background(), srv.URL, Options{UserAgent: "per-call-agent"}); err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}

	if gotUA != "per-call-agent" {
		t.Errorf("per-call agent should win over config, got %q", gotUA)
	}
}

// --- defaults ---

func TestNewStatic_Defaults(t *testing.T) {
	f := NewStatic(StaticConfig{})
	if f.config.UserAgent == "" {
		t.Error("expected a default user agent")
	}
	if f.config.Timeout != 30*time.Second {
		t.Errorf("expected 30s default timeout, got %v", f.config.Timeout)
	}
	if f.Type() != "static" {
		t.Errorf("expected type \"static\", got %q", f.Type())
	}
}

// --- pageTitle ---

func TestPageTitle(t *testing.T) {
	if got := pageTitle(fixturePage); got != "Fixture Page" {
		t.Errorf("pageTitle() = %q, want %q", got, "Fixture Page")
	}
	if got := pageTitle("<html><body>no title</body></html>"); got != "" {
		t.Errorf("pageTitle() without a title should be empty, got %q", got)
	}
}
