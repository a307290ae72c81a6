package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// ollamaFixture serves a canned NDJSON chat response and records the
// decoded request.
func ollamaFixture(t *testing.T, lines []string) (*httptest.Server, *ollamaRequest) {
	t.Helper()
	var got ollamaRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("request decode failed: %v", err)
		}
		w.Header().Set("Content-Type", "application/x-ndjson")
		for _, line := range lines {
			if _, err := w.Write([]byte(line + "\n")); err != nil {
				return
			}
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

// --- Generate ---

func TestOllama_Generate_StreamsChunks(t *testing.T) {
	srv, got := ollamaFixture(t, []string{
		`{"message":{"role":"assistant","content":"function "},"done":false}`,
		`{"message":{"role":"assistant","content":"extractData"},"done":false}`,
		`{"message":{"role":"assistant","content":"() {}"},"done":true}`,
	})

	o := NewOllama(Config{BaseURL: srv.URL, Model: "testmodel"})
	s := o.Generate(context.Background(), Request{
		Messages:    []Message{{Role: RoleUser, Content: "write it"}},
		Temperature: 0.2,
	})

	var chunks []string
	for s.Next() {
		chunks = append(chunks, s.Current())
	}
	if err := s.Err(); err != nil {
		t.Fatalf("stream failed: %v", err)
	}

	if strings.Join(chunks, "") != "function extractData() {}" {
		t.Errorf("expected joined chunks to form the script, got %v", chunks)
	}
	if len(chunks) != 3 {
		t.Errorf("expected one chunk per NDJSON line, got %d", len(chunks))
	}

	if got.Model != "testmodel" {
		t.Errorf("expected request model %q, got %q", "testmodel", got.Model)
	}
	if !got.Stream {
		t.Error("request should ask for a streaming response")
	}
	if len(got.Messages) != 1 || got.Messages[0].Content != "write it" {
		t.Errorf("expected the user message to pass through, got %v", got.Messages)
	}
}

func TestOllama_Generate_ServerErrorYieldsFailureChunk(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	o := NewOllama(Config{BaseURL: srv.URL})
	chunks := drain(t, o.Generate(context.Background(), Request{}))

	if len(chunks) != 1 {
		t.Fatalf("expected one failure chunk, got %d: %v", len(chunks), chunks)
	}
	if !strings.Contains(chunks[0], "Generation failed") {
		t.Errorf("failure chunk should say generation failed, got %q", chunks[0])
	}
	if !strings.Contains(chunks[0], "model not loaded") {
		t.Errorf("failure chunk should carry the server message, got %q", chunks[0])
	}
}

func TestOllama_Generate_InBandErrorLine(t *testing.T) {
	srv, _ := ollamaFixture(t, []string{
		`{"message":{"role":"assistant","content":"partial"},"done":false}`,
		`{"error":"model \"missing\" not found"}`,
	})

	o := NewOllama(Config{BaseURL: srv.URL})
	chunks := drain(t, o.Generate(context.Background(), Request{}))

	if len(chunks) != 2 {
		t.Fatalf("expected partial output plus failure chunk, got %v", chunks)
	}
	if chunks[0] != "partial" {
		t.Errorf("expected streamed text before the error, got %q", chunks[0])
	}
	if !strings.Contains(chunks[1], "not found") {
		t.Errorf("failure chunk should carry the error message, got %q", chunks[1])
	}
}

func TestOllama_Generate_UnreachableDaemon(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	o := NewOllama(Config{BaseURL: url})
	chunks := drain(t, o.Generate(context.Background(), Request{}))

	if len(chunks) != 1 || !strings.Contains(chunks[0], "Generation failed") {
		t.Errorf("expected a single failure chunk for an unreachable daemon, got %v", chunks)
	}
	if err := o.Generate(context.Background(), Request{}).Err(); err != nil {
		t.Errorf("transport failures are in-band, Err() should stay nil, got %v", err)
	}
}

// --- Available ---

func TestOllama_Available(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.NotFound(w, r)
	}))

	o := NewOllama(Config{BaseURL: srv.URL})
	if !o.Available() {
		t.Error("expected available with a responding daemon")
	}

	srv.Close()
	if o.Available() {
		t.Error("expected unavailable once the daemon is gone")
	}
}

// --- Defaults ---

func TestNewOllama_Defaults(t *testing.T) {
	o := NewOllama(Config{})

	if o.baseURL != DefaultOllamaURL {
		t.Errorf("expected default base URL %q, got %q", DefaultOllamaURL, o.baseURL)
	}
	if o.Model() != "llama3.2" {
		t.Errorf("expected default model, got %q", o.Model())
	}
	if o.Name() != "ollama" {
		t.Errorf("expected name \"ollama\", got %q", o.Name())
	}
}
