// Package genai streams AI-authored extraction scripts and element
// explanations from a configured provider.
//
// Generators never fail out-of-band: a missing credential or a provider
// error is delivered as a single explanatory chunk on the stream itself,
// so callers render it like any other output.
package genai

import (
	"context"
	"fmt"
	"time"
)

// Role represents the role of a message sender.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a chat message.
type Message struct {
	Role    Role
	Content string
}

// Request represents a completion request.
type Request struct {
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// defaultMaxTokens is used when a request leaves MaxTokens unset.
const defaultMaxTokens = 4096

// Stream is a lazy, finite, non-restartable sequence of text chunks.
// Chunks concatenated in delivery order reconstruct the full output.
type Stream interface {
	// Next advances to the following chunk, blocking until one arrives.
	// It returns false when the stream is exhausted.
	Next() bool

	// Current returns the chunk Next advanced to.
	Current() string

	// Err returns the terminal error, if any, once Next returned false.
	// Provider failures are delivered in-band and leave Err nil; only
	// cancellation surfaces here.
	Err() error

	// Close releases the stream early. Safe to call more than once.
	Close() error
}

// Generator produces completions as chunk streams.
type Generator interface {
	// Generate starts a completion. It always returns a stream; failures
	// arrive as in-band chunks.
	Generate(ctx context.Context, req Request) Stream

	// Name returns the provider identifier (e.g., "anthropic", "ollama").
	Name() string

	// Model returns the configured model name.
	Model() string

	// Available reports whether the generator can be called at all,
	// typically whether its credential is configured.
	Available() bool
}

// Config holds common configuration for generators.
type Config struct {
	APIKey     string
	BaseURL    string // for custom endpoints or self-hosted providers
	Model      string
	MaxRetries int
	Timeout    time.Duration
	// HTTPReferer and AppTitle for OpenRouter attribution
	HTTPReferer string
	AppTitle    string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxRetries: 3,
		Timeout:    120 * time.Second,
	}
}

// credentialNotice is the single chunk yielded when a generator is invoked
// without its credential configured.
func credentialNotice(provider, envKey string) string {
	return fmt.Sprintf("// No API key configured for %s.\n// Set %s and try again.\n", provider, envKey)
}

// failureNotice is the single chunk yielded when a provider call fails
// after the stream started.
func failureNotice(err error) string {
	return fmt.Sprintf("\n// Generation failed: %v\n", err)
}

// splitSystem separates the system prompt from the conversation for
// providers that carry it out of band.
func splitSystem(msgs []Message) (system string, rest []Message) {
	rest = make([]Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Role == RoleSystem {
			system = m.Content
			continue
		}
		rest = append(rest, m)
	}
	return system, rest
}
