// Package output serializes extraction results to the terminal or a file.
//
// Results come out of the browser as raw JSON. Writers decode that first,
// so every format renders the extracted structure instead of a byte blob.
package output

import (
	"encoding/json"
	"fmt"
	"io"
)

// Format names a supported serialization.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
)

// Formats lists the supported format names, for flag help.
func Formats() []string {
	return []string{string(FormatJSON), string(FormatJSONL), string(FormatYAML)}
}

// Writer emits extraction results in one format. A single buffered result
// is emitted bare; several become a sequence.
type Writer interface {
	// Write emits or buffers one result.
	Write(result any) error

	// WriteAll emits or buffers several results.
	WriteAll(results []any) error

	// Flush writes everything buffered so far.
	Flush() error

	// Close flushes and releases the writer.
	Close() error
}

// Option configures a writer.
type Option func(*config)

type config struct {
	pretty bool
	indent string
}

// WithPretty toggles indented output where the format supports it.
func WithPretty(enabled bool) Option {
	return func(c *config) { c.pretty = enabled }
}

// WithIndent sets the indentation string used when pretty is on.
func WithIndent(indent string) Option {
	return func(c *config) { c.indent = indent }
}

// NewWriter builds a writer for the named format. Pretty printing with
// two-space indentation is the default.
func NewWriter(w io.Writer, format Format, opts ...Option) (Writer, error) {
	cfg := &config{pretty: true, indent: "  "}
	for _, opt := range opts {
		opt(cfg)
	}

	switch format {
	case FormatJSON:
		return NewJSONWriter(w, cfg.pretty, cfg.indent), nil
	case FormatJSONL:
		return NewJSONLWriter(w), nil
	case FormatYAML:
		return NewYAMLWriter(w), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q (want one of %v)", format, Formats())
	}
}

// decodeRaw rebuilds plain Go values from raw JSON so encoders see the
// extracted structure. Anything else passes through unchanged; undecodable
// raw bytes degrade to a string.
func decodeRaw(result any) any {
	raw, ok := result.(json.RawMessage)
	if !ok {
		return result
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return string(raw)
	}
	return decoded
}
