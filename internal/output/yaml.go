package output

import (
	"bufio"
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLWriter buffers results and emits them as one YAML document. Raw JSON
// results are decoded first; encoding them directly would render a byte
// sequence instead of the extracted structure.
type YAMLWriter struct {
	w     *bufio.Writer
	items []any
}

// NewYAMLWriter returns a YAML writer over w.
func NewYAMLWriter(w io.Writer) *YAMLWriter {
	return &YAMLWriter{w: bufio.NewWriter(w)}
}

// Write buffers one result.
func (w *YAMLWriter) Write(result any) error {
	w.items = append(w.items, decodeRaw(result))
	return nil
}

// WriteAll buffers several results.
func (w *YAMLWriter) WriteAll(results []any) error {
	for _, r := range results {
		w.items = append(w.items, decodeRaw(r))
	}
	return nil
}

// Flush emits the buffered results: a bare document for one, a sequence
// for several.
func (w *YAMLWriter) Flush() error {
	enc := yaml.NewEncoder(w.w)
	enc.SetIndent(2)

	var doc any = w.items
	if w.items == nil {
		doc = []any{}
	}
	if len(w.items) == 1 {
		doc = w.items[0]
	}

	if err := enc.Encode(doc); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return w.w.Flush()
}

// Close flushes the writer.
func (w *YAMLWriter) Close() error {
	return w.Flush()
}
