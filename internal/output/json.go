package output

import (
	"bufio"
	"encoding/json"
	"io"
)

// JSONWriter buffers results and emits them as one JSON document: a bare
// object for a single result, an array for several.
type JSONWriter struct {
	w      *bufio.Writer
	pretty bool
	indent string
	items  []any
}

// NewJSONWriter returns a JSON writer over w.
func NewJSONWriter(w io.Writer, pretty bool, indent string) *JSONWriter {
	return &JSONWriter{
		w:      bufio.NewWriter(w),
		pretty: pretty,
		indent: indent,
	}
}

// Write buffers one result.
func (w *JSONWriter) Write(result any) error {
	w.items = append(w.items, decodeRaw(result))
	return nil
}

// WriteAll buffers several results.
func (w *JSONWriter) WriteAll(results []any) error {
	for _, r := range results {
		w.items = append(w.items, decodeRaw(r))
	}
	return nil
}

// Flush emits the buffered results as one document.
func (w *JSONWriter) Flush() error {
	var doc any = w.items
	if w.items == nil {
		doc = []any{}
	}
	if len(w.items) == 1 {
		doc = w.items[0]
	}

	var out []byte
	var err error
	if w.pretty {
		out, err = json.MarshalIndent(doc, "", w.indent)
	} else {
		out, err = json.Marshal(doc)
	}
	if err != nil {
		return err
	}

	if _, err := w.w.Write(out); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	return w.w.Flush()
}

// Close flushes the writer.
func (w *JSONWriter) Close() error {
	return w.Flush()
}

// JSONLWriter emits each result as one compact JSON line, immediately.
type JSONLWriter struct {
	w *bufio.Writer
}

// NewJSONLWriter returns a JSONL writer over w.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	return &JSONLWriter{w: bufio.NewWriter(w)}
}

// Write emits one result as a JSON line.
func (w *JSONLWriter) Write(result any) error {
	out, err := json.Marshal(decodeRaw(result))
	if err != nil {
		return err
	}
	if _, err := w.w.Write(out); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	return w.w.Flush()
}

// WriteAll emits each result on its own line.
func (w *JSONLWriter) WriteAll(results []any) error {
	for _, r := range results {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// Flush writes out the buffer. Lines are already flushed per Write.
func (w *JSONLWriter) Flush() error {
	return w.w.Flush()
}

// Close flushes the writer.
func (w *JSONLWriter) Close() error {
	return w.Flush()
}
