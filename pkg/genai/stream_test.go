package genai

import (
	"testing"
	"time"
)

// drain collects every chunk from a stream.
func drain(t *testing.T, s Stream) []string {
	t.Helper()
	var chunks []string
	for s.Next() {
		chunks = append(chunks, s.Current())
	}
	return chunks
}

// --- pipe ---

func TestPipe_DeliversChunksInOrder(t *testing.T) {
	p := newPipe()
	go func() {
		p.push("one")
		p.push("two")
		p.push("three")
		p.finish()
	}()

	chunks := drain(t, p)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d: %v", len(chunks), chunks)
	}
	for i, want := range []string{"one", "two", "three"} {
		if chunks[i] != want {
			t.Errorf("chunk %d: expected %q, got %q", i, want, chunks[i])
		}
	}
	if err := p.Err(); err != nil {
		t.Errorf("expected nil error after clean finish, got %v", err)
	}
}

func TestPipe_SkipsEmptyChunks(t *testing.T) {
	p := newPipe()
	go func() {
		p.push("")
		p.push("real")
		p.push("")
		p.finish()
	}()

	chunks := drain(t, p)
	if len(chunks) != 1 || chunks[0] != "real" {
		t.Errorf("expected only the non-empty chunk, got %v", chunks)
	}
}

func TestPipe_CloseStopsProducer(t *testing.T) {
	p := newPipe()
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		for p.push("chunk") {
		}
	}()

	if !p.Next() {
		t.Fatal("expected at least one chunk before Close")
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("producer did not stop after Close")
	}

	// Close is safe to call again.
	if err := p.Close(); err != nil {
		t.Errorf("second Close() failed: %v", err)
	}
}

func TestPipe_FailKeepsFirstError(t *testing.T) {
	p := newPipe()
	first := errString("first")
	p.fail(first)
	p.fail(errString("second"))
	p.finish()

	for p.Next() {
	}
	if p.Err() == nil || p.Err().Error() != "first" {
		t.Errorf("expected first error to win, got %v", p.Err())
	}
}

type errString string

func (e errString) Error() string { return string(e) }

// --- singleChunk ---

func TestSingleChunk_YieldsExactlyOne(t *testing.T) {
	s := singleChunk("only")

	chunks := drain(t, s)
	if len(chunks) != 1 || chunks[0] != "only" {
		t.Errorf("expected exactly [\"only\"], got %v", chunks)
	}
	if err := s.Err(); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

// --- Collect ---

func TestCollect_JoinsAndStripsFences(t *testing.T) {
	p := newPipe()
	go func() {
		p.push("```javascript\n")
		p.push("function extractData(document) {\n")
		p.push("  return {};\n")
		p.push("}\n")
		p.push("```")
		p.finish()
	}()

	out, err := Collect(p)
	if err != nil {
		t.Fatalf("Collect() failed: %v", err)
	}
	want := "function extractData(document) {\n  return {};\n}"
	if out != want {
		t.Errorf("expected %q, got %q", want, out)
	}
}

func TestCollect_ReturnsStreamError(t *testing.T) {
	p := newPipe()
	p.push("partial")
	p.fail(errString("cancelled"))
	p.finish()

	_, err := Collect(p)
	if err == nil || err.Error() != "cancelled" {
		t.Errorf("expected stream error to surface, got %v", err)
	}
}

// --- StripFences ---

func TestStripFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain code untouched",
			input: "function extractData(document) { return {}; }",
			want:  "function extractData(document) { return {}; }",
		},
		{
			name:  "language tagged fence",
			input: "```javascript\nreturn 1;\n```",
			want:  "return 1;",
		},
		{
			name:  "bare fence",
			input: "```\nreturn 1;\n```",
			want:  "return 1;",
		},
		{
			name:  "prose around fence",
			input: "Here is the script:\n```js\nreturn 1;\n```\nLet me know if it works.",
			want:  "return 1;",
		},
		{
			name:  "unterminated fence",
			input: "```js\nreturn 1;",
			want:  "return 1;",
		},
		{
			name:  "surrounding whitespace trimmed",
			input: "  \n return 1; \n ",
			want:  "return 1;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StripFences(tt.input)
			if got != tt.want {
				t.Errorf("StripFences(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
