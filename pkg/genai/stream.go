package genai

import (
	"strings"
	"sync"
)

// pipe is the channel-backed Stream the providers feed from a producer
// goroutine. Closing the pipe makes pending pushes return false so the
// producer can stop promptly.
type pipe struct {
	ch      chan string
	current string

	mu  sync.Mutex
	err error

	done      chan struct{}
	closeOnce sync.Once
}

func newPipe() *pipe {
	return &pipe{
		ch:   make(chan string, 8),
		done: make(chan struct{}),
	}
}

// push delivers one chunk. It returns false once the consumer closed the
// stream; the producer must stop then. Empty chunks are skipped.
func (p *pipe) push(text string) bool {
	if text == "" {
		return true
	}
	select {
	case p.ch <- text:
		return true
	case <-p.done:
		return false
	}
}

// fail records a terminal error. Use only for cancellation; provider
// failures go through push as in-band chunks.
func (p *pipe) fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err == nil {
		p.err = err
	}
}

// finish marks the end of production. The producer must call it exactly
// once, after its last push.
func (p *pipe) finish() {
	close(p.ch)
}

func (p *pipe) Next() bool {
	text, ok := <-p.ch
	if !ok {
		return false
	}
	p.current = text
	return true
}

func (p *pipe) Current() string { return p.current }

func (p *pipe) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *pipe) Close() error {
	p.closeOnce.Do(func() { close(p.done) })
	return nil
}

// singleChunk returns a stream that yields text once and ends. Used for
// in-band notices like missing credentials.
func singleChunk(text string) Stream {
	p := newPipe()
	go func() {
		defer p.finish()
		p.push(text)
	}()
	return p
}

// Collect drains the stream, reassembles the chunks in delivery order and
// strips any markdown code fence the model wrapped the output in.
func Collect(s Stream) (string, error) {
	defer s.Close()

	var b strings.Builder
	for s.Next() {
		b.WriteString(s.Current())
	}
	if err := s.Err(); err != nil {
		return "", err
	}
	return StripFences(b.String()), nil
}

// StripFences extracts the contents of the first markdown code fence, with
// or without a language tag. Text without fences is returned trimmed.
func StripFences(text string) string {
	trimmed := strings.TrimSpace(text)

	start := strings.Index(trimmed, "```")
	if start == -1 {
		return trimmed
	}

	rest := trimmed[start+3:]
	nl := strings.IndexByte(rest, '\n')
	if nl == -1 {
		// An opening fence with nothing below it; leave the text alone.
		return trimmed
	}
	rest = rest[nl+1:]

	if end := strings.Index(rest, "```"); end != -1 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}
