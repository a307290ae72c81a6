package tui

import (
	"github.com/AmeRaino/dompick/pkg/genai"
	"github.com/AmeRaino/dompick/pkg/surface"
)

// refreshMsg wakes the model after coordinator state changed outside the
// update loop. It carries no data; the handler re-reads session state, so
// coalesced or reordered wakeups are harmless.
type refreshMsg struct{}

// quitMsg asks the program to exit, sent when the outer context ends.
type quitMsg struct{}

// loadedMsg reports the outcome of an asynchronous document load.
type loadedMsg struct {
	gen uint64
	url string
	err error
}

// streamMsg hands a freshly started generation stream to the model, or the
// precondition error that prevented it from starting.
type streamMsg struct {
	gen    uint64
	kind   task
	stream genai.Stream
	err    error
}

// chunkMsg carries one chunk pulled from the active stream.
type chunkMsg struct {
	gen  uint64
	text string
}

// streamDoneMsg marks the active stream as exhausted.
type streamDoneMsg struct {
	gen uint64
	err error
}

// runDoneMsg reports the structured result of a script execution.
type runDoneMsg struct {
	gen    uint64
	result surface.ExecResult
}
