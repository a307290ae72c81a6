// Package surface defines the live rendering surface: a browser page that
// displays annotated HTML and reports user interactions back as typed events.
// Implement the Surface interface to render through a different engine.
package surface

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Surface abstracts the live preview of an annotated document.
type Surface interface {
	// Render replaces the displayed document. baseURL, when non-empty, is
	// injected as a <base href> tag so relative links resolve.
	Render(ctx context.Context, html, baseURL string) error

	// SetInspect toggles interaction capture and the crosshair cursor.
	SetInspect(ctx context.Context, on bool) error

	// BoundingBox returns the viewport rectangle of the element carrying the
	// given id, or ErrNoElement when the id no longer resolves.
	BoundingBox(ctx context.Context, id string) (Box, error)

	// DrawHighlight positions the highlight of the given kind over the
	// element, hiding it when the element is gone.
	DrawHighlight(ctx context.Context, id string, kind HighlightKind) error

	// ClearHighlight hides the highlight of the given kind.
	ClearHighlight(ctx context.Context, kind HighlightKind) error

	// Eval runs a JavaScript expression against the displayed document and
	// unmarshals its value into out when out is non-nil.
	Eval(ctx context.Context, js string, out any) error

	// Events exposes interactions captured on the page. The channel is never
	// closed; it simply stops delivering after Close.
	Events() <-chan Event

	// Close releases the underlying page and browser resources.
	Close() error
}

// Box is an element rectangle in viewport coordinates.
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Empty reports whether the box covers no area.
func (b Box) Empty() bool {
	return b.Width <= 0 || b.Height <= 0
}

// HighlightKind picks one of the two highlight rectangles. They use distinct
// visual treatments so hover and selection are never confusable.
type HighlightKind int

const (
	HighlightSelection HighlightKind = iota
	HighlightHover
)

// String returns the kind's name as used in element ids and logs.
func (k HighlightKind) String() string {
	switch k {
	case HighlightSelection:
		return "selection"
	case HighlightHover:
		return "hover"
	default:
		return fmt.Sprintf("highlight(%d)", int(k))
	}
}

// EventKind names an interaction reported by the page.
type EventKind string

const (
	// EventReady signals the capture script finished wiring the document.
	EventReady EventKind = "ready"
	// EventHover reports the pointer entering an addressable element.
	EventHover EventKind = "hover"
	// EventSelect reports a click on an addressable element in inspect mode.
	EventSelect EventKind = "select"
	// EventScroll reports the document scrolling; highlights need repositioning.
	EventScroll EventKind = "scroll"
	// EventResize reports the viewport resizing; highlights need repositioning.
	EventResize EventKind = "resize"
)

// Event is one interaction captured on the surface. ID is set for hover and
// select events; an empty ID means the pointer left all addressable elements.
type Event struct {
	Kind EventKind `json:"event"`
	ID   string    `json:"id,omitempty"`
}

// Error types for distinguishing failure reasons.
var (
	// ErrNoElement indicates the id does not resolve to a live element.
	ErrNoElement = errors.New("no element for id")
	// ErrClosed indicates the surface has been closed.
	ErrClosed = errors.New("surface closed")
)

// ParseEvent decodes one binding payload into an Event.
func ParseEvent(payload string) (Event, error) {
	var ev Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return Event{}, fmt.Errorf("malformed event payload: %w", err)
	}
	switch ev.Kind {
	case EventReady, EventHover, EventSelect, EventScroll, EventResize:
		return ev, nil
	default:
		return Event{}, fmt.Errorf("unknown event kind %q", ev.Kind)
	}
}
