// Package overlay keeps the highlight rectangles drawn over the live
// surface in step with the coordinator's selection and hover state.
package overlay

import (
	"context"
	"sync"

	"github.com/AmeRaino/dompick/internal/logger"
	"github.com/AmeRaino/dompick/pkg/inspect"
	"github.com/AmeRaino/dompick/pkg/surface"
)

// Painter is the slice of the rendering surface the positioner draws with.
type Painter interface {
	BoundingBox(ctx context.Context, id string) (surface.Box, error)
	DrawHighlight(ctx context.Context, id string, kind surface.HighlightKind) error
	ClearHighlight(ctx context.Context, kind surface.HighlightKind) error
}

// Positioner redraws the selection and hover highlights on every state
// change and on scroll/resize signals from the surface. It implements
// inspect.Listener so it can be registered with a coordinator directly.
//
// Rules: interact mode hides both highlights without forgetting the ids,
// a hover equal to the selection shows only the selection rectangle, and
// an id that no longer resolves to a live element is suppressed rather
// than drawn or errored.
type Positioner struct {
	ctx     context.Context
	painter Painter

	mu       sync.Mutex
	selected string
	hovered  string
	mode     inspect.Mode
}

// NewPositioner returns a positioner drawing through p. The context bounds
// all painting calls, which happen outside any request path.
func NewPositioner(ctx context.Context, p Painter) *Positioner {
	return &Positioner{
		ctx:     ctx,
		painter: p,
		mode:    inspect.ModeInspect,
	}
}

// StateChanged records the new state and redraws both highlights.
func (p *Positioner) StateChanged(_ inspect.Change, s inspect.State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selected = s.SelectedID
	p.hovered = s.HoveredID
	p.mode = s.Mode
	p.redraw()
}

// Refresh recomputes both highlights from the last known state. Call it
// when the surface reports a scroll or resize.
func (p *Positioner) Refresh() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.redraw()
}

// redraw repaints both rectangles. Caller must hold mu.
func (p *Positioner) redraw() {
	if p.mode == inspect.ModeInteract {
		p.clear(surface.HighlightSelection)
		p.clear(surface.HighlightHover)
		return
	}

	p.place(p.selected, surface.HighlightSelection)

	hover := p.hovered
	if hover == p.selected {
		// The selection rectangle already marks this element.
		hover = ""
	}
	p.place(hover, surface.HighlightHover)
}

// place draws the highlight over id, or hides it when id is empty or no
// longer resolves to a live element.
func (p *Positioner) place(id string, kind surface.HighlightKind) {
	if id == "" {
		p.clear(kind)
		return
	}
	box, err := p.painter.BoundingBox(p.ctx, id)
	if err != nil || box.Empty() {
		p.clear(kind)
		return
	}
	if err := p.painter.DrawHighlight(p.ctx, id, kind); err != nil {
		logger.Debug("highlight draw failed", "id", id, "kind", kind.String(), "error", err)
	}
}

func (p *Positioner) clear(kind surface.HighlightKind) {
	if err := p.painter.ClearHighlight(p.ctx, kind); err != nil {
		logger.Debug("highlight clear failed", "kind", kind.String(), "error", err)
	}
}
