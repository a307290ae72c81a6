package overlay

import (
	"context"
	"sync"
	"testing"

	"github.com/AmeRaino/dompick/pkg/domtree"
	"github.com/AmeRaino/dompick/pkg/inspect"
	"github.com/AmeRaino/dompick/pkg/surface"
)

// fakePainter resolves boxes from a fixed map and records every paint call.
type fakePainter struct {
	mu    sync.Mutex
	boxes map[string]surface.Box
	ops   []string
}

func newFakePainter(ids ...string) *fakePainter {
	boxes := make(map[string]surface.Box)
	for i, id := range ids {
		boxes[id] = surface.Box{X: float64(i * 10), Y: 5, Width: 100, Height: 20}
	}
	return &fakePainter{boxes: boxes}
}

func (f *fakePainter) BoundingBox(_ context.Context, id string) (surface.Box, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	box, ok := f.boxes[id]
	if !ok {
		return surface.Box{}, surface.ErrNoElement
	}
	return box, nil
}

func (f *fakePainter) DrawHighlight(_ context.Context, id string, kind surface.HighlightKind) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, "draw "+kind.String()+" "+id)
	return nil
}

func (f *fakePainter) ClearHighlight(_ context.Context, kind surface.HighlightKind) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, "clear "+kind.String())
	return nil
}

func (f *fakePainter) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = nil
}

func (f *fakePainter) saw(op string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.ops {
		if o == op {
			return true
		}
	}
	return false
}

func state(selected, hovered string, mode inspect.Mode) inspect.State {
	return inspect.State{SelectedID: selected, HoveredID: hovered, Mode: mode}
}

func TestPositioner_DrawsSelection(t *testing.T) {
	painter := newFakePainter("root-0")
	pos := NewPositioner(context.Background(), painter)

	pos.StateChanged(inspect.ChangeSelection, state("root-0", "", inspect.ModeInspect))

	if !painter.saw("draw selection root-0") {
		t.Errorf("expected selection drawn, ops: %v", painter.ops)
	}
	if !painter.saw("clear hover") {
		t.Errorf("expected idle hover cleared, ops: %v", painter.ops)
	}
}

func TestPositioner_DrawsDistinctHover(t *testing.T) {
	painter := newFakePainter("root-0", "root-1")
	pos := NewPositioner(context.Background(), painter)

	pos.StateChanged(inspect.ChangeHover, state("root-0", "root-1", inspect.ModeInspect))

	if !painter.saw("draw selection root-0") || !painter.saw("draw hover root-1") {
		t.Errorf("expected both rectangles drawn, ops: %v", painter.ops)
	}
}

func TestPositioner_HoverOnSelectionSuppressed(t *testing.T) {
	painter := newFakePainter("root-0")
	pos := NewPositioner(context.Background(), painter)

	pos.StateChanged(inspect.ChangeHover, state("root-0", "root-0", inspect.ModeInspect))

	if !painter.saw("draw selection root-0") {
		t.Errorf("expected selection drawn, ops: %v", painter.ops)
	}
	if painter.saw("draw hover root-0") {
		t.Errorf("expected no hover rectangle over the selection, ops: %v", painter.ops)
	}
	if !painter.saw("clear hover") {
		t.Errorf("expected hover cleared, ops: %v", painter.ops)
	}
}

// Switching to interact mode hides the highlights but keeps the ids, so
// switching back restores both rectangles.
func TestPositioner_InteractHidesInspectRestores(t *testing.T) {
	painter := newFakePainter("root-0", "root-1")
	pos := NewPositioner(context.Background(), painter)

	pos.StateChanged(inspect.ChangeSelection, state("root-0", "root-1", inspect.ModeInspect))
	painter.reset()

	pos.StateChanged(inspect.ChangeMode, state("root-0", "root-1", inspect.ModeInteract))
	if !painter.saw("clear selection") || !painter.saw("clear hover") {
		t.Errorf("expected both highlights hidden in interact mode, ops: %v", painter.ops)
	}
	if painter.saw("draw selection root-0") {
		t.Errorf("expected no drawing in interact mode, ops: %v", painter.ops)
	}

	painter.reset()
	pos.StateChanged(inspect.ChangeMode, state("root-0", "root-1", inspect.ModeInspect))
	if !painter.saw("draw selection root-0") || !painter.saw("draw hover root-1") {
		t.Errorf("expected highlights restored after mode switch, ops: %v", painter.ops)
	}
}

func TestPositioner_UnresolvableIDSuppressed(t *testing.T) {
	painter := newFakePainter("root-0")
	pos := NewPositioner(context.Background(), painter)

	pos.StateChanged(inspect.ChangeSelection, state("ghost", "", inspect.ModeInspect))

	if !painter.saw("clear selection") {
		t.Errorf("expected unresolvable selection suppressed, ops: %v", painter.ops)
	}
	if painter.saw("draw selection ghost") {
		t.Errorf("expected no rectangle for vanished element, ops: %v", painter.ops)
	}
}

func TestPositioner_ZeroSizeBoxSuppressed(t *testing.T) {
	painter := newFakePainter()
	painter.boxes["hidden"] = surface.Box{}
	pos := NewPositioner(context.Background(), painter)

	pos.StateChanged(inspect.ChangeSelection, state("hidden", "", inspect.ModeInspect))

	if painter.saw("draw selection hidden") {
		t.Errorf("expected zero-size element suppressed, ops: %v", painter.ops)
	}
}

func TestPositioner_RefreshRepaints(t *testing.T) {
	painter := newFakePainter("root-0")
	pos := NewPositioner(context.Background(), painter)

	pos.StateChanged(inspect.ChangeSelection, state("root-0", "", inspect.ModeInspect))
	painter.reset()

	pos.Refresh()
	if !painter.saw("draw selection root-0") {
		t.Errorf("expected scroll refresh to repaint, ops: %v", painter.ops)
	}
}

func TestPositioner_TreeReplacementClears(t *testing.T) {
	painter := newFakePainter("root-0")
	pos := NewPositioner(context.Background(), painter)

	pos.StateChanged(inspect.ChangeSelection, state("root-0", "", inspect.ModeInspect))
	painter.reset()

	pos.StateChanged(inspect.ChangeTree, state("", "", inspect.ModeInspect))
	if !painter.saw("clear selection") || !painter.saw("clear hover") {
		t.Errorf("expected both highlights cleared on content reload, ops: %v", painter.ops)
	}
}

func TestPositioner_ListensToCoordinator(t *testing.T) {
	tree, err := domtree.Build(`<div><p>x</p></div>`)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	painter := newFakePainter("root-0", "root-0-0")
	pos := NewPositioner(context.Background(), painter)

	coord := inspect.New()
	coord.ReplaceTree(tree)
	coord.AddListener(pos)

	coord.Select("root-0")
	if !painter.saw("draw selection root-0") {
		t.Errorf("expected coordinator notification to draw, ops: %v", painter.ops)
	}

	coord.Hover("root-0-0")
	if !painter.saw("draw hover root-0-0") {
		t.Errorf("expected hover notification to draw, ops: %v", painter.ops)
	}
}
