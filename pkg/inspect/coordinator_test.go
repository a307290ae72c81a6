package inspect

import (
	"sync"
	"testing"

	"github.com/AmeRaino/dompick/pkg/domtree"
)

type recordedChange struct {
	change Change
	state  State
}

type recorder struct {
	mu      sync.Mutex
	changes []recordedChange
}

func (r *recorder) StateChanged(c Change, s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, recordedChange{c, s})
}

func (r *recorder) last() (recordedChange, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.changes) == 0 {
		return recordedChange{}, false
	}
	return r.changes[len(r.changes)-1], true
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.changes)
}

func newCoordinatorWithTree(t *testing.T) (*Coordinator, *recorder) {
	t.Helper()
	tree, err := domtree.Build(`<div><p>Hello</p><p>World</p></div>`)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	c := New()
	c.ReplaceTree(tree)
	rec := &recorder{}
	c.AddListener(rec)
	return c, rec
}

func TestCoordinator_Select_KnownID(t *testing.T) {
	c, rec := newCoordinatorWithTree(t)

	c.Select("root-0-1")

	if got := c.State().SelectedID; got != "root-0-1" {
		t.Errorf("expected selection root-0-1, got %q", got)
	}
	last, ok := rec.last()
	if !ok || last.change != ChangeSelection {
		t.Errorf("expected a selection notification, got %+v", last)
	}
	if last.state.SelectedID != "root-0-1" {
		t.Errorf("notification should carry the new selection, got %q", last.state.SelectedID)
	}
}

func TestCoordinator_Select_UnknownIDResolvesToNoMatch(t *testing.T) {
	c, _ := newCoordinatorWithTree(t)

	c.Select("root-0-1")
	c.Select("root-9-9")

	if got := c.State().SelectedID; got != "" {
		t.Errorf("unknown id should clear the selection, got %q", got)
	}
}

func TestCoordinator_Select_Idempotent(t *testing.T) {
	c, rec := newCoordinatorWithTree(t)

	c.Select("root-0-0")
	before := rec.count()
	c.Select("root-0-0")

	if rec.count() != before {
		t.Error("re-selecting the same id must not notify listeners")
	}
}

func TestCoordinator_Hover_IndependentOfSelection(t *testing.T) {
	c, _ := newCoordinatorWithTree(t)

	c.Select("root-0-0")
	c.Hover("root-0-1")

	state := c.State()
	if state.SelectedID != "root-0-0" || state.HoveredID != "root-0-1" {
		t.Errorf("expected independent slots, got selected=%q hovered=%q",
			state.SelectedID, state.HoveredID)
	}

	c.ClearHover()
	if got := c.State().HoveredID; got != "" {
		t.Errorf("expected hover cleared, got %q", got)
	}
	if got := c.State().SelectedID; got != "root-0-0" {
		t.Errorf("clearing hover must not touch selection, got %q", got)
	}
}

func TestCoordinator_SetMode_PreservesHover(t *testing.T) {
	c, _ := newCoordinatorWithTree(t)

	c.Hover("root-0-0")
	c.SetMode(ModeInteract)

	state := c.State()
	if state.Mode != ModeInteract {
		t.Errorf("expected interact mode, got %v", state.Mode)
	}
	if state.HoveredID != "root-0-0" {
		t.Errorf("mode switch must not clear hover, got %q", state.HoveredID)
	}

	c.SetMode(ModeInspect)
	if got := c.State().HoveredID; got != "root-0-0" {
		t.Errorf("hover must survive the round trip, got %q", got)
	}
}

func TestCoordinator_SetMode_SameModeNoNotify(t *testing.T) {
	c, rec := newCoordinatorWithTree(t)

	before := rec.count()
	c.SetMode(ModeInspect)

	if rec.count() != before {
		t.Error("setting the current mode must not notify")
	}
}

func TestCoordinator_ToggleMode(t *testing.T) {
	c, _ := newCoordinatorWithTree(t)

	if got := c.ToggleMode(); got != ModeInteract {
		t.Errorf("expected toggle to interact, got %v", got)
	}
	if got := c.ToggleMode(); got != ModeInspect {
		t.Errorf("expected toggle back to inspect, got %v", got)
	}
}

func TestCoordinator_ReplaceTree_ClearsIDs(t *testing.T) {
	c, rec := newCoordinatorWithTree(t)

	c.Select("root-0-0")
	c.Hover("root-0-1")

	fresh, err := domtree.Build(`<span>new</span>`)
	if err != nil {
		t.Fatal(err)
	}
	c.ReplaceTree(fresh)

	state := c.State()
	if state.SelectedID != "" || state.HoveredID != "" {
		t.Errorf("tree replacement must clear ids, got selected=%q hovered=%q",
			state.SelectedID, state.HoveredID)
	}
	last, _ := rec.last()
	if last.change != ChangeTree {
		t.Errorf("expected tree notification, got %v", last.change)
	}
	if last.state.Tree != fresh {
		t.Error("notification should carry the new tree")
	}
}

func TestCoordinator_Select_NoTree(t *testing.T) {
	c := New()

	c.Select("root-0")

	if got := c.State().SelectedID; got != "" {
		t.Errorf("selection without a tree must stay empty, got %q", got)
	}
}

func TestCoordinator_ConcurrentUpdates(t *testing.T) {
	c, _ := newCoordinatorWithTree(t)

	ids := []string{"root-0", "root-0-0", "root-0-1", "root-9", ""}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				id := ids[(n+j)%len(ids)]
				if n%2 == 0 {
					c.Select(id)
				} else {
					c.Hover(id)
				}
			}
		}(i)
	}
	wg.Wait()

	// Whatever won, the invariant holds: stored ids exist in the tree.
	state := c.State()
	for _, id := range []string{state.SelectedID, state.HoveredID} {
		if id != "" && !state.Tree.Has(id) {
			t.Errorf("stored id %q does not exist in the tree", id)
		}
	}
}
