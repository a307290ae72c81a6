// Package inspect owns the selection state shared by the live surface, the
// tree view, and the highlight overlays.
//
// The Coordinator is the single writer of the selected id, hovered id,
// operating mode, and current tree. Every other component reads a snapshot
// or requests a change; none mutates the state directly. Listeners are
// notified synchronously on the mutating goroutine and must not block or
// call back into the Coordinator.
package inspect

import (
	"sync"

	"github.com/AmeRaino/dompick/pkg/domtree"
)

// Mode governs whether pointer events over the live surface are captured
// for inspection or passed through to the rendered page.
type Mode int

const (
	// ModeInspect captures hover and click for selection and shows a
	// crosshair cursor over addressable elements.
	ModeInspect Mode = iota

	// ModeInteract disables capture entirely; the rendered page behaves
	// normally and overlays stop rendering.
	ModeInteract
)

func (m Mode) String() string {
	if m == ModeInteract {
		return "interact"
	}
	return "inspect"
}

// Change identifies which part of the state a notification covers.
type Change int

const (
	ChangeSelection Change = iota
	ChangeHover
	ChangeMode
	ChangeTree
)

// State is an immutable snapshot of the coordinator's state.
type State struct {
	Tree       *domtree.Tree
	SelectedID string
	HoveredID  string
	Mode       Mode
}

// Listener receives state-change notifications.
type Listener interface {
	StateChanged(c Change, s State)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(c Change, s State)

func (f ListenerFunc) StateChanged(c Change, s State) { f(c, s) }

// Coordinator synchronizes the three views of one document.
type Coordinator struct {
	mu        sync.Mutex
	tree      *domtree.Tree
	selected  string
	hovered   string
	mode      Mode
	listeners []Listener
}

// New returns a Coordinator in inspect mode with no tree.
func New() *Coordinator {
	return &Coordinator{mode: ModeInspect}
}

// AddListener registers l for all subsequent changes.
func (c *Coordinator) AddListener(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// State returns the current snapshot.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// Select updates the selected id. An id absent from the current tree
// resolves to no selection rather than an error. Passing "" clears.
func (c *Coordinator) Select(id string) {
	c.setID(&c.selected, id, ChangeSelection)
}

// Hover updates the hovered id with the same resolution rules as Select.
func (c *Coordinator) Hover(id string) {
	c.setID(&c.hovered, id, ChangeHover)
}

// ClearSelection clears the selected id.
func (c *Coordinator) ClearSelection() { c.Select("") }

// ClearHover clears the hovered id.
func (c *Coordinator) ClearHover() { c.Hover("") }

// SetMode switches the operating mode immediately. The selected and
// hovered ids are unaffected.
func (c *Coordinator) SetMode(m Mode) {
	c.mu.Lock()
	if c.mode == m {
		c.mu.Unlock()
		return
	}
	c.mode = m
	listeners, state := c.prepareNotify()
	c.mu.Unlock()

	notify(listeners, ChangeMode, state)
}

// ToggleMode flips between inspect and interact and returns the new mode.
func (c *Coordinator) ToggleMode() Mode {
	c.mu.Lock()
	if c.mode == ModeInspect {
		c.mode = ModeInteract
	} else {
		c.mode = ModeInspect
	}
	m := c.mode
	listeners, state := c.prepareNotify()
	c.mu.Unlock()

	notify(listeners, ChangeMode, state)
	return m
}

// ReplaceTree installs a freshly built tree. Both ids are cleared: stored
// ids always reference nodes of the current tree.
func (c *Coordinator) ReplaceTree(t *domtree.Tree) {
	c.mu.Lock()
	c.tree = t
	c.selected = ""
	c.hovered = ""
	listeners, state := c.prepareNotify()
	c.mu.Unlock()

	notify(listeners, ChangeTree, state)
}

// Tree returns the current tree, which may be nil before the first load.
func (c *Coordinator) Tree() *domtree.Tree {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tree
}

func (c *Coordinator) setID(slot *string, id string, change Change) {
	c.mu.Lock()
	resolved := id
	if resolved != "" && (c.tree == nil || !c.tree.Has(resolved)) {
		resolved = ""
	}
	if *slot == resolved {
		c.mu.Unlock()
		return
	}
	*slot = resolved
	listeners, state := c.prepareNotify()
	c.mu.Unlock()

	notify(listeners, change, state)
}

// prepareNotify copies the listener list and the snapshot under the lock,
// so dispatch happens unlocked.
func (c *Coordinator) prepareNotify() ([]Listener, State) {
	listeners := make([]Listener, len(c.listeners))
	copy(listeners, c.listeners)
	return listeners, c.snapshot()
}

func (c *Coordinator) snapshot() State {
	return State{
		Tree:       c.tree,
		SelectedID: c.selected,
		HoveredID:  c.hovered,
		Mode:       c.mode,
	}
}

func notify(listeners []Listener, change Change, state State) {
	for _, l := range listeners {
		l.StateChanged(change, state)
	}
}
