// Package treeview models the textual tree pane: which rows are visible
// given per-node collapse state, and where the viewport sits.
//
// The model is pure bookkeeping so it can be tested without a terminal;
// rendering the rows is the caller's concern. Collapse state is view-local
// and never mutates the underlying tree.
package treeview

import (
	"github.com/AmeRaino/dompick/pkg/domtree"
)

// Row is one visible line of the tree pane.
type Row struct {
	ID        string
	Depth     int
	Label     string
	HasKids   bool
	Collapsed bool
	IsText    bool
}

// Model tracks collapse state and the scroll viewport for one tree.
type Model struct {
	tree      *domtree.Tree
	collapsed map[string]bool
	rows      []Row
	offset    int
	height    int
}

// New returns an empty model with the given viewport height.
func New(height int) *Model {
	if height < 1 {
		height = 1
	}
	return &Model{
		collapsed: make(map[string]bool),
		height:    height,
	}
}

// SetTree installs a new tree and resets collapse state and scrolling.
func (m *Model) SetTree(t *domtree.Tree) {
	m.tree = t
	m.collapsed = make(map[string]bool)
	m.offset = 0
	m.rebuild()
}

// SetHeight resizes the viewport.
func (m *Model) SetHeight(h int) {
	if h < 1 {
		h = 1
	}
	m.height = h
	m.clampOffset()
}

// Height returns the viewport height.
func (m *Model) Height() int { return m.height }

// Offset returns the index of the first row in the viewport.
func (m *Model) Offset() int { return m.offset }

// Rows returns every visible row (collapse applied), full length.
func (m *Model) Rows() []Row { return m.rows }

// Viewport returns the slice of rows currently inside the window.
func (m *Model) Viewport() []Row {
	if len(m.rows) == 0 {
		return nil
	}
	end := m.offset + m.height
	if end > len(m.rows) {
		end = len(m.rows)
	}
	return m.rows[m.offset:end]
}

// IndexOf returns the row index of id among visible rows, or -1.
func (m *Model) IndexOf(id string) int {
	for i, r := range m.rows {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// RowAt returns the visible row at index.
func (m *Model) RowAt(index int) (Row, bool) {
	if index < 0 || index >= len(m.rows) {
		return Row{}, false
	}
	return m.rows[index], true
}

// Toggle flips the collapse state of the node with the given id.
func (m *Model) Toggle(id string) {
	if m.tree == nil {
		return
	}
	n := m.tree.Find(id)
	if n == nil || len(n.Children) == 0 {
		return
	}
	m.collapsed[id] = !m.collapsed[id]
	m.rebuild()
}

// Collapse hides the children of id.
func (m *Model) Collapse(id string) {
	if m.tree == nil || m.collapsed[id] {
		return
	}
	n := m.tree.Find(id)
	if n == nil || len(n.Children) == 0 {
		return
	}
	m.collapsed[id] = true
	m.rebuild()
}

// Expand shows the children of id.
func (m *Model) Expand(id string) {
	if !m.collapsed[id] {
		return
	}
	delete(m.collapsed, id)
	m.rebuild()
}

// IsCollapsed reports the collapse state of id.
func (m *Model) IsCollapsed(id string) bool { return m.collapsed[id] }

// ScrollBy moves the viewport by delta rows, clamped.
func (m *Model) ScrollBy(delta int) {
	m.offset += delta
	m.clampOffset()
}

// EnsureVisible scrolls the row for id into a centered position when it is
// outside the viewport. Ancestors collapsed above it are expanded first so
// the row exists. Rows already on screen are left where they are.
func (m *Model) EnsureVisible(id string) {
	if m.tree == nil || id == "" {
		return
	}

	if m.IndexOf(id) == -1 {
		expanded := false
		for _, ancestor := range m.tree.Path(id) {
			if ancestor.ID == id {
				break
			}
			if m.collapsed[ancestor.ID] {
				delete(m.collapsed, ancestor.ID)
				expanded = true
			}
		}
		if expanded {
			m.rebuild()
		}
	}

	idx := m.IndexOf(id)
	if idx == -1 {
		return
	}
	if idx >= m.offset && idx < m.offset+m.height {
		return
	}
	m.offset = idx - m.height/2
	m.clampOffset()
}

// NextID returns the row id after current, or current at the end. An empty
// current yields the first row.
func (m *Model) NextID(current string) string {
	if len(m.rows) == 0 {
		return ""
	}
	idx := m.IndexOf(current)
	if idx == -1 {
		return m.rows[0].ID
	}
	if idx+1 < len(m.rows) {
		return m.rows[idx+1].ID
	}
	return current
}

// PrevID returns the row id before current, or current at the start.
func (m *Model) PrevID(current string) string {
	if len(m.rows) == 0 {
		return ""
	}
	idx := m.IndexOf(current)
	if idx <= 0 {
		return m.rows[0].ID
	}
	return m.rows[idx-1].ID
}

func (m *Model) rebuild() {
	m.rows = m.rows[:0]
	if m.tree == nil {
		return
	}

	var walk func(n *domtree.Node, depth int)
	walk = func(n *domtree.Node, depth int) {
		m.rows = append(m.rows, Row{
			ID:        n.ID,
			Depth:     depth,
			Label:     n.Label(),
			HasKids:   len(n.Children) > 0,
			Collapsed: m.collapsed[n.ID],
			IsText:    n.IsText(),
		})
		if m.collapsed[n.ID] {
			return
		}
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	walk(m.tree.Root, 0)
	m.clampOffset()
}

func (m *Model) clampOffset() {
	max := len(m.rows) - m.height
	if max < 0 {
		max = 0
	}
	if m.offset > max {
		m.offset = max
	}
	if m.offset < 0 {
		m.offset = 0
	}
}
