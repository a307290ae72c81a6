package domtree

// Find returns the node with the given id, or nil when absent.
func (t *Tree) Find(id string) *Node {
	if t == nil {
		return nil
	}
	if n, ok := t.index[id]; ok {
		return n
	}
	return nil
}

// Has reports whether id exists in the tree.
func (t *Tree) Has(id string) bool {
	return t.Find(id) != nil
}

// Path returns the chain of nodes from just below the synthetic root down
// to the node with the given id, inclusive. Nil when the id is absent or
// addresses the root itself.
func (t *Tree) Path(id string) []*Node {
	if t == nil || id == RootID {
		return nil
	}
	var path []*Node
	var walk func(n *Node) bool
	walk = func(n *Node) bool {
		if n.ID != RootID {
			path = append(path, n)
		}
		if n.ID == id {
			return true
		}
		for _, c := range n.Children {
			if walk(c) {
				return true
			}
		}
		if n.ID != RootID {
			path = path[:len(path)-1]
		}
		return false
	}
	if !walk(t.Root) {
		return nil
	}
	return path
}

// Walk visits every node depth-first, root included, until fn returns false.
func (t *Tree) Walk(fn func(n *Node, depth int) bool) {
	if t == nil {
		return
	}
	var walk func(n *Node, depth int) bool
	walk = func(n *Node, depth int) bool {
		if !fn(n, depth) {
			return false
		}
		for _, c := range n.Children {
			if !walk(c, depth+1) {
				return false
			}
		}
		return true
	}
	walk(t.Root, 0)
}

// TextNodeCount returns the number of text runs in the tree.
func (t *Tree) TextNodeCount() int {
	count := 0
	t.Walk(func(n *Node, _ int) bool {
		if n.IsText() {
			count++
		}
		return true
	})
	return count
}

// FindNode searches the subtree under n depth-first for the given id.
// It is the allocation-free counterpart of Tree.Find for callers that hold
// only a node.
func FindNode(n *Node, id string) *Node {
	if n == nil {
		return nil
	}
	if n.ID == id {
		return n
	}
	for _, c := range n.Children {
		if found := FindNode(c, id); found != nil {
			return found
		}
	}
	return nil
}
