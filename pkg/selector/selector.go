// Package selector derives CSS selectors for nodes in a domtree.Tree.
//
// Two strategies are provided. Synthesize walks the ancestor chain of the
// abstract tree and is always available. FindUnique searches the live
// document model for the shortest selector that matches exactly one
// element; it is preferred when the rendered document is available, and
// fails explicitly when its budget runs out.
package selector

import (
	"fmt"
	"strings"

	"github.com/AmeRaino/dompick/pkg/domtree"
)

// Unresolved is the selector value surfaced when every strategy failed.
// A scrape target may still be created with it.
const Unresolved = "unable to generate selector"

// Synthesize builds an ancestor-chain selector for the node with the given
// id: one segment per node from just below the synthetic root down to the
// target, joined by child combinators. Segments prefer an id attribute,
// then the first class token, then a positional :nth-of-type among
// same-tag siblings, then the bare tag. Returns "" when the id is not in
// the tree.
//
// Text-run ids resolve against their owning element; a text run itself
// cannot be addressed by CSS.
func Synthesize(tree *domtree.Tree, id string) string {
	id = domtree.ElementAncestorID(id)
	if id == domtree.RootID {
		return ""
	}
	path := tree.Path(id)
	if len(path) == 0 {
		return ""
	}

	segments := make([]string, 0, len(path))
	parent := tree.Root
	for _, n := range path {
		segments = append(segments, segment(n, parent))
		parent = n
	}
	return strings.Join(segments, " > ")
}

// segment renders one selector step for n given its parent's children.
func segment(n *domtree.Node, parent *domtree.Node) string {
	if id := n.Attributes["id"]; id != "" {
		return n.Tag + "#" + id
	}
	if class := domtree.FirstClass(n.Attributes["class"]); class != "" {
		return n.Tag + "." + class
	}

	sameTag := 0
	position := 0
	for _, sib := range parent.Children {
		if sib.IsText() || sib.Tag != n.Tag {
			continue
		}
		sameTag++
		if sib.ID == n.ID {
			position = sameTag
		}
	}
	if sameTag > 1 {
		return fmt.Sprintf("%s:nth-of-type(%d)", n.Tag, position)
	}
	return n.Tag
}
