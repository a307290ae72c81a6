// Package domtree builds an addressable tree model from raw HTML.
//
// Every element and every meaningful text run receives a stable, path-based
// identifier derived from its position in the document. The same identifier
// is injected into the serialized HTML as a data attribute, so a rendered
// element and its tree counterpart can always be resolved to each other.
// Re-parsing the same input yields the same identifiers, which makes
// selections survive a reload.
package domtree

import (
	"strings"
	"unicode/utf8"
)

const (
	// RootID is the identifier of the synthetic root node.
	RootID = "root"

	// TextTag is the tag sentinel used for text runs.
	TextTag = "#text"

	// IDAttr is the attribute injected into rendered elements to carry the
	// node identifier. It never appears in a Node's Attributes map.
	IDAttr = "data-dompick-id"

	// textSeparator marks text-run identifiers: "<parentID>-txt-<index>".
	textSeparator = "-txt-"
)

// voidElements are elements that never carry children and serialize without
// a closing tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// IsVoidElement reports whether tag is one of the fixed void elements.
func IsVoidElement(tag string) bool {
	return voidElements[strings.ToLower(tag)]
}

// Node is one structural unit of the parsed document: an element or a
// non-whitespace text run. Nodes are immutable after Build.
type Node struct {
	// ID is a dash-joined path of sibling indices from the root, e.g.
	// "root-0-1-2". Text runs use a "-txt-" marker before their index.
	ID string `json:"id"`

	// Tag is the lowercase element name, or "#text" for text runs.
	Tag string `json:"tag"`

	// Attributes holds the element's attributes, excluding the injected
	// identifier attribute. Nil for text runs.
	Attributes map[string]string `json:"attributes,omitempty"`

	// Children holds child elements and kept text runs in document order.
	Children []*Node `json:"children,omitempty"`

	// Text is the raw text of a text run. Empty for elements.
	Text string `json:"text,omitempty"`

	// SelfClosing is true for void elements and for text runs.
	SelfClosing bool `json:"self_closing"`
}

// IsText reports whether the node is a text run.
func (n *Node) IsText() bool {
	return n.Tag == TextTag
}

// TextContent returns the node's own text for a text run, or the
// whitespace-collapsed concatenation of all descendant text runs for an
// element.
func (n *Node) TextContent() string {
	if n.IsText() {
		return collapseSpace(n.Text)
	}
	var parts []string
	var collect func(*Node)
	collect = func(c *Node) {
		if c.IsText() {
			if t := collapseSpace(c.Text); t != "" {
				parts = append(parts, t)
			}
			return
		}
		for _, child := range c.Children {
			collect(child)
		}
	}
	collect(n)
	return strings.Join(parts, " ")
}

// Label returns a compact display form for tree rows: "tag#id.class" for
// elements, a quoted preview for text runs.
func (n *Node) Label() string {
	if n.IsText() {
		return `"` + Truncate(collapseSpace(n.Text), 40) + `"`
	}
	var sb strings.Builder
	sb.WriteString(n.Tag)
	if id := n.Attributes["id"]; id != "" {
		sb.WriteString("#")
		sb.WriteString(id)
	}
	if class := FirstClass(n.Attributes["class"]); class != "" {
		sb.WriteString(".")
		sb.WriteString(class)
	}
	return sb.String()
}

// IsTextID reports whether id addresses a text run.
func IsTextID(id string) bool {
	return strings.Contains(id, textSeparator)
}

// ElementAncestorID maps a text-run id to its owning element's id. Element
// ids are returned unchanged.
func ElementAncestorID(id string) string {
	if i := strings.Index(id, textSeparator); i >= 0 {
		return id[:i]
	}
	return id
}

// FirstClass returns the first whitespace-separated token of a class
// attribute value.
func FirstClass(class string) string {
	fields := strings.Fields(class)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Truncate shortens s to at most n runes, appending "..." when cut.
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
