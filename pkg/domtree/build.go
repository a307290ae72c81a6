package domtree

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Tree is the result of parsing one HTML input: the synthetic-root node
// model plus the re-serialized document with identifier attributes injected.
type Tree struct {
	// Root is the synthetic entry point. It has id "root" and tag "div" and
	// corresponds to no real element.
	Root *Node

	// HTML is the full mutated document serialized back to a string. Every
	// element in it carries the injected identifier attribute.
	HTML string

	index map[string]*Node
}

// Build parses raw HTML into a Tree.
//
// Parsing is lenient: malformed markup is repaired by the HTML5 parsing
// rules, and no validation is performed here. The tree mirrors the parsed
// body: elements and non-whitespace text runs, in document order. Each
// parent keeps a single child counter shared by both kinds, so an element
// at position i gets "<parent>-<i>" and a text run at position i gets
// "<parent>-txt-<i>". Whitespace-only text runs are dropped without
// consuming an index.
func Build(raw string) (*Tree, error) {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	root := &Node{ID: RootID, Tag: "div"}
	tree := &Tree{Root: root, index: map[string]*Node{RootID: root}}

	if body := findBody(doc); body != nil {
		tree.appendChildren(root, body)
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return nil, fmt.Errorf("serialize html: %w", err)
	}
	tree.HTML = buf.String()

	return tree, nil
}

// appendChildren converts src's children into Node children of parent,
// annotating each source element with its identifier as it goes.
func (t *Tree) appendChildren(parent *Node, src *html.Node) {
	counter := 0
	for c := src.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			id := fmt.Sprintf("%s-%d", parent.ID, counter)
			counter++
			child := t.newElement(id, c)
			parent.Children = append(parent.Children, child)
			t.appendChildren(child, c)
		case html.TextNode:
			if strings.TrimSpace(c.Data) == "" {
				continue
			}
			id := fmt.Sprintf("%s%s%d", parent.ID, textSeparator, counter)
			counter++
			child := &Node{ID: id, Tag: TextTag, Text: c.Data, SelfClosing: true}
			parent.Children = append(parent.Children, child)
			t.index[id] = child
		}
	}
}

func (t *Tree) newElement(id string, src *html.Node) *Node {
	tag := strings.ToLower(src.Data)
	n := &Node{
		ID:          id,
		Tag:         tag,
		SelfClosing: IsVoidElement(tag),
	}
	if len(src.Attr) > 0 {
		n.Attributes = make(map[string]string, len(src.Attr))
		for _, a := range src.Attr {
			if a.Key == IDAttr {
				continue
			}
			n.Attributes[a.Key] = a.Val
		}
		if len(n.Attributes) == 0 {
			n.Attributes = nil
		}
	}
	src.Attr = append(src.Attr, html.Attribute{Key: IDAttr, Val: id})
	t.index[id] = n
	return n
}

// findBody locates the body element the parser always produces.
func findBody(doc *html.Node) *html.Node {
	var body *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if body != nil {
			return
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.Body {
			body = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return body
}
