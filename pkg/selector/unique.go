package selector

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/AmeRaino/dompick/internal/logger"
	"github.com/AmeRaino/dompick/pkg/domtree"
)

var (
	// ErrNotInDocument reports that the identifier resolves to no element
	// in the live document (e.g. the content was replaced since the tree
	// was built).
	ErrNotInDocument = errors.New("element not present in live document")

	// ErrNoUnique reports that the search budget was exhausted without
	// finding a selector that matches exactly one element.
	ErrNoUnique = errors.New("no unique selector found within search budget")
)

// attributes worth trying as selector discriminators, beyond id and class.
var salientAttrs = []string{"name", "type", "role", "placeholder", "alt", "title", "for"}

// Config bounds the unique-selector search.
type Config struct {
	// MaxChecks caps how many candidate selectors are matched against the
	// document before giving up.
	MaxChecks int

	// MaxAncestors caps how many ancestor levels may be prepended to a
	// candidate.
	MaxAncestors int
}

// DefaultConfig returns the default search bounds.
func DefaultConfig() Config {
	return Config{MaxChecks: 250, MaxAncestors: 3}
}

// Option adjusts the search configuration.
type Option func(*Config)

// WithMaxChecks overrides the candidate budget.
func WithMaxChecks(n int) Option {
	return func(c *Config) { c.MaxChecks = n }
}

// WithMaxAncestors overrides the ancestor depth.
func WithMaxAncestors(n int) Option {
	return func(c *Config) { c.MaxAncestors = n }
}

// FindUnique searches doc for the shortest selector that matches exactly
// the element carrying the given identifier. Candidates are built from the
// element's own signature (id, classes, salient attributes, tag, position),
// then widened with ancestor segments, and tried shortest first. Candidate
// selectors never reference the injected identifier attribute.
func FindUnique(doc *goquery.Document, id string, opts ...Option) (string, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	id = domtree.ElementAncestorID(id)
	sel := doc.Find(fmt.Sprintf("[%s=%q]", domtree.IDAttr, id))
	if sel.Length() == 0 {
		return "", fmt.Errorf("%w: %s", ErrNotInDocument, id)
	}
	target := sel.Get(0)

	candidates := buildCandidates(target, cfg.MaxAncestors)

	checks := 0
	for _, cand := range candidates {
		if checks >= cfg.MaxChecks {
			break
		}
		if _, err := cascadia.Parse(cand); err != nil {
			continue
		}
		checks++
		if matchesOnly(doc, cand, target) {
			logger.Debug("unique selector found", "id", id, "selector", cand, "checks", checks)
			return cand, nil
		}
	}

	logger.Debug("unique selector search exhausted", "id", id, "checks", checks)
	return "", fmt.Errorf("%w: %s", ErrNoUnique, id)
}

// matchesOnly reports whether cand matches exactly one element in doc and
// that element is target.
func matchesOnly(doc *goquery.Document, cand string, target *html.Node) bool {
	found := doc.Find(cand)
	return found.Length() == 1 && found.Get(0) == target
}

// buildCandidates assembles the ordered candidate list: own segments first,
// then ancestor-prefixed combinations, then pure structural chains of
// growing depth. The final list is sorted shortest-first and deduplicated.
func buildCandidates(target *html.Node, maxAncestors int) []string {
	own := ownSegments(target)

	var candidates []string
	candidates = append(candidates, own...)

	ancestor := target.Parent
	for level := 0; level < maxAncestors && ancestor != nil && ancestor.Type == html.ElementNode; level++ {
		if ancestor.Data == "body" || ancestor.Data == "html" {
			break
		}
		for _, as := range anchorSegments(ancestor) {
			for _, os := range own {
				candidates = append(candidates, as+" > "+os)
			}
		}
		candidates = append(candidates, structuralChain(target, level+1))
		ancestor = ancestor.Parent
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return len(candidates[i]) < len(candidates[j])
	})

	seen := make(map[string]bool, len(candidates))
	deduped := candidates[:0]
	for _, c := range candidates {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		deduped = append(deduped, c)
	}
	return deduped
}

// ownSegments derives candidate segments from the element itself.
func ownSegments(n *html.Node) []string {
	tag := strings.ToLower(n.Data)
	var segs []string

	if id := attrValue(n, "id"); id != "" {
		segs = append(segs, "#"+id, tag+"#"+id)
	}

	classes := strings.Fields(attrValue(n, "class"))
	if len(classes) > 4 {
		classes = classes[:4]
	}
	for _, c := range classes {
		segs = append(segs, "."+c, tag+"."+c)
	}
	for i := 0; i < len(classes); i++ {
		for j := i + 1; j < len(classes); j++ {
			segs = append(segs, "."+classes[i]+"."+classes[j])
		}
	}

	for _, key := range salientAttrs {
		if v := attrValue(n, key); v != "" {
			segs = append(segs, fmt.Sprintf("%s[%s=%q]", tag, key, v))
		}
	}

	if k, ambiguous := nthOfType(n); ambiguous {
		segs = append(segs, fmt.Sprintf("%s:nth-of-type(%d)", tag, k))
	}
	segs = append(segs, tag)
	return segs
}

// anchorSegments derives short segments usable as an ancestor prefix.
func anchorSegments(n *html.Node) []string {
	tag := strings.ToLower(n.Data)
	if id := attrValue(n, "id"); id != "" {
		return []string{"#" + id, tag + "#" + id}
	}
	var segs []string
	if class := domtree.FirstClass(attrValue(n, "class")); class != "" {
		segs = append(segs, tag+"."+class)
	}
	if k, ambiguous := nthOfType(n); ambiguous {
		segs = append(segs, fmt.Sprintf("%s:nth-of-type(%d)", tag, k))
	}
	return append(segs, tag)
}

// structuralChain renders the positional path of the target and depth
// ancestors, e.g. "ul:nth-of-type(2) > li:nth-of-type(3)".
func structuralChain(target *html.Node, depth int) string {
	var segs []string
	n := target
	for i := 0; i <= depth && n != nil && n.Type == html.ElementNode; i++ {
		if n.Data == "body" || n.Data == "html" {
			break
		}
		tag := strings.ToLower(n.Data)
		if k, ambiguous := nthOfType(n); ambiguous {
			segs = append([]string{fmt.Sprintf("%s:nth-of-type(%d)", tag, k)}, segs...)
		} else {
			segs = append([]string{tag}, segs...)
		}
		n = n.Parent
	}
	return strings.Join(segs, " > ")
}

// nthOfType returns the element's 1-based position among same-tag siblings
// and whether more than one such sibling exists.
func nthOfType(n *html.Node) (int, bool) {
	k := 1
	for sib := n.PrevSibling; sib != nil; sib = sib.PrevSibling {
		if sib.Type == html.ElementNode && sib.Data == n.Data {
			k++
		}
	}
	total := k
	for sib := n.NextSibling; sib != nil; sib = sib.NextSibling {
		if sib.Type == html.ElementNode && sib.Data == n.Data {
			total++
		}
	}
	return k, total > 1
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
