// Package target holds the scrape target set: the ordered, user-declared
// extraction rules (field name, CSS selector, instruction) that drive
// script generation. Sets can be built interactively through promotion,
// authored by hand in YAML or JSON, or kept under a named store.
package target

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	// DefaultDescription fills in for a blank extraction instruction.
	DefaultDescription = "get text content"

	// NoTextLabel is the example value recorded for nodes without text.
	NoTextLabel = "(no text content)"

	// ExampleLimit bounds example values, in runes.
	ExampleLimit = 30
)

// Target is one extraction rule. Name and Selector are required; NodeID
// ties a promoted target back to the tree node it came from and is absent
// on hand-authored entries.
type Target struct {
	Name        string `json:"name" yaml:"name" validate:"required"`
	Selector    string `json:"selector" yaml:"selector" validate:"required"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Example     string `json:"example,omitempty" yaml:"example,omitempty"`
	NodeID      string `json:"node_id,omitempty" yaml:"node_id,omitempty"`
}

// Set is an ordered target collection. Append happens only on explicit
// user action, removal only by position. Safe for concurrent use.
type Set struct {
	mu       sync.Mutex
	items    []Target
	validate *validator.Validate
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{validate: validator.New()}
}

// Add validates t and appends it. A blank description is replaced with
// DefaultDescription before the entry is stored. Duplicate names are
// allowed; entries share nothing beyond insertion order.
func (s *Set) Add(t Target) error {
	if strings.TrimSpace(t.Name) == "" {
		t.Name = ""
	}
	if t.Description == "" {
		t.Description = DefaultDescription
	}
	if err := s.validate.Struct(t); err != nil {
		return fmt.Errorf("invalid target: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, t)
	return nil
}

// RemoveAt deletes the target at position i.
func (s *Set) RemoveAt(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.items) {
		return fmt.Errorf("target %d does not exist (set has %d)", i, len(s.items))
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return nil
}

// List returns the targets in declaration order. The slice is a copy.
func (s *Set) List() []Target {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Target, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of targets.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// PromptBlock renders the numbered field list handed to the AI
// collaborator: one block per target with its selector, instruction, and
// example value when one was captured.
func (s *Set) PromptBlock() string {
	var sb strings.Builder
	for i, t := range s.List() {
		fmt.Fprintf(&sb, "%d. %q\n", i+1, t.Name)
		fmt.Fprintf(&sb, "   selector: %s\n", t.Selector)
		fmt.Fprintf(&sb, "   instruction: %s\n", t.Description)
		if t.Example != "" && t.Example != NoTextLabel {
			fmt.Fprintf(&sb, "   example: %s\n", t.Example)
		}
	}
	return sb.String()
}

// JSONSchema describes the object extractData must return: one property
// per target name, all required, nothing else permitted. Extracted values
// arrive as text or lists of text, so properties are left untyped beyond
// their description.
func (s *Set) JSONSchema() map[string]any {
	properties := make(map[string]any)
	required := make([]string, 0)

	for _, t := range s.List() {
		if _, seen := properties[t.Name]; seen {
			continue
		}
		properties[t.Name] = map[string]any{
			"type":        "string",
			"description": t.Description,
		}
		required = append(required, t.Name)
	}

	schema := map[string]any{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// ExampleValue derives a bounded example from a node's resolved text:
// whitespace collapsed, cut at ExampleLimit runes, or NoTextLabel when
// there is no text at all.
func ExampleValue(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return NoTextLabel
	}
	if utf8.RuneCountInString(text) <= ExampleLimit {
		return text
	}
	runes := []rune(text)
	return string(runes[:ExampleLimit]) + "..."
}
