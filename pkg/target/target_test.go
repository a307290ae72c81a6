package target

import (
	"strings"
	"testing"
)

func addAll(t *testing.T, set *Set, targets ...Target) {
	t.Helper()
	for _, tgt := range targets {
		if err := set.Add(tgt); err != nil {
			t.Fatalf("Add(%q) error: %v", tgt.Name, err)
		}
	}
}

func TestSet_AddAndList(t *testing.T) {
	set := NewSet()
	addAll(t, set,
		Target{Name: "title", Selector: "h1", Description: "the headline"},
		Target{Name: "price", Selector: ".price"},
	)

	targets := set.List()
	if len(targets) != 2 || set.Len() != 2 {
		t.Fatalf("expected 2 targets, got %d", len(targets))
	}
	if targets[0].Name != "title" || targets[1].Name != "price" {
		t.Errorf("insertion order should be preserved, got %q then %q",
			targets[0].Name, targets[1].Name)
	}
}

func TestSet_AddDefaultsBlankDescription(t *testing.T) {
	set := NewSet()
	addAll(t, set, Target{Name: "author", Selector: ".byline"})

	if got := set.List()[0].Description; got != DefaultDescription {
		t.Errorf("blank description should default to %q, got %q", DefaultDescription, got)
	}
}

func TestSet_AddRejectsIncompleteTargets(t *testing.T) {
	set := NewSet()

	if err := set.Add(Target{Selector: "h1"}); err == nil {
		t.Error("a target without a name should be rejected")
	}
	if err := set.Add(Target{Name: "   ", Selector: "h1"}); err == nil {
		t.Error("a whitespace-only name should be rejected")
	}
	if err := set.Add(Target{Name: "title"}); err == nil {
		t.Error("a target without a selector should be rejected")
	}
	if set.Len() != 0 {
		t.Errorf("rejected targets must not land in the set, have %d", set.Len())
	}
}

func TestSet_AddAllowsDuplicateNames(t *testing.T) {
	set := NewSet()
	addAll(t, set,
		Target{Name: "link", Selector: "a:nth-of-type(1)"},
		Target{Name: "link", Selector: "a:nth-of-type(2)"},
	)
	if set.Len() != 2 {
		t.Errorf("duplicate names are allowed, expected 2 targets, got %d", set.Len())
	}
}

func TestSet_RemoveAt(t *testing.T) {
	set := NewSet()
	addAll(t, set,
		Target{Name: "a", Selector: ".a"},
		Target{Name: "b", Selector: ".b"},
		Target{Name: "c", Selector: ".c"},
	)

	if err := set.RemoveAt(1); err != nil {
		t.Fatalf("RemoveAt(1) error: %v", err)
	}
	names := []string{}
	for _, tgt := range set.List() {
		names = append(names, tgt.Name)
	}
	if len(names) != 2 || names[0] != "a" || names[1] != "c" {
		t.Errorf("expected [a c] after removal, got %v", names)
	}

	if err := set.RemoveAt(2); err == nil {
		t.Error("out-of-range removal should error")
	}
	if err := set.RemoveAt(-1); err == nil {
		t.Error("negative removal should error")
	}
}

func TestSet_PromptBlock(t *testing.T) {
	set := NewSet()
	addAll(t, set,
		Target{Name: "title", Selector: "article > h1", Description: "the headline", Example: "Go 1.25 released"},
		Target{Name: "author", Selector: ".byline", Example: NoTextLabel},
	)

	block := set.PromptBlock()
	for _, want := range []string{
		`1. "title"`,
		"selector: article > h1",
		"instruction: the headline",
		"example: Go 1.25 released",
		`2. "author"`,
		"instruction: " + DefaultDescription,
	} {
		if !strings.Contains(block, want) {
			t.Errorf("prompt block should contain %q, got:\n%s", want, block)
		}
	}
	if strings.Contains(block, NoTextLabel) {
		t.Errorf("the no-text label is not an example, got:\n%s", block)
	}
}

func TestSet_JSONSchema(t *testing.T) {
	set := NewSet()
	addAll(t, set,
		Target{Name: "title", Selector: "h1", Description: "the headline"},
		Target{Name: "author", Selector: ".byline"},
	)

	schema := set.JSONSchema()
	if schema["type"] != "object" {
		t.Errorf("schema type should be object, got %v", schema["type"])
	}
	if schema["additionalProperties"] != false {
		t.Error("schema should forbid additional properties")
	}

	props, ok := schema["properties"].(map[string]any)
	if !ok {
		t.Fatalf("properties should be a map, got %T", schema["properties"])
	}
	title, ok := props["title"].(map[string]any)
	if !ok {
		t.Fatal("title property missing")
	}
	if title["description"] != "the headline" {
		t.Errorf("property description should carry the instruction, got %v", title["description"])
	}

	required, ok := schema["required"].([]string)
	if !ok || len(required) != 2 {
		t.Fatalf("both fields should be required, got %v", schema["required"])
	}
}

func TestSet_JSONSchema_DuplicateNamesCollapse(t *testing.T) {
	set := NewSet()
	addAll(t, set,
		Target{Name: "link", Selector: "a:nth-of-type(1)"},
		Target{Name: "link", Selector: "a:nth-of-type(2)"},
	)

	schema := set.JSONSchema()
	props := schema["properties"].(map[string]any)
	if len(props) != 1 {
		t.Errorf("duplicate names share one property, got %d", len(props))
	}
	if required := schema["required"].([]string); len(required) != 1 {
		t.Errorf("duplicate names appear once in required, got %v", required)
	}
}

func TestExampleValue(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short text passes through", "By A. Reporter", "By A. Reporter"},
		{"whitespace collapses", "  By \n A.   Reporter ", "By A. Reporter"},
		{"empty falls back", "", NoTextLabel},
		{"whitespace-only falls back", " \n\t ", NoTextLabel},
		{
			"long text truncates at the rune limit",
			strings.Repeat("a", 50),
			strings.Repeat("a", ExampleLimit) + "...",
		},
		{
			"multibyte runes count as one",
			strings.Repeat("ü", 50),
			strings.Repeat("ü", ExampleLimit) + "...",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExampleValue(tt.in); got != tt.want {
				t.Errorf("ExampleValue(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
