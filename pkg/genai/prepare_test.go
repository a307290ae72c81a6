package genai

import (
	"strings"
	"testing"
)

// --- Prepare ---

func TestPrepare_StripsNonContentElements(t *testing.T) {
	html := `<html><head><script>var tracking = 1;</script><style>.x{color:red}</style></head>
<body>
  <noscript>enable js</noscript>
  <iframe src="https://ads.example.com"></iframe>
  <svg><path d="M0 0"/></svg>
  <article><h1>Keep me</h1></article>
</body></html>`

	got := Prepare(html, 0)

	for _, gone := range []string{"<script", "tracking", "<style", "color:red", "<noscript", "<iframe", "<svg"} {
		if strings.Contains(got, gone) {
			t.Errorf("prepared snapshot should not contain %q, got %q", gone, got)
		}
	}
	if !strings.Contains(got, "<h1>Keep me</h1>") {
		t.Errorf("prepared snapshot should keep content, got %q", got)
	}
}

func TestPrepare_StripsComments(t *testing.T) {
	got := Prepare(`<div><!-- build 42 --><p>text</p></div>`, 0)

	if strings.Contains(got, "build 42") {
		t.Errorf("comments should be stripped, got %q", got)
	}
	if !strings.Contains(got, "<p>text</p>") {
		t.Errorf("content should survive comment stripping, got %q", got)
	}
}

func TestPrepare_SqueezesInterTagWhitespace(t *testing.T) {
	got := Prepare("<div>\n    <p>a</p>\n    <p>b</p>\n  </div>", 0)

	if strings.Contains(got, "\n") {
		t.Errorf("newlines between tags should be squeezed, got %q", got)
	}
	if !strings.Contains(got, "<p>a</p> <p>b</p>") {
		t.Errorf("expected single spaces between tags, got %q", got)
	}
}

func TestPrepare_KeepsTextWhitespace(t *testing.T) {
	got := Prepare(`<p>two  words</p>`, 0)
	if !strings.Contains(got, "two  words") {
		t.Errorf("whitespace inside text should be untouched, got %q", got)
	}
}

func TestPrepare_TruncatesAtLimit(t *testing.T) {
	html := "<p>" + strings.Repeat("a", 500) + "</p>"

	got := Prepare(html, 100)

	if !strings.Contains(got, "[Content truncated") {
		t.Errorf("expected truncation marker, got tail %q", got[len(got)-60:])
	}
	if len(got) > 100+len("\n\n[Content truncated due to length...]") {
		t.Errorf("expected at most limit plus marker bytes, got %d", len(got))
	}
}

func TestPrepare_ShortDocumentUntouchedByLimit(t *testing.T) {
	got := Prepare("<p>small</p>", 100000)
	if strings.Contains(got, "[Content truncated") {
		t.Errorf("short document should not be truncated, got %q", got)
	}
}

// --- truncateBytes ---

func TestTruncateBytes(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		max     int
		wantCut bool
	}{
		{"under limit", "short", 100, false},
		{"at limit", "12345", 5, false},
		{"over limit", "123456", 5, true},
		{"zero means unlimited", strings.Repeat("x", 1000), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateBytes(tt.input, tt.max)
			cut := strings.Contains(got, "[Content truncated")
			if cut != tt.wantCut {
				t.Errorf("truncateBytes(%d bytes, max %d): cut = %v, want %v", len(tt.input), tt.max, cut, tt.wantCut)
			}
			if !cut && got != tt.input {
				t.Errorf("uncut input should be returned verbatim")
			}
		})
	}
}
