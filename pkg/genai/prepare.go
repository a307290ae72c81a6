package genai

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dustin/go-humanize"

	"github.com/AmeRaino/dompick/internal/logger"
)

// DefaultSnapshotLimit caps the prepared document at roughly 100KB,
// which fits comfortably in every supported model's context window.
const DefaultSnapshotLimit = 100000

// noiseSelectors matches elements that carry no extractable content and
// inflate the prompt.
var noiseSelectors = []string{"script", "style", "noscript", "iframe", "svg", "link", "meta"}

// commentRegex matches HTML comments.
var commentRegex = regexp.MustCompile(`<!--[\s\S]*?-->`)

// interTagRegex matches whitespace runs between tags.
var interTagRegex = regexp.MustCompile(`>\s+<`)

// Prepare trims an HTML document down to a prompt-sized snapshot: drops
// non-content elements, strips comments, squeezes whitespace between
// tags, and truncates to limit bytes (0 means DefaultSnapshotLimit).
// Parse failures degrade gracefully to truncating the original markup.
func Prepare(html string, limit int) string {
	if limit <= 0 {
		limit = DefaultSnapshotLimit
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		logger.Warn("snapshot parse failed, truncating original markup", "error", err)
		return truncateBytes(strings.TrimSpace(html), limit)
	}

	for _, sel := range noiseSelectors {
		doc.Find(sel).Remove()
	}

	// goquery wraps fragments in html/head/body; the body holds the content.
	out, err := doc.Find("body").Html()
	if err != nil || strings.TrimSpace(out) == "" {
		out, err = doc.Html()
		if err != nil {
			logger.Warn("snapshot serialization failed, truncating original markup", "error", err)
			return truncateBytes(strings.TrimSpace(html), limit)
		}
	}

	out = commentRegex.ReplaceAllString(out, "")
	out = interTagRegex.ReplaceAllString(out, "> <")
	out = strings.TrimSpace(out)
	out = truncateBytes(out, limit)

	logger.Debug("snapshot prepared",
		"input", humanize.Bytes(uint64(len(html))),
		"output", humanize.Bytes(uint64(len(out))))

	return out
}

// truncateBytes limits s to max bytes, marking the cut.
func truncateBytes(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "\n\n[Content truncated due to length...]"
}
