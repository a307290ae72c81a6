package fetch

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// spaMarkers are mount points and directives left behind by client-side
// frameworks. A static snapshot of such a page is usually an empty shell.
var spaMarkers = []string{
	"<div id=\"root\"></div>",   // React
	"<div id=\"app\"></div>",    // Vue
	"<app-root></app-root>",     // Angular
	"<div id=\"__next\"></div>", // Next.js
	"<div id=\"__nuxt\"></div>", // Nuxt.js
	"<div data-reactroot",       // React
	"ng-app",                    // Angular
	"v-cloak",                   // Vue
}

// LooksDynamic reports whether the HTML appears to need JavaScript to
// render its content, meaning a static snapshot is likely incomplete.
func LooksDynamic(html string) bool {
	lower := strings.ToLower(html)

	for _, marker := range spaMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}

	// Very little visible text plus a loading indicator suggests a shell
	// waiting for scripts.
	text := strings.ToLower(visibleText(html))
	if len(strings.TrimSpace(text)) < 100 {
		jsIndicators := []string{
			"loading",
			"please wait",
			"javascript required",
			"enable javascript",
		}
		for _, indicator := range jsIndicators {
			if strings.Contains(text, indicator) {
				return true
			}
		}
	}

	if strings.Contains(lower, "<noscript>") {
		noscriptContent := extractBetween(lower, "<noscript>", "</noscript>")
		warningIndicators := []string{
			"javascript",
			"enable",
			"required",
			"browser",
		}
		for _, indicator := range warningIndicators {
			if strings.Contains(noscriptContent, indicator) {
				return true
			}
		}
	}

	return false
}

// visibleText extracts the rendered text of the document body.
func visibleText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	doc.Find("script, style, noscript").Remove()
	return doc.Find("body").Text()
}

// extractBetween extracts content between two markers.
func extractBetween(s, start, end string) string {
	startIdx := strings.Index(s, start)
	if startIdx == -1 {
		return ""
	}
	startIdx += len(start)

	endIdx := strings.Index(s[startIdx:], end)
	if endIdx == -1 {
		return ""
	}

	return s[startIdx : startIdx+endIdx]
}
