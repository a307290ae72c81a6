package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/AmeRaino/dompick/internal/tui/theme"
	"github.com/AmeRaino/dompick/pkg/inspect"
)

// keyHint is one key/action pair shown on the right of the status bar.
type keyHint struct {
	key  string
	desc string
}

var statusHints = []keyHint{
	{"j/k", "move"},
	{"h/l", "fold"},
	{"m", "mode"},
	{"p", "promote"},
	{"d", "delete"},
	{"g", "generate"},
	{"x", "run"},
	{"e", "explain"},
	{"o", "open"},
	{"q", "quit"},
}

// statusHintsShort is the fallback when the full list does not fit.
var statusHintsShort = []keyHint{
	{"j/k", "move"},
	{"m", "mode"},
	{"p", "promote"},
	{"g", "generate"},
	{"x", "run"},
	{"q", "quit"},
}

// statusBar renders the single bottom line: mode badge, location, and
// provider on the left; key hints on the right. An alert or a busy
// indicator replaces the hints while it applies, and the hint list
// degrades before it overlaps the left side.
type statusBar struct {
	width    int
	mode     inspect.Mode
	url      string
	provider string
	busy     string
	alert    string
}

func (b statusBar) View() string {
	badge := theme.ModeInspect.Render("INSPECT")
	if b.mode == inspect.ModeInteract {
		badge = theme.ModeInteract.Render("INTERACT")
	}

	left := badge
	if b.url != "" {
		left += " " + clip(b.url, max(b.width/3, 20))
	}
	if b.provider != "" {
		left += theme.Dim.Render("  " + b.provider)
	}

	right := b.rightSide(statusHints)
	gap := b.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		right = b.rightSide(statusHintsShort)
		gap = b.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	}
	if gap < 1 {
		right = ""
		gap = max(b.width-lipgloss.Width(left)-2, 0)
	}

	return theme.StatusBar.Width(b.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (b statusBar) rightSide(hints []keyHint) string {
	switch {
	case b.alert != "":
		return theme.TextError.Render(clip(b.alert, max(b.width/2, 20)))
	case b.busy != "":
		return theme.TextInfo.Render(b.busy)
	}
	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		parts = append(parts, theme.StatusKey.Render(h.key)+" "+h.desc)
	}
	return strings.Join(parts, "  ")
}
