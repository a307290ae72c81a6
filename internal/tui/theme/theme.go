// Package theme holds the shared visual vocabulary of the TUI. All colors
// are adaptive so the program reads well on both light and dark terminals.
//
// Selection and hover use the same hues as the highlights drawn on the
// rendered page, so the tree pane and the browser agree on what is what.
package theme

import (
	"github.com/charmbracelet/lipgloss"
)

// --- Adaptive color palette ---

var (
	ColorSelect = lipgloss.AdaptiveColor{Light: "#2563eb", Dark: "#60a5fa"}
	ColorHover  = lipgloss.AdaptiveColor{Light: "#b45309", Dark: "#f59e0b"}

	ColorSuccess = lipgloss.AdaptiveColor{Light: "#2e7d32", Dark: "#66bb6a"}
	ColorError   = lipgloss.AdaptiveColor{Light: "#c62828", Dark: "#ef5350"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "#e65100", Dark: "#ffa726"}
	ColorInfo    = lipgloss.AdaptiveColor{Light: "#0277bd", Dark: "#4fc3f7"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "#757575", Dark: "#9e9e9e"}

	ColorBorder       = lipgloss.AdaptiveColor{Light: "#bdbdbd", Dark: "#616161"}
	ColorBorderActive = lipgloss.AdaptiveColor{Light: "#1565c0", Dark: "#42a5f5"}

	ColorBgAlt = lipgloss.AdaptiveColor{Light: "#f5f5f5", Dark: "#2d2d2d"}
	ColorFgDim = lipgloss.AdaptiveColor{Light: "#9e9e9e", Dark: "#757575"}
)

// --- Base styles ---

var (
	Bold = lipgloss.NewStyle().Bold(true)
	Dim  = lipgloss.NewStyle().Faint(true)

	TextError = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	TextInfo  = lipgloss.NewStyle().Foreground(ColorInfo)
	TextMuted = lipgloss.NewStyle().Foreground(ColorMuted)
)

// --- Pane chrome ---

var (
	FocusBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorderActive)

	UnfocusedBorder = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(ColorBorder)

	PaneTitle = lipgloss.NewStyle().
			Foreground(ColorInfo).
			Bold(true)
)

// --- Tree rows ---

var (
	TreeSelected = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#ffffff", Dark: "#1e1e1e"}).
			Background(ColorSelect).
			Bold(true)

	TreeHovered = lipgloss.NewStyle().
			Foreground(ColorHover)

	TreeText = lipgloss.NewStyle().
			Foreground(ColorFgDim)
)

// --- Targets pane ---

var (
	TargetName = lipgloss.NewStyle().
			Foreground(ColorInfo).
			Bold(true)

	TargetSelector = lipgloss.NewStyle().
			Foreground(ColorMuted)
)

// --- Status bar ---

var (
	StatusBar = lipgloss.NewStyle().
			Foreground(ColorFgDim).
			Background(ColorBgAlt).
			Padding(0, 1)

	StatusKey = lipgloss.NewStyle().
			Foreground(ColorInfo).
			Bold(true)

	ModeInspect = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#ffffff", Dark: "#1e1e1e"}).
			Background(ColorSelect).
			Bold(true).
			Padding(0, 1)

	ModeInteract = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#ffffff", Dark: "#1e1e1e"}).
			Background(ColorWarning).
			Bold(true).
			Padding(0, 1)
)

// --- Prompt line ---

var (
	InputPrompt = lipgloss.NewStyle().
			Foreground(ColorInfo).
			Bold(true)
)

// Clamp returns v clamped to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
