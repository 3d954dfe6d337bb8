package view

import (
	"io"
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/tutor/pkg/outline"
)

// TermProfile holds the detected terminal color profile. Computed once at
// package init so style helpers can branch without re-detecting.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeFg returns the given hex color for ANSI256+ terminals and a safe
// ANSI white (color 7) for 16-color or lower terminals.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

// Theme bundles the colors and precomputed styles of the terminal front
// end. Styles are built once at construction, not per line.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary lipgloss.AdaptiveColor
	Subtext lipgloss.AdaptiveColor
	Muted   lipgloss.AdaptiveColor
	Success lipgloss.AdaptiveColor
	Danger  lipgloss.AdaptiveColor

	// Section kind accents
	Lecture lipgloss.AdaptiveColor
	Lab     lipgloss.AdaptiveColor
	Lesson  lipgloss.AdaptiveColor
	Demo    lipgloss.AdaptiveColor

	// Pre-computed styles
	Header      lipgloss.Style
	TitleText   lipgloss.Style
	MutedText   lipgloss.Style
	SuccessText lipgloss.Style
	ErrorText   lipgloss.Style
	BadgeText   lipgloss.Style
}

// DefaultTheme returns the standard adaptive theme rendered through r.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,

		Primary: lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"},
		Subtext: lipgloss.AdaptiveColor{Light: "#666666", Dark: "#BFBFBF"},
		Muted:   lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
		Success: lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"},
		Danger:  lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"},

		Lecture: lipgloss.AdaptiveColor{Light: "#2684FF", Dark: "#4C9AFF"},
		Lab:     lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"},
		Lesson:  lipgloss.AdaptiveColor{Light: "#36B37E", Dark: "#57D9A3"},
		Demo:    lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#904EE2"},
	}

	t.Header = r.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)
	t.TitleText = r.NewStyle().Foreground(t.Primary).Bold(true)
	t.MutedText = r.NewStyle().Foreground(t.Muted)
	t.SuccessText = r.NewStyle().Foreground(t.Success)
	t.ErrorText = r.NewStyle().Foreground(t.Danger).Bold(true)
	t.BadgeText = r.NewStyle().Foreground(ThemeFg("#FFFFFF")).Bold(true)

	return t
}

// PlainTheme returns a style-free theme for robot mode, piped output and
// tests. The renderer writes to a non-terminal, so no escapes are emitted.
func PlainTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(io.Discard))
}

// KindColor returns the accent color for a section kind.
func (t Theme) KindColor(k outline.Kind) lipgloss.AdaptiveColor {
	switch k {
	case outline.KindLab:
		return t.Lab
	case outline.KindLesson:
		return t.Lesson
	case outline.KindDemo:
		return t.Demo
	default:
		return t.Lecture
	}
}

// kindLabel is the badge text for each kind, at most four cells wide.
func kindLabel(k outline.Kind) string {
	switch k {
	case outline.KindLab:
		return "LAB"
	case outline.KindLesson:
		return "LESN"
	case outline.KindDemo:
		return "DEMO"
	default:
		return "LECT"
	}
}

// KindBadge returns a styled badge for a section kind.
func (t Theme) KindBadge(k outline.Kind) string {
	return t.BadgeText.Background(t.KindColor(k)).Render(kindLabel(k))
}
