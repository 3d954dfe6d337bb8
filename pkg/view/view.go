// Package view renders tutorial outlines and section pages for the
// terminal. It styles output with lipgloss, renders markdown descriptions
// with glamour, and degrades to plain text on non-terminals and in robot
// mode.
package view

import (
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/vanderheijden86/tutor/pkg/outline"
)

// Options configure a View.
type Options struct {
	// Width is the wrap width in columns. Zero means the terminal width
	// when stdout is a terminal, 80 otherwise.
	Width int

	// NoColor forces plain output even on a terminal.
	NoColor bool

	// Visited marks sections already seen, shown as a check mark in the
	// outline tree. Nil disables the markers.
	Visited func(*outline.Section) bool
}

// View renders outlines and section pages with a fixed theme and width.
type View struct {
	theme   Theme
	md      *glamour.TermRenderer
	width   int
	visited func(*outline.Section) bool
}

// New returns a view configured for the current terminal.
func New(opts Options) *View {
	isTTY := term.IsTerminal(int(os.Stdout.Fd()))

	width := opts.Width
	if width <= 0 {
		width = 80
		if isTTY {
			if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
				width = w
			}
		}
	}

	color := isTTY && !opts.NoColor
	theme := PlainTheme()
	if color {
		theme = DefaultTheme(lipgloss.NewRenderer(os.Stdout))
	}

	return &View{
		theme:   theme,
		md:      newMarkdownRenderer(width, color),
		width:   width,
		visited: opts.Visited,
	}
}

// NewPlain returns a fixed-width, style-free view. Used for robot output
// and in tests, where the result must not depend on the environment.
func NewPlain(width int) *View {
	return &View{
		theme: PlainTheme(),
		md:    newMarkdownRenderer(width, false),
		width: width,
	}
}

// SetVisited installs the visited-section marker after construction.
func (v *View) SetVisited(fn func(*outline.Section) bool) {
	v.visited = fn
}

// Width returns the view's wrap width in columns.
func (v *View) Width() int {
	return v.width
}

func newMarkdownRenderer(width int, color bool) *glamour.TermRenderer {
	style := glamour.WithStandardStyle("notty")
	if color {
		style = glamour.WithAutoStyle()
	}
	// A nil renderer is tolerated everywhere: markdown then falls back to
	// its source text.
	r, _ := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	return r
}

// truncateCells truncates a string to a visual cell width, appending an
// ellipsis when anything was cut. Wide runes are measured with runewidth.
func truncateCells(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	return runewidth.Truncate(s, maxWidth-1, "") + "…"
}
