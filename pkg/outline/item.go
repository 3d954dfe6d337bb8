package outline

import "strings"

// DescKind identifies how a description item's content should be presented.
type DescKind int

const (
	// DescText is plain text shown verbatim.
	DescText DescKind = iota
	// DescHTML is an HTML document body.
	DescHTML
	// DescURL is an external link.
	DescURL
)

func (k DescKind) String() string {
	switch k {
	case DescText:
		return "text"
	case DescHTML:
		return "html"
	case DescURL:
		return "url"
	default:
		return "unknown"
	}
}

// Description is a single descriptive item belonging to a section: a text
// file, a rendered HTML page, a media page, or an external link. Items are
// immutable once built.
type Description struct {
	// Title is the display title, usually derived from the file base name.
	Title string

	// Path is the originating file, or empty for synthesized content
	// (child listings, media pages, URL entries).
	Path string

	// Kind says how Content should be interpreted.
	Kind DescKind

	// Content holds the text or HTML body; for DescURL it holds the link
	// target with any [title] marker removed.
	Content string

	// Raw preserves the markup source when Content was produced by a
	// converter, so terminal front ends can re-render it natively.
	Raw string
}

// Snippet is one runnable code fragment belonging to a section. A snippet
// is owned by exactly one section and never shared.
type Snippet struct {
	// Title is the display title derived from the file base name.
	Title string

	// Path is the source file the fragment was read from.
	Path string

	// Content is the fragment source with the trailing newline trimmed.
	Content string

	// Hidden marks fragments that run but are not normally shown.
	// A file whose base name starts with an underscore is hidden.
	Hidden bool

	// StartLine is the 1-based line at which this fragment begins inside
	// the concatenated execution unit. It is assigned on every run.
	StartLine int
}

// Lines returns the number of source lines in the fragment.
func (s *Snippet) Lines() int {
	if s.Content == "" {
		return 0
	}
	return strings.Count(s.Content, "\n") + 1
}
