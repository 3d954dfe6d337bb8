package outline

import (
	"strconv"
	"strings"
)

// Section is a single node of a tutorial outline: a directory (or a group of
// files sharing a base name) classified by its content. Child sections are
// computed on first access and memoized; a reload builds a fresh tree.
type Section struct {
	// Title is the display title of the section.
	Title string

	// Path is the directory the section was built from. Sections built
	// from a manifest group of files share their parent's path.
	Path string

	// Kind is the classification derived from the section's content.
	Kind Kind

	// Manifest is the optional table of contents from a .desc file. Each
	// entry is a file base name, optionally followed by ": Display Title".
	Manifest []string

	// Descriptions are the ordered descriptive items for the section.
	Descriptions []Description

	// Snippets are the ordered code fragments for the section. Hidden
	// fragments still execute; they are just not normally shown.
	Snippets []Snippet

	// Stylesheet is the resolved CSS path relative to Path, or empty.
	Stylesheet string

	builder  *Builder
	parent   *Section
	children []*Section
	loaded   bool
	group    bool
}

// Parent returns the enclosing section, or nil at the root. The pointer is
// a non-owning back-reference; children hold the owning edges.
func (s *Section) Parent() *Section {
	return s.parent
}

// Subsections returns the section's children, computing and memoizing them
// on first call. A section with a manifest resolves its entries; otherwise
// numbered subdirectories are discovered and ordered. Sections built from
// a manifest group share their parent's directory, so without a manifest
// of their own they stay leaves.
func (s *Section) Subsections() []*Section {
	if !s.loaded {
		s.loaded = true
		switch {
		case len(s.Manifest) > 0:
			s.children = s.builder.loadManifest(s)
		case s.group:
			s.children = nil
		default:
			s.children = s.builder.loadDirs(s)
		}
	}
	return s.children
}

// Empty reports whether the section has no content and no subsections.
// Empty sections are dropped from their parents during the build.
func (s *Section) Empty() bool {
	return len(s.Descriptions) == 0 && len(s.Snippets) == 0 &&
		len(s.Subsections()) == 0
}

// VisibleSnippets returns the fragments that are normally shown. When all
// fragments are hidden (a demo) the result is empty even though the hidden
// fragments still execute.
func (s *Section) VisibleSnippets() []Snippet {
	visible := make([]Snippet, 0, len(s.Snippets))
	for _, sn := range s.Snippets {
		if !sn.Hidden {
			visible = append(visible, sn)
		}
	}
	return visible
}

// Label returns the section's kind-qualified display label.
func (s *Section) Label() string {
	return s.Kind.String() + ": " + s.Title
}

// Root walks the parent chain to the outline root.
func (s *Section) Root() *Section {
	r := s
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// Next returns the section following s in presentation order: the first
// child when there is one, otherwise the next sibling of the nearest
// ancestor that has one. Returns nil at the end of the outline.
func (s *Section) Next() *Section {
	if subs := s.Subsections(); len(subs) > 0 {
		return subs[0]
	}
	node := s
	for parent := node.parent; parent != nil; parent, node = parent.parent, parent {
		siblings := parent.Subsections()
		if i := indexOf(siblings, node); i >= 0 && i < len(siblings)-1 {
			return siblings[i+1]
		}
	}
	return nil
}

// Previous returns the section preceding s in presentation order: the
// deepest last descendant of the previous sibling, or the parent when s is
// its first child. Returns nil at the root.
func (s *Section) Previous() *Section {
	parent := s.parent
	if parent == nil {
		return nil
	}
	siblings := parent.Subsections()
	i := indexOf(siblings, s)
	if i <= 0 {
		return parent
	}
	prev := siblings[i-1]
	for {
		subs := prev.Subsections()
		if len(subs) == 0 {
			return prev
		}
		prev = subs[len(subs)-1]
	}
}

// Flatten returns the section and all of its descendants in depth-first
// presentation order.
func (s *Section) Flatten() []*Section {
	var all []*Section
	var walk func(*Section)
	walk = func(sec *Section) {
		all = append(all, sec)
		for _, child := range sec.Subsections() {
			walk(child)
		}
	}
	walk(s)
	return all
}

// Find resolves a slash-separated path of child titles starting below s.
// Segments match titles case-insensitively; a segment that parses as a
// number selects the 1-based child at that position. Returns nil when any
// segment fails to resolve.
func (s *Section) Find(path string) *Section {
	node := s
	for _, seg := range strings.Split(path, "/") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		node = node.child(seg)
		if node == nil {
			return nil
		}
	}
	return node
}

func (s *Section) child(seg string) *Section {
	subs := s.Subsections()
	if n, err := strconv.Atoi(seg); err == nil {
		if n >= 1 && n <= len(subs) {
			return subs[n-1]
		}
		return nil
	}
	for _, child := range subs {
		if strings.EqualFold(child.Title, seg) {
			return child
		}
	}
	return nil
}

func indexOf(siblings []*Section, node *Section) int {
	for i, sec := range siblings {
		if sec == node {
			return i
		}
	}
	return -1
}
