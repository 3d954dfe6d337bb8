package outline

import (
	"errors"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/vanderheijden86/tutor/pkg/debug"
)

// ErrNoTutorial is returned by callers when a directory holds no
// recognizable tutorial content.
var ErrNoTutorial = errors.New("no tutorial found")

// Subdirectory name patterns that mark a directory as part of the outline.
// The numeric part orders siblings; prefix and suffix forms interleave.
var (
	dirPrefixPat = regexp.MustCompile(`^(\d{4})_(.*)$`)
	dirSuffixPat = regexp.MustCompile(`^(.*)_(\d+\.\d+)$`)
)

// Converter renders a markup source to a standalone HTML document.
// Implementations live outside this package; a nil converter degrades the
// affected items to plain text.
type Converter interface {
	// Render converts src to HTML, linking stylesheet when non-empty.
	Render(src, stylesheet string) (string, error)

	// RenderFile converts the file at src and writes the HTML to dst.
	RenderFile(src, dst, stylesheet string) error
}

// Options configures a Builder.
type Options struct {
	// Markdown renders .md files and fragment docstrings. When nil those
	// items are kept as plain text.
	Markdown Converter

	// RST renders .rst files. When nil, a previously generated .htm
	// sibling is used if present, otherwise the raw text is shown.
	RST Converter

	// WarningHandler receives non-fatal build warnings (unreadable
	// files, failed conversions). When nil, warnings go to stderr.
	WarningHandler func(string)
}

// Builder loads tutorial outlines from the filesystem.
type Builder struct {
	md   Converter
	rst  Converter
	warn func(string)
}

// New returns a Builder with the given options.
func New(opts Options) *Builder {
	return &Builder{
		md:   opts.Markdown,
		rst:  opts.RST,
		warn: opts.WarningHandler,
	}
}

// Load builds the outline rooted at dir. The root section is returned even
// when it is empty; callers decide whether an empty root is an error.
// Rebuilding after a change on disk means calling Load again: sections
// memoize their children and never watch the filesystem themselves.
func (b *Builder) Load(dir string) (*Section, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving tutorial path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("reading tutorial directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("tutorial path %s is not a directory", abs)
	}
	debug.Log("outline: loading %s", abs)
	return b.build(abs, TitleFor(fileBase(abs)), nil, nil), nil
}

// build creates the section for one directory, or for a manifest group of
// files when files is non-nil. It always returns a section; callers drop
// empty ones.
func (b *Builder) build(path, title string, files []string, parent *Section) *Section {
	f := &factory{
		b:     b,
		path:  path,
		title: title,
		css:   stylesheetFor(path, parent),
	}

	group := files != nil
	if files == nil {
		names, err := readDirNames(path)
		if err != nil {
			b.warnf("reading %s: %v", path, err)
		}
		files = names

		// The manifest is processed first so its entries can keep their
		// files out of this section.
		for _, name := range files {
			if strings.EqualFold(filepath.Ext(name), ".desc") {
				f.addManifest(filepath.Join(path, name))
				break
			}
		}
	}

	claimed := make(map[string]bool, len(f.manifest))
	for _, entry := range f.manifest {
		claimed[manifestBase(entry)] = true
	}

	for _, name := range files {
		full := filepath.Join(path, name)
		if fi, err := os.Stat(full); err != nil || fi.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(name))
		if len(ext) < 2 || claimed[strings.TrimSuffix(name, filepath.Ext(name))] {
			continue
		}
		if handler := handlers[ext]; handler != nil {
			handler(f, full)
		}
	}

	sec := &Section{
		Title:        f.title,
		Path:         path,
		Manifest:     f.manifest,
		Descriptions: f.descs,
		Snippets:     f.snippets,
		Stylesheet:   f.css,
		builder:      b,
		parent:       parent,
		group:        group,
	}

	visible := len(sec.VisibleSnippets())
	switch {
	case len(f.descs) > 0 && len(f.snippets) > 0 && visible > 0:
		sec.Kind = KindLesson
	case len(f.descs) > 0 && len(f.snippets) > 0:
		sec.Kind = KindDemo
	case len(f.descs) > 0:
		sec.Kind = KindLecture
	case len(f.snippets) > 0:
		sec.Kind = KindLab
	default:
		// Nothing here but possibly subdirectories: a lecture that
		// introduces its children.
		sec.Kind = KindLecture
		if subs := sec.Subsections(); len(subs) > 0 {
			sec.Descriptions = []Description{childListing(sec.Title, subs)}
		}
	}
	return sec
}

// loadDirs discovers numbered subdirectories and builds their sections in
// numeric order. Directories that match neither pattern are not part of
// the outline.
func (b *Builder) loadDirs(s *Section) []*Section {
	entries, err := os.ReadDir(s.Path)
	if err != nil {
		b.warnf("reading %s: %v", s.Path, err)
		return nil
	}

	type orderedDir struct {
		key   float64
		title string
		path  string
	}
	var dirs []orderedDir
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name := e.Name()
		if m := dirPrefixPat.FindStringSubmatch(name); m != nil {
			key, _ := strconv.ParseFloat(m[1], 64)
			dirs = append(dirs, orderedDir{key, m[2], filepath.Join(s.Path, name)})
		} else if m := dirSuffixPat.FindStringSubmatch(name); m != nil {
			key, _ := strconv.ParseFloat(m[2], 64)
			dirs = append(dirs, orderedDir{key, m[1], filepath.Join(s.Path, name)})
		}
	}
	sort.Slice(dirs, func(i, j int) bool {
		if dirs[i].key != dirs[j].key {
			return dirs[i].key < dirs[j].key
		}
		return dirs[i].title < dirs[j].title
	})

	children := make([]*Section, 0, len(dirs))
	for _, d := range dirs {
		child := b.build(d.path, TitleFor(d.title), nil, s)
		if child.Empty() {
			debug.Log("outline: dropping empty section %s", d.path)
			continue
		}
		children = append(children, child)
	}
	return children
}

// loadManifest resolves the section's manifest entries into child
// sections. Files are grouped by base name; a group whose single match is
// a directory becomes a normal directory section, any other group becomes
// a section sharing this section's path. Entries that match nothing are
// dropped.
func (b *Builder) loadManifest(s *Section) []*Section {
	names, err := readDirNames(s.Path)
	if err != nil {
		b.warnf("reading %s: %v", s.Path, err)
		return nil
	}

	bases := make([]string, len(s.Manifest))
	for i, entry := range s.Manifest {
		bases[i] = manifestBase(entry)
	}
	groups := make([][]string, len(bases))
	for _, name := range names {
		base := strings.TrimSuffix(name, filepath.Ext(name))
		for i, want := range bases {
			if base == want {
				groups[i] = append(groups[i], name)
				break
			}
		}
	}

	var children []*Section
	for i, group := range groups {
		if len(group) == 0 {
			debug.Log("outline: manifest entry %q matched nothing in %s", s.Manifest[i], s.Path)
			continue
		}
		title := manifestTitle(s.Manifest[i])

		var child *Section
		if len(group) == 1 {
			dir := filepath.Join(s.Path, group[0])
			if fi, err := os.Stat(dir); err == nil && fi.IsDir() {
				child = b.build(dir, title, nil, s)
			}
		}
		if child == nil {
			child = b.build(s.Path, title, group, s)
		}
		if child.Empty() {
			continue
		}
		children = append(children, child)
	}
	return children
}

func (b *Builder) warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if b.warn != nil {
		b.warn(msg)
		return
	}
	fmt.Fprintf(os.Stderr, "warning: %s\n", msg)
}

// stylesheetFor resolves the CSS path for a section directory: a local
// default.css wins, otherwise the parent's stylesheet is inherited with a
// "../" hop when the paths differ.
func stylesheetFor(path string, parent *Section) string {
	if _, err := os.Stat(filepath.Join(path, "default.css")); err == nil {
		return "default.css"
	}
	if parent != nil && parent.Stylesheet != "" {
		if path != parent.Path {
			return filepath.Join("..", parent.Stylesheet)
		}
		return parent.Stylesheet
	}
	return ""
}

// defaultLectureTmpl introduces a content-free section by listing its
// topics.
const defaultLectureTmpl = `<html>
  <head>
  </head>
  <body>
    <p>This section contains the following topics:</p>
    <ul>
    %s
    </ul>
  </body>
</html>
`

func childListing(title string, subs []*Section) Description {
	items := make([]string, len(subs))
	for i, sub := range subs {
		items[i] = fmt.Sprintf("<li>%s</li>", html.EscapeString(sub.Title))
	}
	return Description{
		Title:   title,
		Kind:    DescHTML,
		Content: fmt.Sprintf(defaultLectureTmpl, strings.Join(items, "\n")),
	}
}

func readDirNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}
