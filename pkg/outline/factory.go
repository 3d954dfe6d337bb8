package outline

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// factory accumulates the items found in one directory (or manifest group)
// before the collected content is classified into a section.
type factory struct {
	b        *Builder
	path     string
	title    string
	manifest []string
	descs    []Description
	snippets []Snippet
	css      string
	descSeen bool
}

// handlers maps a lower-case file extension to the factory method that
// turns the file into section content. Unlisted extensions are ignored.
var handlers = map[string]func(*factory, string){
	".py":   (*factory).addCode,
	".star": (*factory).addCode,
	".txt":  (*factory).addText,
	".htm":  (*factory).addHTML,
	".html": (*factory).addHTML,
	".rst":  (*factory).addRST,
	".md":   (*factory).addMarkdown,
	".url":  (*factory).addURLs,
	".jpg":  (*factory).addImage,
	".jpeg": (*factory).addImage,
	".png":  (*factory).addImage,
	".mp3":  (*factory).addAudio,
	".mov":  (*factory).addMovie,
	".wmv":  (*factory).addMovie,
	".avi":  (*factory).addMovie,
	".desc": (*factory).addManifest,
}

// readFile returns the file's contents, or reports it unreadable. Files
// that cannot be read contribute no item; the build goes on.
func (f *factory) readFile(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		f.b.warnf("skipping %s: %v", path, err)
		return "", false
	}
	return string(data), true
}

// addCode turns a source file into a code fragment. A non-blank leading
// docstring additionally becomes a description item, so a directory of
// bare code files still classifies as a lab. Files whose base name starts
// with an underscore are hidden: they run but are not normally shown.
func (f *factory) addCode(path string) {
	src, ok := f.readFile(path)
	if !ok {
		return
	}
	doc, body := SplitSource(src)
	base := fileBase(path)
	if strings.TrimSpace(doc) != "" {
		f.addMarkup(doc, TitleFor(base), "", f.b.md)
	}
	f.snippets = append(f.snippets, Snippet{
		Title:   TitleFor(base),
		Path:    path,
		Content: strings.TrimSuffix(body, "\n"),
		Hidden:  strings.HasPrefix(base, "_"),
	})
}

func (f *factory) addText(path string) {
	content, ok := f.readFile(path)
	if !ok {
		return
	}
	f.descs = append(f.descs, Description{
		Title:   TitleFor(fileBase(path)),
		Path:    path,
		Kind:    DescText,
		Content: content,
	})
}

// addHTML adds a hand-written HTML page, unless a sibling .rst file exists:
// the .rst handler owns the generated page in that case.
func (f *factory) addHTML(path string) {
	rst := strings.TrimSuffix(path, filepath.Ext(path)) + ".rst"
	if _, err := os.Stat(rst); err == nil {
		return
	}
	content, ok := f.readFile(path)
	if !ok {
		return
	}
	f.descs = append(f.descs, Description{
		Title:   TitleFor(fileBase(path)),
		Path:    path,
		Kind:    DescHTML,
		Content: content,
	})
}

// addRST adds a restructured text page via its generated .htm sibling,
// regenerating it when the source or stylesheet is newer. Without a
// converter and without a previously generated page the raw text is shown.
func (f *factory) addRST(path string) {
	out := strings.TrimSuffix(path, filepath.Ext(path)) + ".htm"
	if f.b.rst != nil && stale(out, path, f.cssAbs()) {
		if err := f.b.rst.RenderFile(path, out, f.cssAbs()); err != nil {
			f.b.warnf("converting %s: %v", path, err)
		}
	}
	if content, err := os.ReadFile(out); err == nil {
		f.descs = append(f.descs, Description{
			Title:   TitleFor(fileBase(path)),
			Path:    out,
			Kind:    DescHTML,
			Content: string(content),
		})
		return
	}
	f.addText(path)
}

func (f *factory) addMarkdown(path string) {
	src, ok := f.readFile(path)
	if !ok {
		return
	}
	f.addMarkup(src, TitleFor(fileBase(path)), path, f.b.md)
}

// urlTitlePat extracts a bracketed display title from a URL line.
var urlTitlePat = regexp.MustCompile(`^(.*)\[(.*)\](.*)$`)

// addURLs adds one link item per non-blank, non-comment line. A line may
// embed its display title in square brackets; otherwise the last path
// segment is used.
func (f *factory) addURLs(path string) {
	content, ok := f.readFile(path)
	if !ok {
		return
	}
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		title, url := line, line
		if m := urlTitlePat.FindStringSubmatch(line); m != nil {
			title = strings.TrimSpace(m[2])
			url = m[1] + m[3]
		} else if i := strings.LastIndexByte(line, '/'); i >= 0 {
			title = fileBase(line[i+1:])
		}
		f.descs = append(f.descs, Description{
			Title:   title,
			Kind:    DescURL,
			Content: url,
		})
	}
}

// Minimal HTML pages wrapping media files so they flow through the same
// description pipeline as every other item.
const (
	imageTemplate = `<html>
<body>
<img src="%s" alt="%s">
</body>
</html>
`
	audioTemplate = `<html>
<body>
<audio controls src="%s"></audio>
</body>
</html>
`
	movieTemplate = `<html>
<body>
<video controls src="%s"></video>
</body>
</html>
`
)

func (f *factory) addImage(path string) {
	f.addMedia(path, fmt.Sprintf(imageTemplate, path, html.EscapeString(fileBase(path))))
}

func (f *factory) addAudio(path string) {
	f.addMedia(path, fmt.Sprintf(audioTemplate, path))
}

func (f *factory) addMovie(path string) {
	f.addMedia(path, fmt.Sprintf(movieTemplate, path))
}

func (f *factory) addMedia(path, content string) {
	f.descs = append(f.descs, Description{
		Title:   TitleFor(fileBase(path)),
		Path:    path,
		Kind:    DescHTML,
		Content: content,
	})
}

// addManifest reads the section's .desc file: its first line names the
// section, the remaining lines are the manifest. Only the first .desc in a
// directory is honored. An empty or unreadable file still names the
// section after itself.
func (f *factory) addManifest(path string) {
	if f.descSeen {
		return
	}
	f.descSeen = true
	content, _ := f.readFile(path)
	title, manifest := ParseDesc(content)
	if title == "" {
		f.title = TitleFor(fileBase(path))
		return
	}
	f.title = title
	f.manifest = manifest
}

// addMarkup converts a markup source to an HTML item, or keeps it as plain
// text when no converter is available.
func (f *factory) addMarkup(src, title, path string, conv Converter) {
	if conv == nil {
		f.descs = append(f.descs, Description{Title: title, Path: path, Kind: DescText, Content: src})
		return
	}
	rendered, err := conv.Render(src, f.cssAbs())
	if err != nil {
		f.b.warnf("rendering %s: %v", title, err)
		f.descs = append(f.descs, Description{Title: title, Path: path, Kind: DescText, Content: src})
		return
	}
	f.descs = append(f.descs, Description{
		Title:   title,
		Path:    path,
		Kind:    DescHTML,
		Content: rendered,
		Raw:     src,
	})
}

// cssAbs returns the absolute path of the section's stylesheet, or empty.
func (f *factory) cssAbs() string {
	if f.css == "" {
		return ""
	}
	return filepath.Join(f.path, f.css)
}

// stale reports whether a generated file is missing or older than any of
// its inputs. Empty input paths are skipped.
func stale(out string, inputs ...string) bool {
	oi, err := os.Stat(out)
	if err != nil {
		return true
	}
	for _, in := range inputs {
		if in == "" {
			continue
		}
		if ii, err := os.Stat(in); err == nil && ii.ModTime().After(oi.ModTime()) {
			return true
		}
	}
	return false
}
