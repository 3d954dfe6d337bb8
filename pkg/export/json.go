package export

import (
	"fmt"
	"os"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/tutor/pkg/outline"
)

// Export is the top-level JSON document.
type Export struct {
	GeneratedAt time.Time   `json:"generated_at"`
	Root        string      `json:"root"`
	Outline     sectionJSON `json:"outline"`
}

type sectionJSON struct {
	Title        string        `json:"title"`
	Kind         string        `json:"kind"`
	Path         string        `json:"path,omitempty"`
	Descriptions []descJSON    `json:"descriptions,omitempty"`
	Snippets     []snippetJSON `json:"snippets,omitempty"`
	Children     []sectionJSON `json:"children,omitempty"`
}

type descJSON struct {
	Title   string `json:"title"`
	Kind    string `json:"kind"`
	Content string `json:"content,omitempty"`
}

type snippetJSON struct {
	Title   string `json:"title"`
	Lines   int    `json:"lines"`
	Hidden  bool   `json:"hidden,omitempty"`
	Content string `json:"content"`
}

// GenerateJSON serializes the outline tree for machine consumers. Paths
// are root-relative so the document stays stable across checkouts.
func GenerateJSON(root *outline.Section) ([]byte, error) {
	if root == nil {
		return nil, fmt.Errorf("no outline to export")
	}
	doc := Export{
		GeneratedAt: time.Now().UTC(),
		Root:        root.Path,
		Outline:     sectionToJSON(root, root.Path),
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding outline: %w", err)
	}
	return data, nil
}

// SaveJSONToFile writes the generated JSON document to a file.
func SaveJSONToFile(root *outline.Section, filename string) error {
	data, err := GenerateJSON(root)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0o644)
}

func sectionToJSON(sec *outline.Section, rootPath string) sectionJSON {
	out := sectionJSON{
		Title: sec.Title,
		Kind:  sec.Kind.String(),
		Path:  relTo(rootPath, sec.Path),
	}
	if sec.Path == rootPath {
		out.Path = ""
	}
	for _, d := range sec.Descriptions {
		dj := descJSON{Title: d.Title, Kind: d.Kind.String()}
		// Markdown-backed pages export their source, not the rendered HTML.
		if d.Kind == outline.DescHTML && d.Raw != "" {
			dj.Content = d.Raw
		} else {
			dj.Content = d.Content
		}
		out.Descriptions = append(out.Descriptions, dj)
	}
	for i := range sec.Snippets {
		s := &sec.Snippets[i]
		out.Snippets = append(out.Snippets, snippetJSON{
			Title:   s.Title,
			Lines:   s.Lines(),
			Hidden:  s.Hidden,
			Content: s.Content,
		})
	}
	for _, child := range sec.Subsections() {
		out.Children = append(out.Children, sectionToJSON(child, rootPath))
	}
	return out
}
