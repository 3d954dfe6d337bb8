// Package render converts lesson markup into HTML documents for the
// outline builder.
package render

import (
	"bytes"
	"fmt"
	"os"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
)

// Markdown renders markdown sources to standalone HTML documents.
// Raw HTML embedded in lesson files is passed through: lesson content is
// trusted local material, not untrusted input.
type Markdown struct {
	md goldmark.Markdown
}

// NewMarkdown returns a GitHub-flavored markdown converter.
func NewMarkdown() *Markdown {
	return &Markdown{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(htmlrenderer.WithUnsafe()),
		),
	}
}

// Render converts src to a full HTML document, linking stylesheet when
// non-empty.
func (m *Markdown) Render(src, stylesheet string) (string, error) {
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	return wrapDocument(buf.String(), stylesheet), nil
}

// RenderFile converts the file at src and writes the document to dst.
func (m *Markdown) RenderFile(src, dst, stylesheet string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("reading %s: %w", src, err)
	}
	doc, err := m.Render(string(data), stylesheet)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dst, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", dst, err)
	}
	return nil
}

// wrapDocument wraps a rendered body in a minimal document shell.
func wrapDocument(body, stylesheet string) string {
	var buf bytes.Buffer
	buf.WriteString("<html>\n<head>\n")
	if stylesheet != "" {
		fmt.Fprintf(&buf, "<link rel=\"stylesheet\" href=%q>\n", stylesheet)
	}
	buf.WriteString("</head>\n<body>\n")
	buf.WriteString(body)
	buf.WriteString("</body>\n</html>\n")
	return buf.String()
}
