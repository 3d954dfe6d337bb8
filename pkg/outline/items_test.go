package outline_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/tutor/pkg/outline"
	"github.com/vanderheijden86/tutor/pkg/render"
	"github.com/vanderheijden86/tutor/pkg/testutil"
)

// countingConverter records conversions and writes a fixed document, so
// cache staleness can be observed.
type countingConverter struct {
	renders     int
	fileRenders int
}

func (c *countingConverter) Render(src, stylesheet string) (string, error) {
	c.renders++
	return "<html><body>" + src + "</body></html>", nil
}

func (c *countingConverter) RenderFile(src, dst, stylesheet string) error {
	c.fileRenders++
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, []byte("<html><body>"+string(data)+"</body></html>"), 0o644)
}

func TestLoad_TextItem(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{
		"first_steps.txt": "plain text\n",
	})

	root := load(t, dir)
	if len(root.Descriptions) != 1 {
		t.Fatalf("expected 1 description, got %d", len(root.Descriptions))
	}
	d := root.Descriptions[0]
	if d.Kind != outline.DescText {
		t.Errorf("expected DescText, got %v", d.Kind)
	}
	if d.Title != "First Steps" {
		t.Errorf("expected title First Steps, got %q", d.Title)
	}
	if d.Content != "plain text\n" {
		t.Errorf("expected verbatim content, got %q", d.Content)
	}
}

func TestLoad_HTMLItemSkippedWhenRSTExists(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{
		"page.htm": "<html><body>generated</body></html>",
		"page.rst": "Heading\n=======\n",
	})

	root := load(t, dir)
	// The .rst handler owns the page: without a converter it reuses the
	// generated .htm, so exactly one item results.
	if len(root.Descriptions) != 1 {
		t.Fatalf("expected 1 description, got %d", len(root.Descriptions))
	}
	if root.Descriptions[0].Kind != outline.DescHTML {
		t.Errorf("expected DescHTML, got %v", root.Descriptions[0].Kind)
	}
	if !strings.Contains(root.Descriptions[0].Content, "generated") {
		t.Errorf("expected the cached page content, got %q", root.Descriptions[0].Content)
	}
}

func TestLoad_RSTFallsBackToText(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{
		"page.rst": "Heading\n=======\n",
	})

	root := load(t, dir)
	if len(root.Descriptions) != 1 {
		t.Fatalf("expected 1 description, got %d", len(root.Descriptions))
	}
	if root.Descriptions[0].Kind != outline.DescText {
		t.Errorf("expected text fallback without a converter, got %v", root.Descriptions[0].Kind)
	}
}

func TestLoad_RSTConversionCached(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{
		"page.rst": "restructured\n",
	})

	conv := &countingConverter{}
	b := outline.New(outline.Options{RST: conv})

	if _, err := b.Load(dir); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if conv.fileRenders != 1 {
		t.Fatalf("expected 1 conversion, got %d", conv.fileRenders)
	}

	// Unchanged source: the generated page is reused.
	if _, err := b.Load(dir); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if conv.fileRenders != 1 {
		t.Errorf("expected cached page to be reused, got %d conversions", conv.fileRenders)
	}

	// Newer source: the page is regenerated.
	testutil.Touch(t, filepath.Join(dir, "page.rst"))
	if _, err := b.Load(dir); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if conv.fileRenders != 2 {
		t.Errorf("expected regeneration after source change, got %d conversions", conv.fileRenders)
	}
}

func TestLoad_RSTRegeneratedWhenStylesheetChanges(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{
		"default.css": "body {}\n",
		"page.rst":    "restructured\n",
	})

	conv := &countingConverter{}
	b := outline.New(outline.Options{RST: conv})
	if _, err := b.Load(dir); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if conv.fileRenders != 1 {
		t.Fatalf("expected 1 conversion, got %d", conv.fileRenders)
	}

	testutil.Touch(t, filepath.Join(dir, "default.css"))
	if _, err := b.Load(dir); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if conv.fileRenders != 2 {
		t.Errorf("expected regeneration after stylesheet change, got %d conversions", conv.fileRenders)
	}
}

func TestLoad_MarkdownRendered(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{
		"guide.md": "# Welcome\n\nSome *markdown*.\n",
	})

	root, err := outline.New(outline.Options{Markdown: render.NewMarkdown()}).Load(dir)
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if len(root.Descriptions) != 1 {
		t.Fatalf("expected 1 description, got %d", len(root.Descriptions))
	}
	d := root.Descriptions[0]
	if d.Kind != outline.DescHTML {
		t.Errorf("expected DescHTML, got %v", d.Kind)
	}
	if !strings.Contains(d.Content, "<h1") || !strings.Contains(d.Content, "Welcome") {
		t.Errorf("expected rendered heading, got %q", d.Content)
	}
	if d.Raw == "" {
		t.Error("expected the markdown source to be preserved in Raw")
	}
}

func TestLoad_MarkdownWithoutConverterStaysText(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{
		"guide.md": "# Welcome\n",
	})

	root := load(t, dir)
	if root.Descriptions[0].Kind != outline.DescText {
		t.Errorf("expected text item without a converter, got %v", root.Descriptions[0].Kind)
	}
}

func TestLoad_URLItems(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{
		"links.url": "# reference material\n" +
			"https://go.dev/[The Go Site]\n" +
			"\n" +
			"https://example.com/docs/intro.html\n",
	})

	root := load(t, dir)
	if len(root.Descriptions) != 2 {
		t.Fatalf("expected 2 link items, got %d", len(root.Descriptions))
	}

	first := root.Descriptions[0]
	if first.Kind != outline.DescURL {
		t.Errorf("expected DescURL, got %v", first.Kind)
	}
	if first.Title != "The Go Site" {
		t.Errorf("expected bracketed title, got %q", first.Title)
	}
	if first.Content != "https://go.dev/" {
		t.Errorf("expected brackets stripped from URL, got %q", first.Content)
	}

	second := root.Descriptions[1]
	if second.Title != "intro" {
		t.Errorf("expected title from last path segment, got %q", second.Title)
	}
	if second.Content != "https://example.com/docs/intro.html" {
		t.Errorf("expected URL kept verbatim, got %q", second.Content)
	}
}

func TestLoad_MediaItems(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{
		"diagram.png": "not really a png",
		"intro.mp3":   "not really audio",
		"clip.mov":    "not really video",
	})

	root := load(t, dir)
	if len(root.Descriptions) != 3 {
		t.Fatalf("expected 3 media items, got %d", len(root.Descriptions))
	}
	wantTags := map[string]string{
		"Clip":    "<video",
		"Diagram": "<img",
		"Intro":   "<audio",
	}
	for _, d := range root.Descriptions {
		tag, ok := wantTags[d.Title]
		if !ok {
			t.Errorf("unexpected media item %q", d.Title)
			continue
		}
		if d.Kind != outline.DescHTML || !strings.Contains(d.Content, tag) {
			t.Errorf("expected %s page for %q, got %q", tag, d.Title, d.Content)
		}
	}
}

func TestLoad_UnrecognizedExtensionsIgnored(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{
		"data.bin":  "\x00\x01",
		"noext":     "nothing",
		"notes.txt": "real content\n",
	})

	root := load(t, dir)
	if len(root.Descriptions) != 1 {
		t.Errorf("expected only the text item, got %d descriptions", len(root.Descriptions))
	}
}

func TestLoad_WarningHandlerReceivesBuildWarnings(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{
		"page.rst": "content\n",
	})

	var warnings []string
	failing := &failingConverter{}
	b := outline.New(outline.Options{
		RST:            failing,
		WarningHandler: func(msg string) { warnings = append(warnings, msg) },
	})
	if _, err := b.Load(dir); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if len(warnings) == 0 {
		t.Error("expected a warning from the failing converter")
	}
}

type failingConverter struct{}

func (failingConverter) Render(src, stylesheet string) (string, error) {
	return "", fmt.Errorf("conversion refused")
}

func (failingConverter) RenderFile(src, dst, stylesheet string) error {
	return fmt.Errorf("conversion refused")
}
