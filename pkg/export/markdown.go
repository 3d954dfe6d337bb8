// Package export renders a loaded outline to shareable artifacts: a
// markdown course report, a machine-readable JSON outline, and static
// SVG or PNG snapshots of the course structure.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/vanderheijden86/tutor/pkg/outline"
	"github.com/vanderheijden86/tutor/pkg/workspace"
)

// Package-level compiled regex for slug creation (avoids recompilation per call)
var slugNonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9]+`)

// GenerateMarkdown renders the outline as a single markdown document:
// summary table, linked table of contents and one block per section.
func GenerateMarkdown(root *outline.Section, title string) (string, error) {
	if root == nil {
		return "", fmt.Errorf("no outline to export")
	}
	if strings.TrimSpace(title) == "" {
		title = root.Title
	}

	sections := root.Flatten()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	sb.WriteString(fmt.Sprintf("*Generated: %s*\n\n", time.Now().Format(time.RFC1123)))

	sum := workspace.Summarize(workspace.LoadResult{Outline: root})
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Count |\n|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| **Sections** | %d |\n", sum.Sections))
	sb.WriteString(fmt.Sprintf("| Lectures | %d |\n", sum.Lectures))
	sb.WriteString(fmt.Sprintf("| Lessons | %d |\n", sum.Lessons))
	sb.WriteString(fmt.Sprintf("| Labs | %d |\n", sum.Labs))
	sb.WriteString(fmt.Sprintf("| Demos | %d |\n", sum.Demos))
	sb.WriteString(fmt.Sprintf("| Fragments | %d |\n\n", sum.Fragments))

	// Precompute stable, unique slugs for TOC anchors and headings.
	slugCounts := make(map[string]int, len(sections))
	slugs := make([]string, len(sections))
	for i, sec := range sections {
		slugs[i] = uniqueSlug(createSlug(sec.Title), slugCounts)
	}

	sb.WriteString("## Table of Contents\n\n")
	for i, sec := range sections {
		indent := strings.Repeat("  ", sectionDepth(sec))
		sb.WriteString(fmt.Sprintf("%s- [%s %s](#%s)\n", indent, kindEmoji(sec.Kind), sec.Title, slugs[i]))
	}
	sb.WriteString("\n---\n\n")

	for i, sec := range sections {
		writeSection(&sb, sec, slugs[i], root.Path)
	}

	return sb.String(), nil
}

// SaveMarkdownToFile writes the generated markdown to a file.
func SaveMarkdownToFile(root *outline.Section, title, filename string) error {
	content, err := GenerateMarkdown(root, title)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, []byte(content), 0o644)
}

func writeSection(sb *strings.Builder, sec *outline.Section, slug, rootPath string) {
	sb.WriteString(fmt.Sprintf("<a id=\"%s\"></a>\n\n", slug))
	sb.WriteString(fmt.Sprintf("## %s %s\n\n", kindEmoji(sec.Kind), sec.Label()))

	sb.WriteString("| Property | Value |\n|----------|-------|\n")
	sb.WriteString(fmt.Sprintf("| **Kind** | %s |\n", sec.Kind))
	sb.WriteString(fmt.Sprintf("| **Path** | `%s` |\n", relTo(rootPath, sec.Path)))
	if n := len(sec.Snippets); n > 0 {
		sb.WriteString(fmt.Sprintf("| **Fragments** | %d |\n", n))
	}
	sb.WriteString("\n")

	for _, desc := range sec.Descriptions {
		writeDescription(sb, desc, rootPath)
	}

	visible := sec.VisibleSnippets()
	if len(visible) > 0 {
		sb.WriteString("### Code\n\n")
		for _, snip := range visible {
			sb.WriteString(fmt.Sprintf("**%s** (%s)\n\n", snip.Title, countNoun(snip.Lines(), "line")))
			sb.WriteString("```python\n")
			sb.WriteString(snip.Content)
			if !strings.HasSuffix(snip.Content, "\n") {
				sb.WriteString("\n")
			}
			sb.WriteString("```\n\n")
		}
	}
	if hidden := len(sec.Snippets) - len(visible); hidden > 0 {
		sb.WriteString(fmt.Sprintf("*%s not shown.*\n\n", countNoun(hidden, "hidden fragment")))
	}

	sb.WriteString("---\n\n")
}

// writeDescription renders one item. Markdown-backed pages keep their
// original source, generated HTML pages are referenced rather than inlined.
func writeDescription(sb *strings.Builder, desc outline.Description, rootPath string) {
	switch {
	case desc.Kind == outline.DescURL:
		sb.WriteString(fmt.Sprintf("- [%s](%s)\n\n", desc.Title, desc.Content))
	case desc.Kind == outline.DescHTML && desc.Raw != "":
		sb.WriteString(strings.TrimRight(desc.Raw, "\n"))
		sb.WriteString("\n\n")
	case desc.Kind == outline.DescHTML:
		sb.WriteString(fmt.Sprintf("*(HTML page: %s)*\n\n", relTo(rootPath, desc.Path)))
	default:
		if strings.TrimSpace(desc.Content) == "" {
			return
		}
		sb.WriteString(fmt.Sprintf("### %s\n\n", desc.Title))
		sb.WriteString(strings.TrimRight(desc.Content, "\n"))
		sb.WriteString("\n\n")
	}
}

func sectionDepth(sec *outline.Section) int {
	d := 0
	for s := sec.Parent(); s != nil; s = s.Parent() {
		d++
	}
	return d
}

// relTo shortens p to a root-relative path for display; unrelated paths
// stay absolute.
func relTo(rootPath, p string) string {
	if rootPath == "" || p == "" {
		return p
	}
	rel, err := filepath.Rel(rootPath, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return p
	}
	return rel
}

func uniqueSlug(base string, counts map[string]int) string {
	if base == "" {
		base = "section"
	}
	if count, ok := counts[base]; ok {
		count++
		counts[base] = count
		return fmt.Sprintf("%s-%d", base, count)
	}
	counts[base] = 0
	return base
}

// createSlug creates a URL-friendly slug from heading text.
func createSlug(text string) string {
	slug := strings.ToLower(text)
	slug = slugNonAlphanumericRegex.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	return slug
}

func kindEmoji(k outline.Kind) string {
	switch k {
	case outline.KindLecture:
		return "📖"
	case outline.KindLesson:
		return "📝"
	case outline.KindLab:
		return "🔬"
	case outline.KindDemo:
		return "🎬"
	default:
		return "•"
	}
}

func countNoun(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
