package view

import (
	"fmt"
	"strings"

	"github.com/vanderheijden86/tutor/pkg/outline"
	"github.com/vanderheijden86/tutor/pkg/runner"
)

// Page renders a section's descriptions and code fragments. Run results
// are rendered separately with RunResult so a page can be shown without
// executing anything.
func (v *View) Page(sec *outline.Section) string {
	var sb strings.Builder
	sb.WriteString(v.theme.Header.Render(sec.Label()))
	sb.WriteString("\n")

	for _, d := range sec.Descriptions {
		sb.WriteString("\n")
		sb.WriteString(v.description(d))
	}

	if snippets := sec.VisibleSnippets(); len(snippets) > 0 {
		sb.WriteString("\n")
		sb.WriteString(v.theme.TitleText.Render("Code"))
		sb.WriteString("\n")
		for _, sn := range snippets {
			sb.WriteString(v.theme.MutedText.Render(
				fmt.Sprintf("── %s (%s) ", sn.Title, countLabel(sn.Lines(), "line"))))
			sb.WriteString("\n")
			sb.WriteString(indent(sn.Content, "  "))
			sb.WriteString("\n")
		}
		if hidden := len(sec.Snippets) - len(snippets); hidden > 0 {
			sb.WriteString(v.theme.MutedText.Render(fmt.Sprintf("(+%d hidden)", hidden)))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// description renders one item. Markdown sources go through glamour,
// plain text is shown verbatim, HTML pages and links are summarized by
// title and target.
func (v *View) description(d outline.Description) string {
	switch d.Kind {
	case outline.DescURL:
		return v.theme.TitleText.Render(d.Title) + " " +
			v.theme.MutedText.Render(d.Content) + "\n"
	case outline.DescHTML:
		if d.Raw != "" {
			return v.markdown(d.Raw)
		}
		return v.theme.TitleText.Render(d.Title) + " " +
			v.theme.MutedText.Render(fmt.Sprintf("(HTML page: %s)", d.Path)) + "\n"
	default:
		return v.theme.TitleText.Render(d.Title) + "\n" + d.Content
	}
}

// markdown renders markdown for the terminal, falling back to the source
// text when the renderer is unavailable or fails.
func (v *View) markdown(src string) string {
	if v.md == nil {
		return src
	}
	out, err := v.md.Render(src)
	if err != nil {
		return src
	}
	return strings.TrimSpace(out) + "\n"
}

// RunResult renders the outcome of executing a section's code.
func (v *View) RunResult(res runner.Result) string {
	var sb strings.Builder

	if res.Output != "" {
		sb.WriteString(v.theme.TitleText.Render("Output"))
		sb.WriteString("\n")
		sb.WriteString(indent(strings.TrimRight(res.Output, "\n"), "  "))
		sb.WriteString("\n")
	}

	if res.Err != nil {
		msg := res.Err.Message
		if res.Err.Fragment != "" {
			msg = fmt.Sprintf("%s: %s", res.Err.Fragment, msg)
		}
		sb.WriteString(v.theme.ErrorText.Render(msg))
		sb.WriteString("\n")
		return sb.String()
	}

	if res.Demo != nil {
		sb.WriteString(v.theme.MutedText.Render("demo = " + res.Demo.String()))
		sb.WriteString("\n")
	}
	if res.Popup != nil {
		sb.WriteString(v.theme.MutedText.Render("popup = " + res.Popup.String()))
		sb.WriteString("\n")
	}

	if sb.Len() == 0 {
		sb.WriteString(v.theme.MutedText.Render("(no output)"))
		sb.WriteString("\n")
	}

	return sb.String()
}

func indent(s, pad string) string {
	if s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = pad + line
		}
	}
	return strings.Join(lines, "\n")
}
