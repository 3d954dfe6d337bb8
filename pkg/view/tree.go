package view

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/tutor/pkg/outline"
)

// Tree renders the outline as an indented tree, one section per line.
// Child sections are loaded on demand, so rendering the tree walks the
// whole tutorial directory once.
func (v *View) Tree(root *outline.Section) string {
	var sb strings.Builder
	v.treeNode(&sb, root, "", true, true)
	return sb.String()
}

func (v *View) treeNode(sb *strings.Builder, sec *outline.Section, prefix string, isLast, isRoot bool) {
	connector := "├── "
	switch {
	case isRoot:
		connector = ""
	case isLast:
		connector = "└── "
	}

	label := kindLabel(sec.Kind)
	avail := v.width - runewidth.StringWidth(prefix+connector) - runewidth.StringWidth(label) - 1
	title := truncateCells(sec.Title, avail)

	sb.WriteString(prefix)
	sb.WriteString(connector)
	sb.WriteString(v.theme.KindBadge(sec.Kind))
	sb.WriteString(" ")
	sb.WriteString(title)
	if n := len(sec.Snippets); n > 0 {
		sb.WriteString(v.theme.MutedText.Render(fmt.Sprintf(" (%s)", countLabel(n, "fragment"))))
	}
	if v.visited != nil && v.visited(sec) {
		sb.WriteString(" ")
		sb.WriteString(v.theme.SuccessText.Render("✓"))
	}
	sb.WriteString("\n")

	childPrefix := prefix
	if !isRoot {
		if isLast {
			childPrefix += "    "
		} else {
			childPrefix += "│   "
		}
	}
	subs := sec.Subsections()
	for i, child := range subs {
		v.treeNode(sb, child, childPrefix, i == len(subs)-1, false)
	}
}

func countLabel(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
