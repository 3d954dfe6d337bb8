package outline

import "strings"

// ParseDesc parses the contents of a .desc manifest file. The first
// non-blank, non-comment line is the section title; every following such
// line is a manifest entry of the form "basename" or "basename: Title".
// Lines starting with '#' are comments. An empty manifest file yields an
// empty title, letting the caller fall back to a name-derived one.
func ParseDesc(content string) (title string, manifest []string) {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return "", nil
	}
	return lines[0], lines[1:]
}

// manifestBase returns the file base name of a manifest entry, with any
// ": Display Title" suffix removed.
func manifestBase(entry string) string {
	base, _, _ := strings.Cut(entry, ":")
	return strings.TrimSpace(base)
}

// manifestTitle returns the display title for a manifest entry: the text
// after the colon when present, otherwise a title derived from the base
// name.
func manifestTitle(entry string) string {
	base, title, ok := strings.Cut(entry, ":")
	if ok {
		return strings.TrimSpace(title)
	}
	return TitleFor(strings.TrimSpace(base))
}
