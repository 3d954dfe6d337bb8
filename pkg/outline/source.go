package outline

import (
	"regexp"
	"strings"
)

// docOpenPat matches everything up to and including the opening quote of a
// leading module docstring: any run of blank or comment lines, optional
// string prefix letters, then a triple quote.
var docOpenPat = regexp.MustCompile(`^((?:[ \t]*(?:#[^\n]*)?\r?\n)*)[ \t]*[rRuU]{0,2}("""|''')`)

// SplitSource splits a lesson source file into its leading docstring and
// the remaining code. The split is purely textual so that files with
// deliberate syntax errors still yield their description. When no leading
// docstring exists (or it is unterminated) the docstring is empty and the
// source is returned unchanged.
func SplitSource(src string) (doc, body string) {
	m := docOpenPat.FindStringSubmatchIndex(src)
	if m == nil {
		return "", src
	}
	prefix := src[m[2]:m[3]]
	quote := src[m[4]:m[5]]
	rest := src[m[1]:]
	end := strings.Index(rest, quote)
	if end < 0 {
		return "", src
	}
	doc = rest[:end]
	body = rest[end+len(quote):]
	body = strings.TrimPrefix(body, "\r\n")
	body = strings.TrimPrefix(body, "\n")
	return doc, prefix + body
}
