package outline

import (
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TitleFor derives a display title from a file or directory base name:
// underscores become spaces and each word is capitalized.
func TitleFor(name string) string {
	words := strings.Fields(strings.ReplaceAll(name, "_", " "))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}

// fileBase returns the file name without its directory or extension.
func fileBase(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
