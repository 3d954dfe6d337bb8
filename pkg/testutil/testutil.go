// Package testutil provides fixture builders and assertions shared by the
// tutor test suites.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// WriteFile writes content to path, creating parent directories as needed.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// WriteTree writes a directory tree under root. Keys are slash-separated
// relative paths; a key ending in "/" creates an empty directory.
func WriteTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if strings.HasSuffix(rel, "/") {
			if err := os.MkdirAll(full, 0o755); err != nil {
				t.Fatalf("failed to create %s: %v", full, err)
			}
			continue
		}
		WriteFile(t, full, content)
	}
}

// Touch sets the file's modification time forward so staleness checks see
// it as newer than files written earlier in the same test.
func Touch(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("failed to stat %s: %v", path, err)
	}
	newer := info.ModTime().Add(2 * time.Second)
	if err := os.Chtimes(path, newer, newer); err != nil {
		t.Fatalf("failed to touch %s: %v", path, err)
	}
}
