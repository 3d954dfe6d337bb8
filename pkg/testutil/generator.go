package testutil

import (
	"fmt"
	"path/filepath"
	"testing"
)

// GeneratorConfig controls the shape of a generated tutorial tree.
type GeneratorConfig struct {
	// Sections is the number of numbered top-level sections.
	Sections int

	// Lessons is the number of lesson directories per section.
	Lessons int

	// Labs adds a code-only lab to each section when true.
	Labs bool
}

// DefaultGeneratorConfig returns a small but representative tree.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{Sections: 3, Lessons: 2, Labs: true}
}

// GenerateTutorial writes a deterministic tutorial tree under root and
// returns root. Identical configs produce identical trees, so tests and
// benchmarks can rely on the exact section count and titles.
func GenerateTutorial(t *testing.T, root string, cfg GeneratorConfig) string {
	t.Helper()
	for s := 1; s <= cfg.Sections; s++ {
		secDir := filepath.Join(root, fmt.Sprintf("%04d_section_%d", s, s))
		WriteFile(t, filepath.Join(secDir, "overview.txt"),
			fmt.Sprintf("Overview of section %d.\n", s))
		for l := 1; l <= cfg.Lessons; l++ {
			lessonDir := filepath.Join(secDir, fmt.Sprintf("%04d_lesson_%d", l, l))
			WriteFile(t, filepath.Join(lessonDir, "notes.txt"),
				fmt.Sprintf("Notes for lesson %d.%d.\n", s, l))
			WriteFile(t, filepath.Join(lessonDir, "example.py"),
				fmt.Sprintf("x = %d\nprint(x)\n", s*10+l))
		}
		if cfg.Labs {
			labDir := filepath.Join(secDir, fmt.Sprintf("%04d_lab", cfg.Lessons+1))
			WriteFile(t, filepath.Join(labDir, "exercise.py"),
				"total = 0\nfor i in range(5):\n    total += i\nprint(total)\n")
		}
	}
	return root
}
