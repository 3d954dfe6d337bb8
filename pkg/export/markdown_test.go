package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/tutor/pkg/outline"
	"github.com/vanderheijden86/tutor/pkg/testutil"
)

// loadCourse builds a small course exercising every section kind and
// description flavor: lectures, a lesson, a lab, a demo and a link page.
func loadCourse(t *testing.T) *outline.Section {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "course")
	testutil.WriteFile(t, filepath.Join(dir, "0001_basics", "basics.desc"), "Basics\n")
	testutil.WriteFile(t, filepath.Join(dir, "0001_basics", "0001_variables", "variables.txt"), "Introducing names.\n")
	testutil.WriteFile(t, filepath.Join(dir, "0001_basics", "0001_variables", "variables.py"), "x = 1\ny = 2\n")
	testutil.WriteFile(t, filepath.Join(dir, "0001_basics", "0002_loops", "loops.py"), "for i in range(3):\n    print(i)\n")
	testutil.WriteFile(t, filepath.Join(dir, "0002_demo", "demo.txt"), "Watch this.\n")
	testutil.WriteFile(t, filepath.Join(dir, "0002_demo", "_run.py"), "print('hi')\n")
	testutil.WriteFile(t, filepath.Join(dir, "0003_links", "refs.url"), "https://example.com/guide[Guide]\n")

	root, err := outline.New(outline.Options{}).Load(dir)
	if err != nil {
		t.Fatalf("loading course: %v", err)
	}
	return root
}

func TestGenerateMarkdown(t *testing.T) {
	root := loadCourse(t)

	md, err := GenerateMarkdown(root, "Test Course")
	if err != nil {
		t.Fatalf("GenerateMarkdown: %v", err)
	}

	for _, want := range []string{
		"# Test Course",
		"*Generated: ",
		"## Summary",
		"| **Sections** | 6 |",
		"| Lessons | 1 |",
		"| Demos | 1 |",
		"| Fragments | 3 |",
		"## Table of Contents",
		"[📝 Variables](#variables)",
		`<a id="variables"></a>`,
		"## 📝 Lesson: Variables",
		"| **Kind** | Lesson |",
		"Introducing names.",
		"**Variables** (2 lines)",
		"```python\nx = 1\ny = 2\n```",
		"- [Guide](https://example.com/guide)",
		"*1 hidden fragment not shown.*",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}

	wantPath := "| **Path** | `" + filepath.Join("0001_basics", "0001_variables") + "` |"
	if !strings.Contains(md, wantPath) {
		t.Errorf("markdown missing root-relative path row %q", wantPath)
	}
}

func TestGenerateMarkdown_DefaultTitle(t *testing.T) {
	root := loadCourse(t)

	md, err := GenerateMarkdown(root, "")
	if err != nil {
		t.Fatalf("GenerateMarkdown: %v", err)
	}
	if !strings.Contains(md, "# Course\n") {
		t.Error("expected outline title as default header")
	}
}

func TestGenerateMarkdown_NilRoot(t *testing.T) {
	if _, err := GenerateMarkdown(nil, "x"); err == nil {
		t.Error("expected error for nil outline")
	}
}

func TestGenerateMarkdown_DuplicateTitlesGetUniqueAnchors(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dup")
	testutil.WriteFile(t, filepath.Join(dir, "0001_part_one", "0001_loops", "a.py"), "a = 1\n")
	testutil.WriteFile(t, filepath.Join(dir, "0002_part_two", "0001_loops", "b.py"), "b = 2\n")

	root, err := outline.New(outline.Options{}).Load(dir)
	if err != nil {
		t.Fatalf("loading course: %v", err)
	}
	md, err := GenerateMarkdown(root, "")
	if err != nil {
		t.Fatalf("GenerateMarkdown: %v", err)
	}

	if !strings.Contains(md, `<a id="loops"></a>`) {
		t.Error("first duplicate should keep the plain slug")
	}
	if !strings.Contains(md, `<a id="loops-1"></a>`) {
		t.Error("second duplicate should get a numbered slug")
	}
}

func TestSaveMarkdownToFile(t *testing.T) {
	root := loadCourse(t)
	out := filepath.Join(t.TempDir(), "course.md")

	if err := SaveMarkdownToFile(root, "Saved", out); err != nil {
		t.Fatalf("SaveMarkdownToFile: %v", err)
	}
	info, err := os.Stat(out)
	if err != nil {
		t.Fatalf("stat output: %v", err)
	}
	if info.Size() == 0 {
		t.Error("exported file is empty")
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if !strings.HasPrefix(string(data), "# Saved") {
		t.Error("file should start with the document header")
	}
}

func TestCreateSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"  Mixed--Case!!  ", "mixed-case"},
		{"already-slugged", "already-slugged"},
		{"123", "123"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		if got := createSlug(tt.in); got != tt.want {
			t.Errorf("createSlug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUniqueSlug(t *testing.T) {
	counts := make(map[string]int)
	if got := uniqueSlug("x", counts); got != "x" {
		t.Errorf("first occurrence = %q, want x", got)
	}
	if got := uniqueSlug("x", counts); got != "x-1" {
		t.Errorf("second occurrence = %q, want x-1", got)
	}
	if got := uniqueSlug("x", counts); got != "x-2" {
		t.Errorf("third occurrence = %q, want x-2", got)
	}
	if got := uniqueSlug("", counts); got != "section" {
		t.Errorf("empty slug = %q, want section", got)
	}
}

func TestRelTo(t *testing.T) {
	root := filepath.Join("/", "tmp", "course")
	tests := []struct {
		name string
		p    string
		want string
	}{
		{"child", filepath.Join(root, "0001_basics"), "0001_basics"},
		{"deep child", filepath.Join(root, "a", "b"), filepath.Join("a", "b")},
		{"unrelated", filepath.Join("/", "elsewhere", "x"), filepath.Join("/", "elsewhere", "x")},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := relTo(root, tt.p); got != tt.want {
				t.Errorf("relTo(%q, %q) = %q, want %q", root, tt.p, got, tt.want)
			}
		})
	}
}

func TestCountNoun(t *testing.T) {
	if got := countNoun(1, "line"); got != "1 line" {
		t.Errorf("singular = %q", got)
	}
	if got := countNoun(3, "line"); got != "3 lines" {
		t.Errorf("plural = %q", got)
	}
	if got := countNoun(0, "fragment"); got != "0 fragments" {
		t.Errorf("zero = %q", got)
	}
}
