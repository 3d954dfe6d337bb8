package outline_test

import (
	"testing"

	"github.com/vanderheijden86/tutor/pkg/outline"
)

func TestSplitSource(t *testing.T) {
	tests := []struct {
		name string
		src  string
		doc  string
		body string
	}{
		{
			name: "simple docstring",
			src:  "\"\"\"Doc\"\"\"\nx = 1\n",
			doc:  "Doc",
			body: "x = 1\n",
		},
		{
			name: "multiline docstring",
			src:  "\"\"\"First line.\n\nSecond paragraph.\n\"\"\"\nx = 1\n",
			doc:  "First line.\n\nSecond paragraph.\n",
			body: "x = 1\n",
		},
		{
			name: "single quoted docstring",
			src:  "'''Doc'''\nx = 1\n",
			doc:  "Doc",
			body: "x = 1\n",
		},
		{
			name: "comment lines survive in the body",
			src:  "# header\n\n\"\"\"Doc\"\"\"\nx = 1\n",
			doc:  "Doc",
			body: "# header\n\nx = 1\n",
		},
		{
			name: "raw string prefix",
			src:  "r\"\"\"Doc\"\"\"\nx = 1\n",
			doc:  "Doc",
			body: "x = 1\n",
		},
		{
			name: "indented docstring",
			src:  "  \"\"\"Doc\"\"\"\nx = 1\n",
			doc:  "Doc",
			body: "x = 1\n",
		},
		{
			name: "crlf line endings",
			src:  "\"\"\"Doc\"\"\"\r\nx = 1\r\n",
			doc:  "Doc",
			body: "x = 1\r\n",
		},
		{
			name: "empty docstring",
			src:  "\"\"\"\"\"\"\nx = 1\n",
			doc:  "",
			body: "x = 1\n",
		},
		{
			name: "no docstring",
			src:  "x = 1\n",
			doc:  "",
			body: "x = 1\n",
		},
		{
			name: "docstring after code is not a docstring",
			src:  "x = 1\n\"\"\"Doc\"\"\"\n",
			doc:  "",
			body: "x = 1\n\"\"\"Doc\"\"\"\n",
		},
		{
			name: "unterminated docstring",
			src:  "\"\"\"Doc\nx = 1\n",
			doc:  "",
			body: "\"\"\"Doc\nx = 1\n",
		},
		{
			name: "empty source",
			src:  "",
			doc:  "",
			body: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, body := outline.SplitSource(tt.src)
			if doc != tt.doc {
				t.Errorf("expected doc %q, got %q", tt.doc, doc)
			}
			if body != tt.body {
				t.Errorf("expected body %q, got %q", tt.body, body)
			}
		})
	}
}

func TestTitleFor(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"hello_world", "Hello World"},
		{"introduction", "Introduction"},
		{"HTTP_server", "Http Server"},
		{"__init__", "Init"},
		{"multi__score", "Multi Score"},
		{"0001_getting_started", "0001 Getting Started"},
		{"", ""},
		{"émile", "Émile"},
	}
	for _, tt := range tests {
		if got := outline.TitleFor(tt.name); got != tt.want {
			t.Errorf("TitleFor(%q): expected %q, got %q", tt.name, tt.want, got)
		}
	}
}

func TestParseDesc(t *testing.T) {
	title, manifest := outline.ParseDesc(
		"# manifest for the intro course\n" +
			"\n" +
			"Getting Started\n" +
			"overview\n" +
			"basics: The Basics\n")
	if title != "Getting Started" {
		t.Errorf("expected title Getting Started, got %q", title)
	}
	if len(manifest) != 2 || manifest[0] != "overview" || manifest[1] != "basics: The Basics" {
		t.Errorf("unexpected manifest %v", manifest)
	}
}

func TestParseDesc_Empty(t *testing.T) {
	title, manifest := outline.ParseDesc("# only comments\n\n")
	if title != "" {
		t.Errorf("expected empty title, got %q", title)
	}
	if manifest != nil {
		t.Errorf("expected nil manifest, got %v", manifest)
	}
}

func TestSnippetLines(t *testing.T) {
	tests := []struct {
		content string
		want    int
	}{
		{"", 0},
		{"x = 1", 1},
		{"x = 1\ny = 2", 2},
		{"x = 1\n\ny = 2", 3},
	}
	for _, tt := range tests {
		s := outline.Snippet{Content: tt.content}
		if got := s.Lines(); got != tt.want {
			t.Errorf("Lines(%q): expected %d, got %d", tt.content, tt.want, got)
		}
	}
}
