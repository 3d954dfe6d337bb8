package workspace_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/vanderheijden86/tutor/pkg/config"
	"github.com/vanderheijden86/tutor/pkg/outline"
	"github.com/vanderheijden86/tutor/pkg/testutil"
	"github.com/vanderheijden86/tutor/pkg/workspace"
)

// writeCourse creates a small tutorial tree and returns its root.
func writeCourse(t *testing.T, parent, name string) string {
	t.Helper()
	root := filepath.Join(parent, name)
	testutil.WriteFile(t, filepath.Join(root, "0001_basics", "basics.desc"), "Basics\n")
	testutil.WriteFile(t, filepath.Join(root, "0001_basics", "0001_variables", "v.desc"), "Variables\n")
	testutil.WriteFile(t, filepath.Join(root, "0001_basics", "0001_variables", "v.py"), "\"\"\"Assigning names.\"\"\"\nx = 1\n")
	testutil.WriteFile(t, filepath.Join(root, "0002_labs", "lab.py"), "print('lab')\n")
	return root
}

func TestLoadAll_LoadsEveryTutorial(t *testing.T) {
	tmp := t.TempDir()
	first := writeCourse(t, tmp, "go_course")
	second := writeCourse(t, tmp, "py_course")

	loader := workspace.NewAggregateLoader([]config.Tutorial{
		{Name: "go", Path: first},
		{Name: "py", Path: second},
	}, nil)

	results, err := loader.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}

	// Results keep registration order.
	if results[0].Name != "go" || results[1].Name != "py" {
		t.Errorf("result order = %q, %q; want go, py", results[0].Name, results[1].Name)
	}
	for _, res := range results {
		if res.Error != nil {
			t.Errorf("tutorial %q failed: %v", res.Name, res.Error)
		}
		if res.Outline == nil {
			t.Errorf("tutorial %q has no outline", res.Name)
		}
	}
}

func TestLoadAll_PartialFailure(t *testing.T) {
	tmp := t.TempDir()
	good := writeCourse(t, tmp, "go_course")

	loader := workspace.NewAggregateLoader([]config.Tutorial{
		{Name: "go", Path: good},
		{Name: "missing", Path: filepath.Join(tmp, "nope")},
	}, nil)

	results, err := loader.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll() should not fail on a partial failure: %v", err)
	}

	if results[0].Error != nil {
		t.Errorf("good tutorial failed: %v", results[0].Error)
	}
	if results[1].Error == nil {
		t.Error("missing tutorial did not report an error")
	}

	summary := workspace.SummarizeAll(results)
	if summary.Loaded != 1 || summary.Failed != 1 {
		t.Errorf("summary loaded/failed = %d/%d, want 1/1", summary.Loaded, summary.Failed)
	}
	if len(summary.FailedNames) != 1 || summary.FailedNames[0] != "missing" {
		t.Errorf("FailedNames = %v, want [missing]", summary.FailedNames)
	}
}

func TestLoadAll_EmptyTutorialIsError(t *testing.T) {
	loader := workspace.NewAggregateLoader([]config.Tutorial{
		{Name: "empty", Path: t.TempDir()},
	}, nil)

	results, err := loader.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if !errors.Is(results[0].Error, outline.ErrNoTutorial) {
		t.Errorf("error = %v, want ErrNoTutorial", results[0].Error)
	}
}

func TestLoadAll_NoTutorials(t *testing.T) {
	loader := workspace.NewAggregateLoader(nil, nil)
	if _, err := loader.LoadAll(context.Background()); err == nil {
		t.Error("LoadAll() with no tutorials did not fail")
	}
}

func TestLoadAll_ContextCanceled(t *testing.T) {
	tmp := t.TempDir()
	root := writeCourse(t, tmp, "go_course")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	loader := workspace.NewAggregateLoader([]config.Tutorial{{Name: "go", Path: root}}, nil)
	results, err := loader.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if !errors.Is(results[0].Error, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", results[0].Error)
	}
}

func TestSummarize_CountsKinds(t *testing.T) {
	tmp := t.TempDir()
	root := writeCourse(t, tmp, "go_course")

	loader := workspace.NewAggregateLoader([]config.Tutorial{{Name: "go", Path: root}}, nil)
	results, err := loader.LoadAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	sum := workspace.Summarize(results[0])
	if sum.Title != "Go Course" {
		t.Errorf("Title = %q, want %q", sum.Title, "Go Course")
	}
	if sum.Sections != 4 {
		t.Errorf("Sections = %d, want 4", sum.Sections)
	}
	if sum.Lectures != 2 || sum.Lessons != 1 || sum.Labs != 1 || sum.Demos != 0 {
		t.Errorf("kind counts = %d/%d/%d/%d (lecture/lesson/lab/demo), want 2/1/1/0",
			sum.Lectures, sum.Lessons, sum.Labs, sum.Demos)
	}
	if sum.Fragments != 2 {
		t.Errorf("Fragments = %d, want 2", sum.Fragments)
	}
}

func TestSummarize_FailedResult(t *testing.T) {
	sum := workspace.Summarize(workspace.LoadResult{Name: "bad", Error: errors.New("boom")})
	if sum.Sections != 0 || sum.Title != "" {
		t.Errorf("failed result summary = %+v, want zero counts", sum)
	}
}

func TestLoadAllFromConfig(t *testing.T) {
	tmp := t.TempDir()
	root := writeCourse(t, tmp, "go_course")

	cfg := config.DefaultConfig()
	cfg.Tutorials = []config.Tutorial{{Name: "go", Path: root}}

	results, err := workspace.LoadAllFromConfig(context.Background(), &cfg)
	if err != nil {
		t.Fatalf("LoadAllFromConfig() error = %v", err)
	}
	if len(results) != 1 || results[0].Error != nil {
		t.Fatalf("results = %+v, want one clean result", results)
	}

	if _, err := workspace.LoadAllFromConfig(context.Background(), nil); err == nil {
		t.Error("nil config did not fail")
	}
}
