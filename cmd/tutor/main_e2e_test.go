package main

import (
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// buildTestBinary builds the current module's tutor binary for testing.
func buildTestBinary(t *testing.T) string {
	t.Helper()
	exe := filepath.Join(t.TempDir(), "tutor-testbin")
	cmd := exec.Command("go", "build", "-o", exe, ".")
	cmd.Dir = "."
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0")
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build tutor: %v, out=%s", err, string(out))
	}
	return exe
}

// writeFixture lays out a course with a lecture, a lesson, a lab and an
// auto-running demo.
func writeFixture(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "course")
	files := map[string]string{
		"0001_basics/basics.desc":                  "Basics\n",
		"0001_basics/0001_variables/variables.txt": "Introducing names.\n",
		"0001_basics/0001_variables/variables.py":  "x = 1\nprint(x)\n",
		"0002_labs/lab.py":                         "print('lab output')\n",
		"0003_demo/demo.txt":                       "Watch this.\n",
		"0003_demo/_run.py":                        "print('demo ran')\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

// sandboxEnv keeps config and progress state inside the test's temp dirs.
func sandboxEnv(t *testing.T) []string {
	t.Helper()
	home := t.TempDir()
	return append(os.Environ(),
		"XDG_CONFIG_HOME="+filepath.Join(home, "config"),
		"XDG_STATE_HOME="+filepath.Join(home, "state"),
		"XDG_DATA_HOME="+filepath.Join(home, "data"),
	)
}

func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	if err != nil {
		return -1
	}
	return 0
}

func TestRobotOutlineEmitsJSON(t *testing.T) {
	exe := buildTestBinary(t)
	dir := writeFixture(t)

	cmd := exec.Command(exe, "--robot", "--outline", dir)
	cmd.Env = sandboxEnv(t)
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("robot outline failed: %v, out=%s", err, out)
	}

	var payload struct {
		Root    string `json:"root"`
		Outline struct {
			Title    string `json:"title"`
			Kind     string `json:"kind"`
			Children []struct {
				Title string `json:"title"`
				Kind  string `json:"kind"`
			} `json:"children"`
		} `json:"outline"`
	}
	if err := json.Unmarshal(out, &payload); err != nil {
		t.Fatalf("robot outline is not valid JSON: %v\nout=%s", err, out)
	}
	if payload.Outline.Title != "Course" || payload.Outline.Kind != "Lecture" {
		t.Errorf("unexpected root node: %+v", payload.Outline)
	}
	if len(payload.Outline.Children) != 3 {
		t.Fatalf("expected 3 children, got %d", len(payload.Outline.Children))
	}
	if payload.Outline.Children[2].Kind != "Demo" {
		t.Errorf("third child should be the demo, got %+v", payload.Outline.Children[2])
	}
}

func TestOutlinePrintsTree(t *testing.T) {
	exe := buildTestBinary(t)
	dir := writeFixture(t)

	cmd := exec.Command(exe, "--outline", dir)
	cmd.Env = sandboxEnv(t)
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("outline failed: %v, out=%s", err, out)
	}
	for _, want := range []string{"Course", "Basics", "Variables", "LECT", "LESN"} {
		if !strings.Contains(string(out), want) {
			t.Errorf("outline missing %q\nout=%s", want, out)
		}
	}
}

func TestRunExecutesSection(t *testing.T) {
	exe := buildTestBinary(t)
	dir := writeFixture(t)

	cmd := exec.Command(exe, "--run", "Labs", dir)
	cmd.Env = sandboxEnv(t)
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("run failed: %v, out=%s", err, out)
	}
	if !strings.Contains(string(out), "lab output") {
		t.Errorf("run output missing the print result\nout=%s", out)
	}
}

func TestShowAutoRunsDemo(t *testing.T) {
	exe := buildTestBinary(t)
	dir := writeFixture(t)

	cmd := exec.Command(exe, "--show", "Demo", dir)
	cmd.Env = sandboxEnv(t)
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("show failed: %v, out=%s", err, out)
	}
	if !strings.Contains(string(out), "demo ran") {
		t.Errorf("demo section should auto-run its hidden code\nout=%s", out)
	}
}

func TestRunFailureExitsNonzero(t *testing.T) {
	exe := buildTestBinary(t)
	dir := writeFixture(t)
	broken := filepath.Join(dir, "0004_broken", "oops.py")
	if err := os.MkdirAll(filepath.Dir(broken), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(broken, []byte("x = 1\ny = (\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := exec.Command(exe, "--run", "Broken", dir)
	cmd.Env = sandboxEnv(t)
	out, err := cmd.CombinedOutput()
	if code := exitCode(err); code != 1 {
		t.Errorf("expected exit code 1, got %d\nout=%s", code, out)
	}
	if !strings.Contains(string(out), "Oops") {
		t.Errorf("error should name the fragment\nout=%s", out)
	}
}

func TestUsageErrors(t *testing.T) {
	exe := buildTestBinary(t)

	t.Run("two roots", func(t *testing.T) {
		cmd := exec.Command(exe, "--outline", "a", "b")
		cmd.Env = sandboxEnv(t)
		out, err := cmd.CombinedOutput()
		if code := exitCode(err); code != 2 {
			t.Errorf("expected exit code 2, got %d\nout=%s", code, out)
		}
	})

	t.Run("empty root", func(t *testing.T) {
		cmd := exec.Command(exe, "--outline", t.TempDir())
		cmd.Env = sandboxEnv(t)
		out, err := cmd.CombinedOutput()
		if code := exitCode(err); code != 1 {
			t.Errorf("expected exit code 1, got %d\nout=%s", code, out)
		}
		if !strings.Contains(string(out), "no tutorial found") {
			t.Errorf("expected the no-tutorial error\nout=%s", out)
		}
	})
}

func TestVersionFlag(t *testing.T) {
	exe := buildTestBinary(t)

	cmd := exec.Command(exe, "--version")
	cmd.Env = sandboxEnv(t)
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(string(out), "tutor v") {
		t.Errorf("version output = %q", out)
	}
}
