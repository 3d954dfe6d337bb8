package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/atotto/clipboard"
	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/tutor/internal/progress"
	"github.com/vanderheijden86/tutor/pkg/config"
	"github.com/vanderheijden86/tutor/pkg/export"
	"github.com/vanderheijden86/tutor/pkg/outline"
	"github.com/vanderheijden86/tutor/pkg/render"
	"github.com/vanderheijden86/tutor/pkg/runner"
	"github.com/vanderheijden86/tutor/pkg/version"
	"github.com/vanderheijden86/tutor/pkg/view"
	"github.com/vanderheijden86/tutor/pkg/watcher"
	"github.com/vanderheijden86/tutor/pkg/workspace"
)

func main() {
	outlineFlag := flag.Bool("outline", false, "Print the outline tree and exit")
	showPath := flag.String("show", "", "Show the section at a slash-separated title path (\"/\" is the root)")
	runPath := flag.String("run", "", "Run the section at a slash-separated title path")
	watchFlag := flag.Bool("watch", false, "Watch the tutorial and reprint the outline on changes")
	exportMD := flag.String("export-md", "", "Write a markdown course report to FILE")
	exportJSON := flag.String("export-json", "", "Write the outline as JSON to FILE")
	snapshotFlag := flag.String("snapshot", "", "Write an SVG or PNG outline snapshot to FILE")
	listFlag := flag.Bool("list", false, "List registered tutorials and exit")
	resumeFlag := flag.Bool("resume", false, "Show the last visited section")
	robotFlag := flag.Bool("robot", false, "Machine-readable JSON output (with --outline or --list)")
	noColor := flag.Bool("no-color", false, "Disable styled output")
	copyFlag := flag.Bool("copy", false, "Copy the selected section's code to the clipboard")
	versionFlag := flag.Bool("version", false, "Show version")
	help := flag.Bool("help", false, "Show help")
	flag.Parse()

	if *help {
		fmt.Println("Usage: tutor [flags] [root_dir]")
		fmt.Println("\nA terminal viewer and runner for directory-based tutorials.")
		fmt.Println("The root may be a directory, a registered tutorial name, or a")
		fmt.Println("favorite number (1-9). It defaults to the current directory.")
		fmt.Println()
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Printf("tutor %s\n", version.Version)
		os.Exit(0)
	}

	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		// Non-fatal: continue with defaults.
		fmt.Fprintf(os.Stderr, "warning: %v\n", cfgErr)
		cfg = config.DefaultConfig()
	}

	if *listFlag {
		os.Exit(listTutorials(cfg, *robotFlag))
	}

	if flag.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "Error: at most one tutorial root may be given")
		flag.Usage()
		os.Exit(2)
	}

	rootDir, err := resolveRoot(cfg, flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	builder := outline.New(outline.Options{
		Markdown: render.NewMarkdown(),
		WarningHandler: func(msg string) {
			fmt.Fprintf(os.Stderr, "warning: %s\n", msg)
		},
	})

	root, err := builder.Load(rootDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if root.Empty() {
		fmt.Fprintf(os.Stderr, "Error: %v in %s\n", outline.ErrNoTutorial, root.Path)
		fmt.Fprintln(os.Stderr, "A tutorial needs numbered subdirectories (0001_intro) or lesson files.")
		flag.Usage()
		os.Exit(1)
	}

	store, err := progress.OpenDefault()
	if err != nil {
		// The tutor works without memory; say so once and move on.
		fmt.Fprintf(os.Stderr, "warning: progress tracking disabled: %v\n", err)
		store = nil
	} else {
		defer store.Close()
	}

	var v *view.View
	if *robotFlag {
		v = view.NewPlain(80)
	} else {
		v = view.New(view.Options{
			Width:   cfg.UI.WrapWidth,
			NoColor: *noColor || cfg.UI.NoColor,
		})
	}
	v.SetVisited(visitedMarker(store, root.Path))

	exported := false
	if *exportMD != "" {
		if err := export.SaveMarkdownToFile(root, "", *exportMD); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", *exportMD)
		exported = true
	}
	if *exportJSON != "" {
		if err := export.SaveJSONToFile(root, *exportJSON); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", *exportJSON)
		exported = true
	}
	if *snapshotFlag != "" {
		opts := export.SnapshotOptions{Path: *snapshotFlag, Format: cfg.Export.SnapshotFormat}
		// An explicit extension on the file beats the configured default.
		if e := strings.ToLower(*snapshotFlag); strings.HasSuffix(e, ".svg") || strings.HasSuffix(e, ".png") {
			opts.Format = ""
		}
		if err := export.SaveSnapshot(root, opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", *snapshotFlag)
		exported = true
	}

	switch {
	case *outlineFlag:
		if *robotFlag {
			data, err := export.GenerateJSON(root)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(string(data))
			return
		}
		fmt.Print(v.Tree(root))

	case *showPath != "":
		sec := root.Find(*showPath)
		if sec == nil {
			fmt.Fprintf(os.Stderr, "Error: no section at %q\n", *showPath)
			os.Exit(1)
		}
		showSection(v, cfg, store, root, sec, *copyFlag)

	case *runPath != "":
		sec := root.Find(*runPath)
		if sec == nil {
			fmt.Fprintf(os.Stderr, "Error: no section at %q\n", *runPath)
			os.Exit(1)
		}
		if !sec.Kind.Runnable() {
			fmt.Fprintf(os.Stderr, "Error: %s has no runnable code\n", sec.Label())
			os.Exit(1)
		}
		if *copyFlag {
			copyCode(sec)
		}
		res := runner.NewSession().Run(sec)
		fmt.Print(v.RunResult(res))
		if store != nil {
			if err := store.RecordRun(root.Path, sec, res.Err != nil); err != nil {
				fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			}
		}
		if res.Err != nil {
			os.Exit(1)
		}

	case *resumeFlag:
		if store == nil {
			fmt.Fprintln(os.Stderr, "Error: progress tracking is disabled")
			os.Exit(1)
		}
		key, ok, err := store.LastVisited(root.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if !ok {
			fmt.Println("No saved position for this tutorial yet.")
			return
		}
		sec := root.Find(key)
		if sec == nil {
			fmt.Fprintf(os.Stderr, "Error: saved section %q no longer exists\n", key)
			os.Exit(1)
		}
		showSection(v, cfg, store, root, sec, *copyFlag)

	case *watchFlag:
		if err := watchLoop(builder, v, root); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	default:
		if exported {
			return
		}
		fmt.Print(v.Tree(root))
		fmt.Println("\nUse --show PATH to open a section, --run PATH to execute one.")
	}
}

// resolveRoot turns the positional argument into a tutorial directory: an
// existing directory wins, then a favorite number, then a registered name.
// An empty argument means the current directory.
func resolveRoot(cfg config.Config, arg string) (string, error) {
	if arg == "" {
		dir, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolving working directory: %w", err)
		}
		return dir, nil
	}
	if info, err := os.Stat(arg); err == nil && info.IsDir() {
		return arg, nil
	}
	if n, err := strconv.Atoi(arg); err == nil && n >= 1 && n <= 9 {
		if t := cfg.FavoriteTutorial(n); t != nil {
			return t.ResolvedPath(), nil
		}
		return "", fmt.Errorf("no favorite tutorial on key %d", n)
	}
	if t := cfg.FindTutorial(arg); t != nil {
		return t.ResolvedPath(), nil
	}
	return "", fmt.Errorf("no directory or registered tutorial named %q", arg)
}

// showSection prints a section page, auto-running demos, recording the
// visit and optionally copying the code to the clipboard.
func showSection(v *view.View, cfg config.Config, store *progress.Store, root, sec *outline.Section, copyRequested bool) {
	fmt.Print(v.Page(sec))
	if copyRequested {
		copyCode(sec)
	}
	if store != nil {
		if err := store.Visit(root.Path, sec); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
	}
	if sec.Kind.AutoRun() && cfg.AutoRunDemos() {
		res := runner.NewSession().Run(sec)
		fmt.Print(v.RunResult(res))
		if store != nil {
			if err := store.RecordRun(root.Path, sec, res.Err != nil); err != nil {
				fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			}
		}
	}
}

// copyCode puts the section's visible fragments on the clipboard.
// Clipboard access fails on headless systems; that is never fatal.
func copyCode(sec *outline.Section) {
	snippets := sec.VisibleSnippets()
	if len(snippets) == 0 {
		fmt.Fprintln(os.Stderr, "warning: nothing to copy")
		return
	}
	parts := make([]string, len(snippets))
	lines := 0
	for i, sn := range snippets {
		parts[i] = sn.Content
		lines += sn.Lines()
	}
	if err := clipboard.WriteAll(strings.Join(parts, "\n\n")); err != nil {
		fmt.Fprintf(os.Stderr, "warning: clipboard unavailable: %v\n", err)
		return
	}
	fmt.Printf("Copied %d lines to the clipboard.\n", lines)
}

// visitedMarker builds the outline's check-mark predicate from the
// progress store. A nil or empty store disables the markers.
func visitedMarker(store *progress.Store, rootPath string) func(*outline.Section) bool {
	if store == nil {
		return nil
	}
	seen, err := store.Visited(rootPath)
	if err != nil || len(seen) == 0 {
		return nil
	}
	return func(sec *outline.Section) bool {
		return seen[progress.Key(sec)]
	}
}

// listTutorials prints every registered tutorial with its kind counts.
func listTutorials(cfg config.Config, robot bool) int {
	results, err := workspace.LoadAllFromConfig(context.Background(), &cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintf(os.Stderr, "Register tutorials in %s\n", config.ConfigPath())
		return 1
	}
	summary := workspace.SummarizeAll(results)

	if robot {
		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Println(string(data))
		return 0
	}

	for _, res := range results {
		if res.Error != nil {
			fmt.Printf("%-20s failed: %v\n", res.Name, res.Error)
			continue
		}
		sum := workspace.Summarize(res)
		fmt.Printf("%-20s %-24s %3d sections  %3d fragments\n",
			sum.Name, sum.Title, sum.Sections, sum.Fragments)
	}
	fmt.Printf("\n%d of %d tutorials loaded\n", summary.Loaded, summary.Total)
	if summary.Failed > 0 {
		return 1
	}
	return 0
}

// watchLoop reprints the outline whenever the tree changes on disk. Each
// change triggers a full rebuild; sections are never patched in place.
func watchLoop(builder *outline.Builder, v *view.View, root *outline.Section) error {
	w, err := watcher.NewWatcher(root.Path,
		watcher.WithOnError(func(err error) {
			fmt.Fprintf(os.Stderr, "warning: watch: %v\n", err)
		}))
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	fmt.Print(v.Tree(root))
	if w.IsPolling() {
		fmt.Printf("\nWatching %s (polling). Ctrl-C to stop.\n", root.Path)
	} else {
		fmt.Printf("\nWatching %s. Ctrl-C to stop.\n", root.Path)
	}

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	for {
		select {
		case <-sigCh:
			fmt.Println()
			return nil
		case <-w.Changed():
			fresh, err := builder.Load(root.Path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "warning: reload failed: %v\n", err)
				continue
			}
			root = fresh
			fmt.Printf("\nReloaded at %s\n", time.Now().Format("15:04:05"))
			fmt.Print(v.Tree(root))
		}
	}
}
