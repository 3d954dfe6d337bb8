// Package workspace aggregates outlines across all tutorials registered in
// the configuration, so listing commands can summarize every course without
// loading them one at a time.
package workspace

import (
	"context"
	"fmt"
	"io"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/tutor/pkg/config"
	"github.com/vanderheijden86/tutor/pkg/outline"
)

// LoadResult contains the result of loading a single tutorial root.
type LoadResult struct {
	// Name is the registered tutorial name.
	Name string

	// Path is the tutorial root directory.
	Path string

	// Outline is the loaded outline root.
	Outline *outline.Section

	// Error is set if loading failed.
	Error error
}

// AggregateLoader loads outlines for every registered tutorial.
type AggregateLoader struct {
	tutorials []config.Tutorial
	builder   *outline.Builder
	logger    *log.Logger
}

// NewAggregateLoader creates an aggregate loader over the given tutorials.
// A nil builder gets replaced with a plain one; summaries don't need
// rendered descriptions.
func NewAggregateLoader(tutorials []config.Tutorial, builder *outline.Builder) *AggregateLoader {
	if builder == nil {
		builder = outline.New(outline.Options{})
	}
	return &AggregateLoader{
		tutorials: tutorials,
		builder:   builder,
		// Silence by default. Callers can opt-in via SetLogger.
		// This avoids polluting stderr (e.g., breaking robot JSON consumers
		// that capture combined stdout/stderr).
		logger: log.New(io.Discard, "", 0),
	}
}

// SetLogger sets a custom logger for error reporting.
func (l *AggregateLoader) SetLogger(logger *log.Logger) {
	l.logger = logger
}

// LoadAll loads the outline of every registered tutorial.
// Failed tutorials are logged but don't break the overall loading process.
func (l *AggregateLoader) LoadAll(ctx context.Context) ([]LoadResult, error) {
	if len(l.tutorials) == 0 {
		return nil, fmt.Errorf("no tutorials registered")
	}

	results := make([]LoadResult, len(l.tutorials))

	g, ctx := errgroup.WithContext(ctx)
	// Outline loading stats every file in a tree; keep the fd pressure low.
	g.SetLimit(8)

	for i, tut := range l.tutorials {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				results[i] = LoadResult{Name: tut.Name, Path: tut.Path, Error: ctx.Err()}
				return nil // Don't propagate context errors as fatal
			default:
			}

			root, err := l.loadOne(tut)
			results[i] = LoadResult{Name: tut.Name, Path: tut.Path, Outline: root, Error: err}
			return nil // Individual failures stay in results, not the group
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}

	for _, res := range results {
		if res.Error != nil {
			l.logger.Printf("WARNING: failed to load tutorial %q: %v", res.Name, res.Error)
		}
	}

	return results, nil
}

func (l *AggregateLoader) loadOne(tut config.Tutorial) (*outline.Section, error) {
	root, err := l.builder.Load(tut.Path)
	if err != nil {
		return nil, fmt.Errorf("loading tutorial %s: %w", tut.Name, err)
	}
	if root.Empty() {
		return nil, fmt.Errorf("loading tutorial %s: %w", tut.Name, outline.ErrNoTutorial)
	}
	return root, nil
}

// LoadAllFromConfig is a convenience wrapper over the tutorials registered
// in cfg.
func LoadAllFromConfig(ctx context.Context, cfg *config.Config) ([]LoadResult, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	return NewAggregateLoader(cfg.Tutorials, nil).LoadAll(ctx)
}

// Summary counts the sections of one loaded tutorial by kind.
type Summary struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	Title     string `json:"title"`
	Sections  int    `json:"sections"`
	Lectures  int    `json:"lectures"`
	Labs      int    `json:"labs"`
	Lessons   int    `json:"lessons"`
	Demos     int    `json:"demos"`
	Fragments int    `json:"fragments"`
}

// Summarize tallies one load result. Failed results keep zero counts.
func Summarize(res LoadResult) Summary {
	sum := Summary{Name: res.Name, Path: res.Path}
	if res.Outline == nil {
		return sum
	}
	sum.Title = res.Outline.Title
	for _, sec := range res.Outline.Flatten() {
		sum.Sections++
		switch sec.Kind {
		case outline.KindLecture:
			sum.Lectures++
		case outline.KindLab:
			sum.Labs++
		case outline.KindLesson:
			sum.Lessons++
		case outline.KindDemo:
			sum.Demos++
		}
		sum.Fragments += len(sec.Snippets)
	}
	return sum
}

// LoadSummary aggregates the outcome of a LoadAll pass.
type LoadSummary struct {
	Total       int       `json:"total"`
	Loaded      int       `json:"loaded"`
	Failed      int       `json:"failed"`
	FailedNames []string  `json:"failed_names,omitempty"`
	Summaries   []Summary `json:"summaries"`
}

// SummarizeAll tallies every load result.
func SummarizeAll(results []LoadResult) LoadSummary {
	summary := LoadSummary{Total: len(results)}

	for _, res := range results {
		if res.Error != nil {
			summary.Failed++
			summary.FailedNames = append(summary.FailedNames, res.Name)
			continue
		}
		summary.Loaded++
		summary.Summaries = append(summary.Summaries, Summarize(res))
	}

	return summary
}
