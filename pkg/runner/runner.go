// Package runner executes the code fragments of a tutorial section with
// the Starlark interpreter, keeping each section's namespace alive across
// runs and mapping failure positions back to the originating fragment.
package runner

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.starlark.net/resolve"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/vanderheijden86/tutor/pkg/debug"
	"github.com/vanderheijden86/tutor/pkg/outline"
)

// fileOptions is the dialect tutorial code is written in: mutable globals,
// while loops and control flow at top level, and recursion.
var fileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
	Recursion:       true,
}

// Well-known bindings cleared before every run and reported afterwards.
const (
	demoBinding  = "demo"
	popupBinding = "popup"
)

// Error describes a failed run. Fragment, Path and Line are set when a
// syntax-level failure could be attributed to a specific fragment.
type Error struct {
	// Message is the display message. For attributed syntax errors it
	// follows the form "Msg in column C of line L" with L local to the
	// fragment.
	Message string

	// Fragment is the title of the fragment in error, empty when the
	// failure could not be attributed.
	Fragment string

	// Path is the source file of the fragment in error.
	Path string

	// Line is the 1-based line within the fragment, 0 when unknown.
	Line int

	// Col is the 1-based column, 0 when unknown.
	Col int

	// Runtime marks execution failures as opposed to syntax errors.
	Runtime bool
}

func (e *Error) Error() string { return e.Message }

// Result is the outcome of running a section's code.
type Result struct {
	// Output is everything printed during the run, followed by the
	// backtrace when the run failed at execution time.
	Output string

	// Demo is the value bound to "demo" after a successful run, nil when
	// the code defined none.
	Demo starlark.Value

	// Popup is the value bound to "popup" after a successful run.
	Popup starlark.Value

	// Err is set when the run failed. A failed run never carries Demo or
	// Popup values.
	Err *Error
}

// Session owns the per-section execution namespaces. Namespaces persist
// across runs, so a later run sees the names an earlier one defined, until
// Reset or a tree reload discards them. A Session is not safe for
// concurrent use; runs are strictly sequential.
type Session struct {
	contexts map[*outline.Section]starlark.StringDict
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{contexts: make(map[*outline.Section]starlark.StringDict)}
}

// Context returns the section's current namespace. The result is nil when
// the section has never run.
func (s *Session) Context(sec *outline.Section) starlark.StringDict {
	return s.contexts[sec]
}

// Reset discards the section's namespace, so its next run starts clean.
func (s *Session) Reset(sec *outline.Section) {
	delete(s.contexts, sec)
}

// ResetAll discards every namespace. Used when the outline is reloaded and
// the old sections are discarded.
func (s *Session) ResetAll() {
	s.contexts = make(map[*outline.Section]starlark.StringDict)
}

// Run concatenates the section's fragments, executes them against the
// section's persistent namespace, and captures all print output. Failures
// terminate the run but never the caller: syntax errors are mapped back to
// fragment and local line, execution errors append their backtrace to the
// output log.
func (s *Session) Run(sec *outline.Section) Result {
	if !sec.Kind.Runnable() || len(sec.Snippets) == 0 {
		return Result{}
	}

	ctx := s.contexts[sec]
	if ctx == nil {
		ctx = make(starlark.StringDict)
	}
	delete(ctx, demoBinding)
	delete(ctx, popupBinding)

	module := Concat(sec.Snippets)
	debug.Log("runner: %s: %d fragments, %d bytes", sec.Title, len(sec.Snippets), len(module))

	var out strings.Builder
	thread := &starlark.Thread{
		Name: sec.Title,
		Print: func(_ *starlark.Thread, msg string) {
			out.WriteString(msg)
			out.WriteByte('\n')
		},
	}

	globals, err := starlark.ExecFileOptions(fileOptions, thread, sec.Title, module, ctx)
	if err != nil {
		res := Result{Err: s.describe(sec, err, &out)}
		res.Output = out.String()
		return res
	}

	for name, value := range globals {
		ctx[name] = value
	}
	s.contexts[sec] = ctx

	return Result{
		Output: out.String(),
		Demo:   ctx[demoBinding],
		Popup:  ctx[popupBinding],
	}
}

// describe classifies a failed run. Parse and resolve errors carry a
// position in the concatenated unit; the position is translated back to
// the owning fragment. Execution errors write their backtrace to the
// output log and stay unattributed.
func (s *Session) describe(sec *outline.Section, err error, out *strings.Builder) *Error {
	var evalErr *starlark.EvalError
	if errors.As(err, &evalErr) {
		out.WriteString(evalErr.Backtrace())
		return &Error{Message: evalErr.Msg, Runtime: true}
	}

	var resolveErrs resolve.ErrorList
	if errors.As(err, &resolveErrs) && len(resolveErrs) > 0 {
		first := resolveErrs[0]
		return s.attribute(sec, first.Msg, first.Pos)
	}

	var syntaxErr syntax.Error
	if errors.As(err, &syntaxErr) {
		return s.attribute(sec, syntaxErr.Msg, syntaxErr.Pos)
	}

	return &Error{Message: capitalize(err.Error())}
}

// attribute maps a position in the concatenated unit to its fragment.
// Positions without a line number produce a message-only error.
func (s *Session) attribute(sec *outline.Section, msg string, pos syntax.Position) *Error {
	line := int(pos.Line)
	if line <= 0 {
		return &Error{Message: capitalize(msg)}
	}
	idx, local := Locate(sec.Snippets, line)
	sn := &sec.Snippets[idx]
	return &Error{
		Message:  fmt.Sprintf("%s in column %d of line %d", capitalize(msg), pos.Col, local),
		Fragment: sn.Title,
		Path:     sn.Path,
		Line:     local,
		Col:      int(pos.Col),
	}
}

// Concat joins the section's fragments into one executable unit and
// assigns each fragment's start line. Fragment i+1 begins two lines below
// the last line of fragment i; an empty fragment contributes no lines of
// its own.
func Concat(snippets []outline.Snippet) string {
	var sb strings.Builder
	line := 1
	for i := range snippets {
		sn := &snippets[i]
		sn.StartLine = line
		sb.WriteString(sn.Content)
		line += sn.Lines() + 2
		if i < len(snippets)-1 {
			if sn.Content == "" {
				sb.WriteString("\n\n")
			} else {
				sb.WriteString("\n\n\n")
			}
		}
	}
	return sb.String()
}

// Locate returns the index of the fragment containing the given line of
// the concatenated unit, and the 1-based line local to that fragment. The
// owning fragment is the last one whose start line is not past the given
// line; a line inside the separator belongs to the preceding fragment.
func Locate(snippets []outline.Snippet, line int) (idx, local int) {
	for i := range snippets {
		if snippets[i].StartLine > line {
			break
		}
		idx = i
	}
	return idx, line - (snippets[idx].StartLine - 1)
}

// capitalize upper-cases the first rune only, leaving identifiers inside
// the message untouched.
func capitalize(msg string) string {
	r, size := utf8.DecodeRuneInString(msg)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return msg
	}
	return string(unicode.ToUpper(r)) + msg[size:]
}
