// Package render turns translation runs into user-visible output. One
// Render implementation exists per output shape: a persistent panel, a
// transient popup, the shared pinned panel, in-place replacement or
// decoration of the source surface, the clipboard and system
// notifications. All of them share the extraction and formatting pipeline
// and, for the panel family, the span tracker that patches results into
// place as tasks finish.
//
// Renders run on the host event loop. Nothing here blocks; engines report
// in from their own goroutines and the host calls Output again after each
// applied update.
package render

import (
	"errors"
	"fmt"
	"time"

	"github.com/csheth/lingo/internal/translate"
)

// Render is the contract every output backend implements. Init prepares
// the target before any content exists and must validate its
// preconditions; Output folds the translator's current state into the
// target and is called after every applied update, so it has to stay
// idempotent for content that is already final.
type Render interface {
	Init(tr *translate.Translator) error
	Output(tr *translate.Translator) error
}

// Headerer is implemented by renders that expose a one-line header for
// the host to display above their surface.
type Headerer interface {
	Header(tr *translate.Translator) string
}

// Keybind names one command a render responds to, for the help footer.
type Keybind struct {
	Key  string
	Help string
}

// Keybinder is implemented by renders that carry their own command set.
type Keybinder interface {
	Keybinds() []Keybind
}

// PrefixPolicy controls whether records carry their task label.
type PrefixPolicy int

const (
	// PrefixAuto shows labels only when more than one task exists.
	PrefixAuto PrefixPolicy = iota
	PrefixAlways
	PrefixNever
)

// Options is the per-render configuration shared by the variants.
type Options struct {
	Prefix PrefixPolicy
	Format Format

	// TruncateAt folds source echo lines longer than this many units
	// behind an expandable marker; zero disables folding. Measure
	// overrides the unit (default: rune count).
	TruncateAt int
	Measure    func(string) int

	// DismissAfter is how long a popup stays up. Zero selects the
	// default.
	DismissAfter time.Duration
}

func (o Options) measure(s string) int {
	if o.Measure != nil {
		return o.Measure(s)
	}
	return len([]rune(s))
}

// Highlight classes attached to rendered spans. The host maps them to
// styles; this package never styles text itself.
const (
	ClassSource  = "source"
	ClassPending = "pending"
	ClassResult  = "result"
	ClassError   = "error"
	ClassFold    = "fold"
	ClassLabel   = "label"
	ClassDimmed  = "dimmed"
)

// ErrVanished marks a surface that disappeared between Init and Output.
// Hosts treat it as a skip, not a failure.
var ErrVanished = errors.New("render target vanished")

// PreconditionError aborts Init (or a later Output) before anything is
// written: missing sink, closed or read-only surface, no recorded
// regions.
type PreconditionError struct {
	Op     string
	Reason string
	Err    error
}

func (e *PreconditionError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Op, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *PreconditionError) Unwrap() error { return e.Err }

func precondition(op, reason string, err error) error {
	return &PreconditionError{Op: op, Reason: reason, Err: err}
}

// TaskError reports a failed task to renders that cannot show partial
// output. Panel-style renders never raise it; they show errors inline.
type TaskError struct {
	Label string
	Err   error
}

func (e *TaskError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task %s failed: %v", e.Label, e.Err)
	}
	return fmt.Sprintf("task %s failed", e.Label)
}

func (e *TaskError) Unwrap() error { return e.Err }

// failedTask returns a TaskError for the first errored task, if any.
func failedTask(tr *translate.Translator) error {
	for _, t := range tr.Tasks {
		if t.State == translate.StateError {
			return &TaskError{Label: t.Label, Err: t.Err}
		}
	}
	return nil
}
