// Package translate holds the translation run model: segments, target
// languages, per-engine tasks and their lifecycle. Engines do their I/O off
// the event loop; every state change comes back as an Update that the host
// applies serially, so renders always observe a consistent Translator.
package translate

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/csheth/lingo/internal/surface"
)

// State describes a task (or the whole run). Only Error and Done are
// terminal; Partial means streamed content is still arriving.
type State int

const (
	StatePending State = iota
	StateError
	StatePartial
	StateDone
)

// Terminal reports whether no further transitions can happen.
func (s State) Terminal() bool { return s == StateError || s == StateDone }

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateError:
		return "error"
	case StatePartial:
		return "partial"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Task is one engine's unit of work for a run. Results holds one entry per
// segment once the engine answers. A task never mutates again after it
// reaches a terminal state.
type Task struct {
	ID      string
	Engine  Engine
	Label   string
	Results []string
	Err     error
	State   State
}

// Target is a source language plus an ordered list of target languages.
// The first target is the active one.
type Target struct {
	Source  string
	Targets []string
}

// Active returns the target language the current run translates into.
func (t Target) Active() string {
	if len(t.Targets) == 0 {
		return ""
	}
	return t.Targets[0]
}

// Next rotates the target list by one, for the "next target" command.
func (t Target) Next() Target {
	if len(t.Targets) < 2 {
		return t
	}
	rotated := make([]string, 0, len(t.Targets))
	rotated = append(rotated, t.Targets[1:]...)
	rotated = append(rotated, t.Targets[0])
	return Target{Source: t.Source, Targets: rotated}
}

func (t Target) String() string {
	src := t.Source
	if src == "" {
		src = "auto"
	}
	return fmt.Sprintf("%s → %s", src, t.Active())
}

// Bounds ties a run to the source surface it was taken from: one recorded
// region per segment, used by the in-place and decoration renders.
type Bounds struct {
	Surface *surface.Surface
	Regions []surface.Region
}

// Translator is one translation run over a fixed set of segments.
type Translator struct {
	Text      string
	Segments  []string
	Target    Target
	Tasks     []*Task
	State     State
	Bounds    *Bounds
	Keep      bool
	StartedAt time.Time

	seq int
}

// New builds a translator over the given segments.
func New(segments []string, target Target) *Translator {
	return &Translator{
		Text:     strings.Join(segments, "\n"),
		Segments: segments,
		Target:   target,
	}
}

// Start begins a new run: prior tasks are discarded and rebuilt from the
// engines, unless Keep is set, in which case the existing tasks are reset
// and reused (target cycling keeps the same engines).
func (tr *Translator) Start(engines []Engine) error {
	if len(tr.Segments) == 0 {
		tr.State = StateError
		return errors.New("translate: nothing to translate")
	}
	if tr.Target.Active() == "" {
		tr.State = StateError
		return errors.New("translate: no target language")
	}
	tr.seq++
	if tr.Keep && len(tr.Tasks) > 0 {
		for _, t := range tr.Tasks {
			t.Results = nil
			t.Err = nil
			t.State = StatePending
		}
	} else {
		if len(engines) == 0 {
			tr.State = StateError
			return errors.New("translate: no engines configured")
		}
		tr.Tasks = make([]*Task, 0, len(engines))
		for i, e := range engines {
			tr.Tasks = append(tr.Tasks, &Task{
				ID:     fmt.Sprintf("%s-%d-%d", e.Name(), tr.seq, i),
				Engine: e,
				Label:  e.Name(),
			})
		}
	}
	tr.State = StatePending
	tr.StartedAt = time.Now()
	return nil
}

// Seq identifies the current run; updates stamped with an older sequence
// are stale and must be dropped.
func (tr *Translator) Seq() int { return tr.seq }

// Task resolves a task by ID.
func (tr *Translator) Task(id string) *Task {
	for _, t := range tr.Tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// CacheKey derives the result-cache key for one part (segment) of a task.
func (tr *Translator) CacheKey(t *Task, part int) string {
	if part < 0 || part >= len(tr.Segments) {
		return ""
	}
	sum := sha1.Sum([]byte(strings.Join([]string{
		t.Engine.Name(),
		tr.Target.Source,
		tr.Target.Active(),
		tr.Segments[part],
	}, "\x00")))
	return hex.EncodeToString(sum[:])
}

// Apply folds an update into the run. It reports whether anything changed;
// stale updates and updates against already-terminal tasks are ignored.
func (tr *Translator) Apply(u Update) bool {
	if u.RunSeq != tr.seq {
		return false
	}
	t := tr.Task(u.TaskID)
	if t == nil || t.State.Terminal() {
		return false
	}
	switch {
	case u.Err != nil:
		t.Err = u.Err
		t.Results = nil
		t.State = StateError
	case u.Partial:
		t.Results = u.Results
		t.State = StatePartial
	default:
		results, err := normalizeResults(u.Results, len(tr.Segments))
		if err != nil {
			t.Err = fmt.Errorf("%s: %w", t.Label, err)
			t.State = StateError
		} else {
			t.Results = results
			t.State = StateDone
		}
	}
	tr.recompute()
	return true
}

// normalizeResults checks the one-result-per-segment protocol.
func normalizeResults(results []string, segments int) ([]string, error) {
	if len(results) == segments {
		return results, nil
	}
	return nil, fmt.Errorf("engine returned %d results for %d segments", len(results), segments)
}

func (tr *Translator) recompute() {
	allTerminal := true
	anyPartial := false
	for _, t := range tr.Tasks {
		if !t.State.Terminal() {
			allTerminal = false
		}
		if t.State == StatePartial {
			anyPartial = true
		}
	}
	switch {
	case len(tr.Tasks) == 0:
		tr.State = StatePending
	case allTerminal:
		tr.State = StateDone
	case anyPartial:
		tr.State = StatePartial
	default:
		tr.State = StatePending
	}
}

// Finished reports whether the whole run reached its terminal state.
func (tr *Translator) Finished() bool { return tr.State == StateDone }

// Failed reports whether any task ended in error.
func (tr *Translator) Failed() bool {
	for _, t := range tr.Tasks {
		if t.State == StateError {
			return true
		}
	}
	return false
}
