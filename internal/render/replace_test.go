package render

import (
	"errors"
	"testing"

	"github.com/csheth/lingo/internal/surface"
	"github.com/csheth/lingo/internal/translate"
)

// boundRun starts a run over one segment of doc text and records the
// region covering [start, end) as the write target.
func boundRun(t *testing.T, doc string, start, end int, engines ...translate.Engine) (*translate.Translator, *surface.Surface) {
	t.Helper()
	surf := surface.New("doc")
	if err := surf.Reset(doc); err != nil {
		t.Fatalf("reset: %v", err)
	}
	tr := newRun(t, []string{surf.Slice(start, end)}, engines...)
	tr.Bounds = &translate.Bounds{
		Surface: surf,
		Regions: []surface.Region{surf.Region(start, end)},
	}
	return tr, surf
}

func TestReplaceRewritesRegion(t *testing.T) {
	tr, surf := boundRun(t, "hello world", 0, 5)
	r := &ReplaceRender{Mode: ModeReplace}
	if err := r.Init(tr); err != nil {
		t.Fatalf("init: %v", err)
	}

	finishTask(t, tr, 0, "bonjour")
	if err := r.Output(tr); err != nil {
		t.Fatalf("output: %v", err)
	}
	if got, want := surf.Text(), "bonjour world"; got != want {
		t.Fatalf("text = %q, want %q", got, want)
	}
	if got := surf.Point(); got != len([]rune("bonjour")) {
		t.Fatalf("point = %d, want end of replacement", got)
	}
	if !surf.Modified() {
		t.Fatal("a real rewrite must mark the surface modified")
	}
}

func TestReplaceAbortsWhollyOnFailedTask(t *testing.T) {
	tr, surf := boundRun(t, "hello world", 0, 5,
		stubEngine{name: "alpha"}, stubEngine{name: "beta"})
	r := &ReplaceRender{Mode: ModeReplace}
	if err := r.Init(tr); err != nil {
		t.Fatalf("init: %v", err)
	}

	finishTask(t, tr, 0, "bonjour")
	failTask(t, tr, 1, errors.New("boom"))

	err := r.Output(tr)
	var taskErr *TaskError
	if !errors.As(err, &taskErr) || taskErr.Label != "beta" {
		t.Fatalf("output = %v, want TaskError for beta", err)
	}
	if got := surf.Text(); got != "hello world" {
		t.Fatalf("failed run must not touch the source, got %q", got)
	}
	if surf.Modified() {
		t.Fatal("failed run must not mark the surface modified")
	}
}

func TestReplaceWaitsForWholeRun(t *testing.T) {
	tr, surf := boundRun(t, "hello world", 0, 5,
		stubEngine{name: "alpha"}, stubEngine{name: "beta"})
	r := &ReplaceRender{Mode: ModeReplace}
	if err := r.Init(tr); err != nil {
		t.Fatalf("init: %v", err)
	}

	finishTask(t, tr, 0, "bonjour")
	if err := r.Output(tr); err != nil {
		t.Fatalf("output: %v", err)
	}
	if got := surf.Text(); got != "hello world" {
		t.Fatalf("half-finished run already edited the source: %q", got)
	}
}

func TestReplaceKeepsModifiedClearOnNetNoop(t *testing.T) {
	tr, surf := boundRun(t, "hello world", 0, 5)
	r := &ReplaceRender{Mode: ModeReplace}
	if err := r.Init(tr); err != nil {
		t.Fatalf("init: %v", err)
	}

	finishTask(t, tr, 0, "hello")
	if err := r.Output(tr); err != nil {
		t.Fatalf("output: %v", err)
	}
	if got := surf.Text(); got != "hello world" {
		t.Fatalf("text = %q", got)
	}
	if surf.Modified() {
		t.Fatal("byte-identical rewrite must leave the modified flag clear")
	}
}

func TestAppendInsertsAfterRegion(t *testing.T) {
	tr, surf := boundRun(t, "hello world", 0, 5)
	r := &ReplaceRender{Mode: ModeAppend, RestyleSource: true}
	if err := r.Init(tr); err != nil {
		t.Fatalf("init: %v", err)
	}

	finishTask(t, tr, 0, "bonjour")
	if err := r.Output(tr); err != nil {
		t.Fatalf("output: %v", err)
	}
	if got, want := surf.Text(), "hello bonjour world"; got != want {
		t.Fatalf("text = %q, want %q", got, want)
	}

	dimmed := false
	for _, h := range surf.Highlights() {
		if h.Class == ClassDimmed && h.Region().Text() == "hello" {
			dimmed = true
		}
	}
	if !dimmed {
		t.Fatal("source region should be dimmed after append")
	}
}

func TestAppendBreaksLineAfterPunctuation(t *testing.T) {
	tr, surf := boundRun(t, "hello.", 0, 6)
	r := &ReplaceRender{Mode: ModeAppend}
	if err := r.Init(tr); err != nil {
		t.Fatalf("init: %v", err)
	}

	finishTask(t, tr, 0, "bonjour.")
	if err := r.Output(tr); err != nil {
		t.Fatalf("output: %v", err)
	}
	if got, want := surf.Text(), "hello.\nbonjour."; got != want {
		t.Fatalf("text = %q, want %q", got, want)
	}
}

func TestInPlacePreconditions(t *testing.T) {
	engines := []translate.Engine{stubEngine{name: "alpha"}}

	t.Run("no bounds", func(t *testing.T) {
		tr := newRun(t, []string{"hello"}, engines...)
		err := (&ReplaceRender{}).Init(tr)
		var pre *PreconditionError
		if !errors.As(err, &pre) {
			t.Fatalf("init = %v, want precondition error", err)
		}
	})

	t.Run("closed surface", func(t *testing.T) {
		tr, surf := boundRun(t, "hello", 0, 5, engines...)
		surf.Close()
		if err := (&ReplaceRender{}).Init(tr); !errors.Is(err, surface.ErrClosed) {
			t.Fatalf("init = %v, want ErrClosed", err)
		}
	})

	t.Run("read-only surface", func(t *testing.T) {
		tr, surf := boundRun(t, "hello", 0, 5, engines...)
		surf.SetReadOnly(true)
		if err := (&ReplaceRender{}).Init(tr); !errors.Is(err, surface.ErrReadOnly) {
			t.Fatalf("init = %v, want ErrReadOnly", err)
		}
	})

	t.Run("no regions", func(t *testing.T) {
		tr, surf := boundRun(t, "hello", 0, 5, engines...)
		tr.Bounds = &translate.Bounds{Surface: surf}
		err := (&ReplaceRender{}).Init(tr)
		var pre *PreconditionError
		if !errors.As(err, &pre) {
			t.Fatalf("init = %v, want precondition error", err)
		}
	})

	t.Run("vanished before output", func(t *testing.T) {
		tr, surf := boundRun(t, "hello", 0, 5, engines...)
		r := &ReplaceRender{}
		if err := r.Init(tr); err != nil {
			t.Fatalf("init: %v", err)
		}
		surf.Close()
		finishTask(t, tr, 0, "bonjour")
		if err := r.Output(tr); !errors.Is(err, ErrVanished) {
			t.Fatalf("output = %v, want ErrVanished", err)
		}
	})
}

func TestDecorateAttachesWithoutEditing(t *testing.T) {
	tr, surf := boundRun(t, "hello world", 0, 5)
	r := &DecorationRender{Mode: surface.DecorationAfter}
	if err := r.Init(tr); err != nil {
		t.Fatalf("init: %v", err)
	}

	finishTask(t, tr, 0, "bonjour")
	if err := r.Output(tr); err != nil {
		t.Fatalf("output: %v", err)
	}
	if got := surf.Text(); got != "hello world" {
		t.Fatalf("decoration render edited the text: %q", got)
	}

	decs := surf.DecorationsIn(0, 5)
	if len(decs) != 1 {
		t.Fatalf("got %d decorations, want 1", len(decs))
	}
	d := decs[0]
	if d.Mode != surface.DecorationAfter || d.Content != "bonjour" || d.Raw != "bonjour" {
		t.Fatalf("decoration = %+v", d.DecorationSpec)
	}
	if !d.EvictOnEdit {
		t.Fatal("decorations must evict on user edits")
	}

	// Re-rendering replaces, never stacks.
	if err := r.Output(tr); err != nil {
		t.Fatalf("second output: %v", err)
	}
	if n := len(surf.DecorationsIn(0, 5)); n != 1 {
		t.Fatalf("got %d decorations after re-render, want 1", n)
	}

	// A user edit inside the region evicts the annotation.
	if err := surf.Insert(2, "x"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if n := len(surf.DecorationsIn(0, 6)); n != 0 {
		t.Fatalf("decoration survived an edit, got %d", n)
	}
}

func TestDecorateAbortsOnFailedTask(t *testing.T) {
	tr, surf := boundRun(t, "hello world", 0, 5,
		stubEngine{name: "alpha"}, stubEngine{name: "beta"})
	r := &DecorationRender{Mode: surface.DecorationReplace}
	if err := r.Init(tr); err != nil {
		t.Fatalf("init: %v", err)
	}

	finishTask(t, tr, 0, "bonjour")
	failTask(t, tr, 1, errors.New("boom"))

	err := r.Output(tr)
	var taskErr *TaskError
	if !errors.As(err, &taskErr) {
		t.Fatalf("output = %v, want TaskError", err)
	}
	if n := len(surf.DecorationsIn(0, 5)); n != 0 {
		t.Fatalf("failed run attached %d decorations", n)
	}
}

func TestDecorateWorksOnReadOnlySurface(t *testing.T) {
	tr, surf := boundRun(t, "hello world", 0, 5)
	surf.SetReadOnly(true)
	r := &DecorationRender{Mode: surface.DecorationAfter}
	if err := r.Init(tr); err != nil {
		t.Fatalf("init on read-only surface: %v", err)
	}
	finishTask(t, tr, 0, "bonjour")
	if err := r.Output(tr); err != nil {
		t.Fatalf("output: %v", err)
	}
	if n := len(surf.DecorationsIn(0, 5)); n != 1 {
		t.Fatalf("got %d decorations, want 1", n)
	}
}
