package translate

import (
	"context"
	"errors"
	"testing"
)

type fakeEngine struct {
	name    string
	results []string
	err     error
	calls   int
}

func (f *fakeEngine) Name() string { return f.name }

func (f *fakeEngine) Translate(ctx context.Context, req Request) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

type streamEngine struct {
	fakeEngine
	partials [][]string
}

func (s *streamEngine) TranslateStream(ctx context.Context, req Request, emit func([]string)) ([]string, error) {
	for _, p := range s.partials {
		emit(p)
	}
	return s.Translate(ctx, req)
}

type fakeCache struct {
	entries map[string]string
}

func newFakeCache() *fakeCache { return &fakeCache{entries: map[string]string{}} }

func (c *fakeCache) Get(key string) (string, bool) {
	v, ok := c.entries[key]
	return v, ok
}
func (c *fakeCache) Put(key, result string) { c.entries[key] = result }
func (c *fakeCache) Delete(key string)      { delete(c.entries, key) }

func startedTranslator(t *testing.T, engines ...Engine) *Translator {
	t.Helper()
	tr := New([]string{"hello"}, Target{Source: "en", Targets: []string{"fr"}})
	if err := tr.Start(engines); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	return tr
}

func TestStartBuildsOneTaskPerEngine(t *testing.T) {
	a := &fakeEngine{name: "alpha"}
	b := &fakeEngine{name: "beta"}
	tr := startedTranslator(t, a, b)

	if len(tr.Tasks) != 2 {
		t.Fatalf("%d tasks, want 2", len(tr.Tasks))
	}
	if tr.Tasks[0].Label != "alpha" || tr.Tasks[1].Label != "beta" {
		t.Fatalf("labels %q/%q", tr.Tasks[0].Label, tr.Tasks[1].Label)
	}
	if tr.State != StatePending {
		t.Fatalf("state %v, want pending", tr.State)
	}
}

func TestStartWithKeepReusesTasks(t *testing.T) {
	e := &fakeEngine{name: "alpha", results: []string{"bonjour"}}
	tr := startedTranslator(t, e)
	first := tr.Tasks[0]
	tr.Apply(Update{RunSeq: tr.Seq(), TaskID: first.ID, Results: []string{"bonjour"}})

	tr.Keep = true
	tr.Target = tr.Target.Next()
	if err := tr.Start(nil); err != nil {
		t.Fatalf("keep restart failed: %v", err)
	}
	if tr.Tasks[0] != first {
		t.Fatal("keep restart should reuse the task")
	}
	if first.State != StatePending || first.Results != nil {
		t.Fatalf("task not reset: state=%v results=%v", first.State, first.Results)
	}
}

func TestStartValidation(t *testing.T) {
	tr := New(nil, Target{Targets: []string{"fr"}})
	if err := tr.Start([]Engine{&fakeEngine{name: "x"}}); err == nil {
		t.Fatal("expected error for empty segments")
	}
	tr = New([]string{"hi"}, Target{})
	if err := tr.Start([]Engine{&fakeEngine{name: "x"}}); err == nil {
		t.Fatal("expected error for missing target")
	}
	if tr.State != StateError {
		t.Fatalf("state %v, want error", tr.State)
	}
}

func TestApplyLifecycle(t *testing.T) {
	e := &fakeEngine{name: "alpha"}
	tr := startedTranslator(t, e)
	task := tr.Tasks[0]

	if !tr.Apply(Update{RunSeq: tr.Seq(), TaskID: task.ID, Results: []string{"bon"}, Partial: true}) {
		t.Fatal("partial update should apply")
	}
	if task.State != StatePartial || tr.State != StatePartial {
		t.Fatalf("partial states task=%v run=%v", task.State, tr.State)
	}

	if !tr.Apply(Update{RunSeq: tr.Seq(), TaskID: task.ID, Results: []string{"bonjour"}}) {
		t.Fatal("final update should apply")
	}
	if task.State != StateDone || tr.State != StateDone {
		t.Fatalf("final states task=%v run=%v", task.State, tr.State)
	}

	// Terminal tasks are immutable.
	if tr.Apply(Update{RunSeq: tr.Seq(), TaskID: task.ID, Results: []string{"late"}}) {
		t.Fatal("update against a done task should be ignored")
	}
	if task.Results[0] != "bonjour" {
		t.Fatalf("done result overwritten: %q", task.Results[0])
	}
}

func TestApplyIgnoresStaleRun(t *testing.T) {
	e := &fakeEngine{name: "alpha"}
	tr := startedTranslator(t, e)
	stale := tr.Seq()
	oldID := tr.Tasks[0].ID
	if err := tr.Start([]Engine{e}); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	if tr.Apply(Update{RunSeq: stale, TaskID: oldID, Results: []string{"x"}}) {
		t.Fatal("stale update should be dropped")
	}
}

func TestOverallDoneWithErrors(t *testing.T) {
	a := &fakeEngine{name: "alpha"}
	b := &fakeEngine{name: "beta"}
	tr := startedTranslator(t, a, b)

	tr.Apply(Update{RunSeq: tr.Seq(), TaskID: tr.Tasks[0].ID, Err: errors.New("boom")})
	if tr.State == StateDone {
		t.Fatal("run should not be done with a pending task")
	}
	tr.Apply(Update{RunSeq: tr.Seq(), TaskID: tr.Tasks[1].ID, Results: []string{"ok"}})
	if tr.State != StateDone {
		t.Fatalf("all tasks terminal, state %v", tr.State)
	}
	if !tr.Failed() {
		t.Fatal("Failed() should report the errored task")
	}
}

func TestApplyRejectsResultCountMismatch(t *testing.T) {
	e := &fakeEngine{name: "alpha"}
	tr := New([]string{"one", "two"}, Target{Targets: []string{"fr"}})
	if err := tr.Start([]Engine{e}); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	tr.Apply(Update{RunSeq: tr.Seq(), TaskID: tr.Tasks[0].ID, Results: []string{"only one"}})
	if tr.Tasks[0].State != StateError {
		t.Fatalf("mismatched result count should error the task, got %v", tr.Tasks[0].State)
	}
}

func TestDispatchRunsEngineAndFillsCache(t *testing.T) {
	e := &fakeEngine{name: "alpha", results: []string{"bonjour"}}
	tr := startedTranslator(t, e)
	cache := newFakeCache()

	jobs := tr.Dispatch(cache)
	if len(jobs) != 1 {
		t.Fatalf("%d jobs, want 1", len(jobs))
	}
	u := jobs[0].Run(context.Background(), nil)
	if u.Err != nil {
		t.Fatalf("job failed: %v", u.Err)
	}
	if e.calls != 1 {
		t.Fatalf("engine called %d times, want 1", e.calls)
	}
	if len(cache.entries) != 1 {
		t.Fatalf("cache has %d entries, want 1", len(cache.entries))
	}

	// A fresh run over the same inputs is served from the cache.
	if err := tr.Start([]Engine{e}); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	u = tr.Dispatch(cache)[0].Run(context.Background(), nil)
	if u.Err != nil || len(u.Results) != 1 || u.Results[0] != "bonjour" {
		t.Fatalf("cached run returned %v / %v", u.Results, u.Err)
	}
	if e.calls != 1 {
		t.Fatalf("cache hit still called the engine (%d calls)", e.calls)
	}
}

func TestDispatchEmitsStreamingPartials(t *testing.T) {
	e := &streamEngine{
		fakeEngine: fakeEngine{name: "alpha", results: []string{"bonjour"}},
		partials:   [][]string{{"bon"}, {"bonjou"}},
	}
	tr := startedTranslator(t, e)

	var partials []Update
	u := tr.Dispatch(nil)[0].Run(context.Background(), func(p Update) {
		partials = append(partials, p)
	})
	if len(partials) != 2 {
		t.Fatalf("%d partial updates, want 2", len(partials))
	}
	for _, p := range partials {
		if !p.Partial {
			t.Fatal("emitted update not marked partial")
		}
	}
	if u.Partial || u.Results[0] != "bonjour" {
		t.Fatalf("terminal update wrong: %+v", u)
	}
}

func TestDispatchSkipsTerminalTasks(t *testing.T) {
	a := &fakeEngine{name: "alpha", results: []string{"x"}}
	b := &fakeEngine{name: "beta", results: []string{"y"}}
	tr := startedTranslator(t, a, b)
	tr.Apply(Update{RunSeq: tr.Seq(), TaskID: tr.Tasks[0].ID, Results: []string{"x"}})

	jobs := tr.Dispatch(nil)
	if len(jobs) != 1 || jobs[0].TaskID != tr.Tasks[1].ID {
		t.Fatalf("dispatch should only cover the pending task, got %d jobs", len(jobs))
	}
}

func TestTargetRotation(t *testing.T) {
	target := Target{Source: "en", Targets: []string{"fr", "de", "ja"}}
	next := target.Next()
	if next.Active() != "de" {
		t.Fatalf("active after rotation %q, want de", next.Active())
	}
	if got := next.Next().Next().Active(); got != "fr" {
		t.Fatalf("three rotations should wrap to fr, got %q", got)
	}
	single := Target{Targets: []string{"fr"}}
	if single.Next().Active() != "fr" {
		t.Fatal("single-target rotation should be a no-op")
	}
	if got := target.String(); got != "en → fr" {
		t.Fatalf("target string %q", got)
	}
}

func TestCacheKeyDistinguishesParts(t *testing.T) {
	e := &fakeEngine{name: "alpha"}
	tr := New([]string{"one", "two"}, Target{Targets: []string{"fr"}})
	if err := tr.Start([]Engine{e}); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	task := tr.Tasks[0]
	k0, k1 := tr.CacheKey(task, 0), tr.CacheKey(task, 1)
	if k0 == "" || k1 == "" || k0 == k1 {
		t.Fatalf("keys %q / %q", k0, k1)
	}
	if tr.CacheKey(task, 7) != "" {
		t.Fatal("out-of-range part should yield empty key")
	}
}
