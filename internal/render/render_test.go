package render

import (
	"context"
	"testing"

	"github.com/csheth/lingo/internal/translate"
)

type stubEngine struct{ name string }

func (e stubEngine) Name() string { return e.name }

func (e stubEngine) Translate(ctx context.Context, req translate.Request) ([]string, error) {
	return req.Segments, nil
}

// newRun starts a translator over the given segments. Without explicit
// engines a single "alpha" task is used.
func newRun(t *testing.T, segments []string, engines ...translate.Engine) *translate.Translator {
	t.Helper()
	if len(engines) == 0 {
		engines = []translate.Engine{stubEngine{name: "alpha"}}
	}
	tr := translate.New(segments, translate.Target{Source: "en", Targets: []string{"fr"}})
	if err := tr.Start(engines); err != nil {
		t.Fatalf("start: %v", err)
	}
	return tr
}

func finishTask(t *testing.T, tr *translate.Translator, idx int, results ...string) {
	t.Helper()
	u := translate.Update{RunSeq: tr.Seq(), TaskID: tr.Tasks[idx].ID, Results: results}
	if !tr.Apply(u) {
		t.Fatalf("update for task %d was not applied", idx)
	}
}

func failTask(t *testing.T, tr *translate.Translator, idx int, err error) {
	t.Helper()
	u := translate.Update{RunSeq: tr.Seq(), TaskID: tr.Tasks[idx].ID, Err: err}
	if !tr.Apply(u) {
		t.Fatalf("error update for task %d was not applied", idx)
	}
}

type memClipboard struct {
	text   string
	writes int
}

func (c *memClipboard) Write(text string) error {
	c.text = text
	c.writes++
	return nil
}

type memNotifier struct {
	title string
	body  string
	sent  int
}

func (n *memNotifier) Notify(title, body string) error {
	n.title = title
	n.body = body
	n.sent++
	return nil
}
