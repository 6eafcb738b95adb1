package render

import (
	"fmt"
	"strings"

	"github.com/csheth/lingo/internal/translate"
)

// Notifier delivers a finished run as a system notification.
type Notifier interface {
	Notify(title, body string) error
}

const opNotify = "notification render"

// NotifyRender posts the combined results as a notification once the run
// finishes cleanly. Failed runs send nothing; the error is reported to the
// caller instead of the notification daemon.
type NotifyRender struct {
	Notifier Notifier
	Opts     Options
}

func (r *NotifyRender) Init(tr *translate.Translator) error {
	if r.Notifier == nil {
		return precondition(opNotify, "no notifier available", nil)
	}
	return nil
}

func (r *NotifyRender) Output(tr *translate.Translator) error {
	if tr.State != translate.StateDone {
		return nil
	}
	if err := failedTask(tr); err != nil {
		return err
	}
	records := Records(tr, r.Opts)
	blocks := make([]string, 0, len(tr.Segments))
	for i := range tr.Segments {
		lines := make([]string, 0, len(tr.Tasks))
		for _, rec := range records {
			if rec.Segment != i {
				continue
			}
			line := rec.Result
			if rec.Prefix != "" {
				line = rec.Prefix + " " + line
			}
			lines = append(lines, line)
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	title := tr.Target.String()
	if err := r.Notifier.Notify(title, strings.Join(blocks, "\n\n")); err != nil {
		return fmt.Errorf("%s: %w", opNotify, err)
	}
	return nil
}
