package render

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/csheth/lingo/internal/translate"
)

// Clipboard is the sink ClipboardRender writes to.
type Clipboard interface {
	Write(text string) error
}

// SystemClipboard writes to the OS clipboard.
type SystemClipboard struct{}

func (SystemClipboard) Write(text string) error { return clipboard.WriteAll(text) }

const opClipboard = "clipboard render"

// ClipboardRender copies the combined results once the run finishes. A
// failed task clears the clipboard instead, so a stale copy from an
// earlier run can never pass for this run's output.
type ClipboardRender struct {
	Clipboard Clipboard
	Opts      Options
}

func (r *ClipboardRender) Init(tr *translate.Translator) error {
	if r.Clipboard == nil {
		return precondition(opClipboard, "no clipboard available", nil)
	}
	return nil
}

func (r *ClipboardRender) Output(tr *translate.Translator) error {
	if tr.State != translate.StateDone {
		return nil
	}
	if err := failedTask(tr); err != nil {
		if werr := r.Clipboard.Write(""); werr != nil {
			return fmt.Errorf("%s: clear failed: %w", opClipboard, werr)
		}
		return err
	}
	if err := r.Clipboard.Write(CombinedText(tr)); err != nil {
		return fmt.Errorf("%s: %w", opClipboard, err)
	}
	return nil
}

// CombinedText joins every result of a finished run: results of one
// segment on consecutive lines, segments separated by a blank line.
func CombinedText(tr *translate.Translator) string {
	segments := make([]string, 0, len(tr.Segments))
	for i := range tr.Segments {
		lines := make([]string, 0, len(tr.Tasks))
		for _, t := range tr.Tasks {
			if i < len(t.Results) {
				lines = append(lines, t.Results[i])
			}
		}
		segments = append(segments, strings.Join(lines, "\n"))
	}
	return strings.Join(segments, "\n\n")
}
