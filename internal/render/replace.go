package render

import (
	"fmt"

	"github.com/csheth/lingo/internal/surface"
	"github.com/csheth/lingo/internal/translate"
)

// ReplaceMode selects what an in-place render does with the source text.
type ReplaceMode int

const (
	// ModeReplace swaps each recorded region for its formatted results.
	ModeReplace ReplaceMode = iota
	// ModeAppend keeps the source and inserts the formatted results after
	// each recorded region, separated by LeadingSep.
	ModeAppend
)

const opInPlace = "in-place render"

// ReplaceRender writes results back into the surface the text came from,
// at the regions recorded when the run started. It only acts once the
// whole run is finished: any failed task aborts the render before a single
// edit, so the source is never left half rewritten.
type ReplaceRender struct {
	Mode ReplaceMode
	Opts Options

	// RestyleSource dims the original region when appending, so the added
	// translation reads as the primary text.
	RestyleSource bool
}

func (r *ReplaceRender) Init(tr *translate.Translator) error {
	return checkBounds(opInPlace, tr, true)
}

// checkBounds validates the recorded write target. In-place edits need a
// writable surface; decorations only need it open.
func checkBounds(op string, tr *translate.Translator, needWritable bool) error {
	b := tr.Bounds
	if b == nil || b.Surface == nil {
		return precondition(op, "no source surface recorded", nil)
	}
	if b.Surface.Closed() {
		return precondition(op, "source surface is closed", surface.ErrClosed)
	}
	if needWritable && b.Surface.ReadOnly() {
		return precondition(op, "source surface is read-only", surface.ErrReadOnly)
	}
	if len(b.Regions) == 0 {
		return precondition(op, "no regions recorded for the selection", nil)
	}
	if len(b.Regions) != len(tr.Segments) {
		return precondition(op, fmt.Sprintf("%d regions for %d segments",
			len(b.Regions), len(tr.Segments)), nil)
	}
	return nil
}

func (r *ReplaceRender) Output(tr *translate.Translator) error {
	if tr.State != translate.StateDone {
		return nil
	}
	if err := failedTask(tr); err != nil {
		return err
	}
	b := tr.Bounds
	if b == nil || b.Surface == nil || b.Surface.Closed() {
		return fmt.Errorf("%s: %w", opInPlace, ErrVanished)
	}
	surf := b.Surface
	if surf.ReadOnly() {
		return precondition(opInPlace, "source surface is read-only", surface.ErrReadOnly)
	}

	records := Records(tr, r.Opts)
	wasModified := surf.Modified()
	hashBefore := surf.Hash()

	last := 0
	for i, region := range b.Regions {
		results, prefixes := segmentSlice(records, i)
		content, _ := r.Opts.Format.Resolve(tr.Segments[i], results, prefixes)
		switch r.Mode {
		case ModeAppend:
			end := region.End()
			sep := LeadingSep(content, surf.AtLineEnd(end), surf.AfterWord(end))
			if err := surf.Insert(end, sep+content); err != nil {
				return fmt.Errorf("%s: %w", opInPlace, err)
			}
			if r.RestyleSource {
				surf.AddHighlight(region, ClassDimmed)
			}
			last = end + len([]rune(sep+content))
		default:
			if err := surf.ReplaceRegion(region, content); err != nil {
				return fmt.Errorf("%s: %w", opInPlace, err)
			}
			last = region.End()
		}
	}
	surf.SetPoint(last)

	// A rewrite that reproduced the original bytes is not a real change;
	// keep the surface looking untouched then.
	if !wasModified && surf.Hash() == hashBefore {
		surf.SetModified(false)
	}
	return nil
}
