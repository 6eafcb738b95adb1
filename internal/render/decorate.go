package render

import (
	"fmt"
	"strings"

	"github.com/csheth/lingo/internal/surface"
	"github.com/csheth/lingo/internal/translate"
)

const opDecorate = "decoration render"

// DecorationRender attaches results to the recorded regions as
// non-destructive decorations instead of editing the text. Like the
// in-place render it waits for the whole run and aborts on any failed
// task. Re-rendering a region drops its previous decorations first, and
// decorations evict themselves when the user edits the decorated text.
type DecorationRender struct {
	// Mode picks how decorations sit relative to the source text:
	// replacing it visually, after it, before it, or shown on hover.
	Mode surface.DecorationMode
	Opts Options
}

func (r *DecorationRender) Init(tr *translate.Translator) error {
	return checkBounds(opDecorate, tr, false)
}

func (r *DecorationRender) Output(tr *translate.Translator) error {
	if tr.State != translate.StateDone {
		return nil
	}
	if err := failedTask(tr); err != nil {
		return err
	}
	b := tr.Bounds
	if b == nil || b.Surface == nil || b.Surface.Closed() {
		return fmt.Errorf("%s: %w", opDecorate, ErrVanished)
	}
	surf := b.Surface

	records := Records(tr, r.Opts)
	for i, region := range b.Regions {
		results, prefixes := segmentSlice(records, i)
		content, _ := r.Opts.Format.Resolve(tr.Segments[i], results, prefixes)
		start, end := region.Start(), region.End()
		surf.RemoveDecorationsIn(start, end)
		_, err := surf.Decorate(start, end, surface.DecorationSpec{
			Mode:        r.Mode,
			Content:     content,
			Raw:         strings.Join(results, "\n"),
			EvictOnEdit: true,
		})
		if err != nil {
			return fmt.Errorf("%s: %w", opDecorate, err)
		}
	}
	return nil
}
