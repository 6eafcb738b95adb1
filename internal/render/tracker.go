package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/csheth/lingo/internal/surface"
	"github.com/csheth/lingo/internal/translate"
)

// PendingText fills a placeholder span until its task reports in.
const PendingText = "Loading..."

// foldMarker stands in for the hidden tail of a truncated source echo.
const foldMarker = "…"

// span is the tracker's note of one placeholder block: the live region it
// occupies, the record ordinal that fills it, and whether it already holds
// final content. A done span is never touched again.
type span struct {
	region  surface.Region
	ordinal int
	taskID  string
	done    bool
	mark    *surface.Highlight
}

// fold is a collapsed source tail behind a marker.
type fold struct {
	region surface.Region
	hidden string
	mark   *surface.Highlight
}

// tracker owns the panel-family surface content: it lays out source echoes
// and placeholders once per run, then patches finished results into the
// placeholders as updates arrive. All positions are live anchors, so spans
// stay correct while earlier patches grow or shrink the text around them.
type tracker struct {
	surf        *surface.Surface
	opts        Options
	spans       []*span
	folds       []*fold
	echo        []surface.Region
	echoDropped bool
}

// layoutCursor appends text at a running position. The first error sticks
// and turns the remaining appends into no-ops.
type layoutCursor struct {
	surf *surface.Surface
	pos  int
	err  error
}

func (c *layoutCursor) append(text string) (start, end int) {
	start = c.pos
	if c.err != nil || text == "" {
		return start, c.pos
	}
	if err := c.surf.Insert(c.pos, text); err != nil {
		c.err = err
		return start, c.pos
	}
	c.pos += len([]rune(text))
	return start, c.pos
}

// layout resets the surface and writes the skeleton for a fresh run: per
// segment a source echo line, then per task an optional label line and a
// pending placeholder. Blocks are separated by a blank line.
func (tk *tracker) layout(tr *translate.Translator) error {
	if tk.surf.Closed() {
		return surface.ErrClosed
	}
	if err := tk.surf.Reset(""); err != nil {
		return err
	}
	tk.spans = nil
	tk.folds = nil
	tk.echo = nil
	tk.echoDropped = false

	records := Records(tr, tk.opts)
	cur := &layoutCursor{surf: tk.surf}
	return tk.surf.WithWritable(func() error {
		for i, seg := range tr.Segments {
			if i > 0 {
				cur.append("\n")
			}
			tk.layoutEcho(cur, seg)
			for _, rec := range records {
				if rec.Segment != i {
					continue
				}
				tk.layoutPlaceholder(cur, rec)
			}
		}
		return cur.err
	})
}

// layoutEcho writes one source line, folding the tail past the truncation
// limit behind a marker. The echo region includes the trailing newline so
// removing it later leaves no empty line behind.
func (tk *tracker) layoutEcho(cur *layoutCursor, seg string) {
	visible, hidden := tk.truncate(seg)
	start, visEnd := cur.append(visible)
	if hidden != "" {
		ms, me := cur.append(foldMarker)
		tk.surf.AddHighlight(tk.surf.Region(start, ms), ClassSource)
		fr := tk.surf.Region(ms, me)
		tk.folds = append(tk.folds, &fold{
			region: fr,
			hidden: hidden,
			mark:   tk.surf.AddHighlight(fr, ClassFold),
		})
	} else {
		tk.surf.AddHighlight(tk.surf.Region(start, visEnd), ClassSource)
	}
	_, end := cur.append("\n")
	tk.echo = append(tk.echo, tk.surf.Region(start, end))
}

func (tk *tracker) layoutPlaceholder(cur *layoutCursor, rec DisplayRecord) {
	if rec.Prefix != "" {
		ps, pe := cur.append(rec.Prefix)
		tk.surf.AddHighlight(tk.surf.Region(ps, pe), ClassLabel)
		cur.append("\n")
	}
	ss, se := cur.append(PendingText)
	region := tk.surf.Region(ss, se)
	tk.spans = append(tk.spans, &span{
		region:  region,
		ordinal: rec.Ordinal,
		taskID:  rec.Task.ID,
		mark:    tk.surf.AddHighlight(region, ClassPending),
	})
	cur.append("\n")
}

// truncate splits seg at the truncation limit. The cut is the longest rune
// prefix the configured measure accepts.
func (tk *tracker) truncate(seg string) (visible, hidden string) {
	limit := tk.opts.TruncateAt
	if limit <= 0 || tk.opts.measure(seg) <= limit {
		return seg, ""
	}
	runes := []rune(seg)
	cut := len(runes)
	for i := range runes {
		if tk.opts.measure(string(runes[:i+1])) > limit {
			cut = i
			break
		}
	}
	return string(runes[:cut]), string(runes[cut:])
}

// patch folds the run's current state into the surface. Spans are visited
// in document order; a span is replaced exactly once, when its record first
// turns terminal, and flagged done so repeated calls with unchanged state
// rewrite nothing.
func (tk *tracker) patch(tr *translate.Translator) error {
	if tk.surf.Closed() {
		return fmt.Errorf("%s: %w", tk.surf.Name(), ErrVanished)
	}
	records := Records(tr, tk.opts)
	ordered := make([]*span, len(tk.spans))
	copy(ordered, tk.spans)
	sort.Slice(ordered, func(a, b int) bool {
		return ordered[a].region.Start() < ordered[b].region.Start()
	})
	return tk.surf.WithWritable(func() error {
		for _, sp := range ordered {
			if sp.done || sp.ordinal >= len(records) {
				continue
			}
			rec := records[sp.ordinal]
			if !rec.State.Terminal() {
				continue
			}
			content, styled := tk.opts.Format.Resolve(
				tr.Segments[rec.Segment],
				[]string{rec.Result},
				[]string{rec.Prefix},
			)
			if err := tk.surf.ReplaceRegion(sp.region, content); err != nil {
				return err
			}
			sp.done = true
			tk.surf.RemoveHighlight(sp.mark)
			sp.mark = nil
			if styled {
				class := ClassResult
				if rec.State == translate.StateError {
					class = ClassError
				}
				sp.mark = tk.surf.AddHighlight(sp.region, class)
			}
		}
		tk.dropEchoIfTrivial(tr, records)
		return nil
	})
}

// dropEchoIfTrivial removes the source echo after a run that ended with a
// single clean result identical to its single source segment. Keeping the
// echo there would show the same line twice.
func (tk *tracker) dropEchoIfTrivial(tr *translate.Translator, records []DisplayRecord) {
	if tk.echoDropped || len(records) != 1 || len(tk.echo) != 1 {
		return
	}
	rec := records[0]
	if rec.State != translate.StateDone || !tk.spans[0].done {
		return
	}
	if strings.TrimSpace(rec.Result) != strings.TrimSpace(tr.Segments[0]) {
		return
	}
	echo := tk.echo[0]
	if err := tk.surf.Delete(echo.Start(), echo.End()); err != nil {
		return
	}
	tk.folds = nil
	tk.echoDropped = true
}

// expandAtLine reveals the fold starting on the given line and restyles the
// revealed text as ordinary source. Reports whether a fold was expanded.
func (tk *tracker) expandAtLine(line int) bool {
	for i, f := range tk.folds {
		if tk.surf.Line(f.region.Start()) != line {
			continue
		}
		err := tk.surf.WithWritable(func() error {
			return tk.surf.ReplaceRegion(f.region, f.hidden)
		})
		if err != nil {
			return false
		}
		tk.surf.RemoveHighlight(f.mark)
		tk.surf.AddHighlight(f.region, ClassSource)
		tk.folds = append(tk.folds[:i], tk.folds[i+1:]...)
		return true
	}
	return false
}

// pendingCount reports how many placeholders still wait for content.
func (tk *tracker) pendingCount() int {
	n := 0
	for _, sp := range tk.spans {
		if !sp.done {
			n++
		}
	}
	return n
}
