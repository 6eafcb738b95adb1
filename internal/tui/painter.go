package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/csheth/lingo/internal/render"
	"github.com/csheth/lingo/internal/surface"
)

// painter turns a surface into styled terminal text. The render package
// only tags spans with highlight classes; what a class looks like is
// decided here, and decorations are folded into the output without ever
// touching the underlying text.
type painter struct {
	styles map[string]lipgloss.Style
}

func newPainter() *painter {
	return &painter{styles: map[string]lipgloss.Style{
		render.ClassSource:  sourceTextStyle,
		render.ClassPending: pendingTextStyle,
		render.ClassResult:  resultTextStyle,
		render.ClassError:   errorTextStyle,
		render.ClassFold:    foldMarkStyle,
		render.ClassLabel:   labelTextStyle,
		render.ClassDimmed:  dimmedTextStyle,
	}}
}

// paint renders the surface's text with its highlights and decorations.
// cursor is the rune position to mark; withCursor false hides it (for
// unfocused panes).
func (p *painter) paint(surf *surface.Surface, cursor int, withCursor bool) string {
	runes := []rune(surf.Text())

	// Later highlights win where ranges overlap, matching the order the
	// render attached them in.
	classes := make([]string, len(runes))
	for _, h := range surf.Highlights() {
		r := h.Region()
		for i := r.Start(); i < r.End() && i < len(runes); i++ {
			if i >= 0 {
				classes[i] = h.Class
			}
		}
	}

	skip := make([]bool, len(runes))
	inlays := map[int][]string{}
	for _, d := range surf.Decorations() {
		r := d.Region()
		if !r.Valid() {
			continue
		}
		start, end := r.Start(), r.End()
		switch d.Mode {
		case surface.DecorationReplace:
			for i := start; i < end && i < len(runes); i++ {
				skip[i] = true
			}
			inlays[start] = append(inlays[start], d.Content)
		case surface.DecorationBefore:
			inlays[start] = append(inlays[start], d.Content)
		case surface.DecorationHover:
			if withCursor && cursor >= start && cursor < end {
				inlays[end] = append(inlays[end], d.Content)
			}
		default:
			inlays[end] = append(inlays[end], d.Content)
		}
	}

	var b strings.Builder
	for i := 0; i <= len(runes); i++ {
		for _, content := range inlays[i] {
			b.WriteString(decorationStyle.Render(content))
		}
		if i == len(runes) {
			if withCursor && cursor >= i {
				b.WriteString(cursorStyle.Render(" "))
			}
			break
		}
		if skip[i] {
			continue
		}
		r := runes[i]
		atCursor := withCursor && i == cursor
		if r == '\n' {
			if atCursor {
				b.WriteString(cursorStyle.Render(" "))
			}
			b.WriteRune('\n')
			continue
		}
		style, styled := p.styles[classes[i]]
		switch {
		case atCursor:
			b.WriteString(cursorStyle.Render(string(r)))
		case styled:
			b.WriteString(style.Render(string(r)))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
