package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/lingo/internal/surface"
)

// editor is a small line editor over a surface. The surface's point is the
// cursor, so programmatic edits and renders move it like any other anchor.
type editor struct {
	surf *surface.Surface
}

func newEditor(surf *surface.Surface) *editor {
	return &editor{surf: surf}
}

// handleKey applies one key to the surface. It reports whether the key was
// an editing key; mutation errors (a read-only surface, mostly) come back
// for the status line.
func (e *editor) handleKey(key tea.KeyMsg) (bool, error) {
	p := e.surf.Point()
	switch key.Type {
	case tea.KeyRunes:
		return true, e.insert(string(key.Runes))
	case tea.KeySpace:
		return true, e.insert(" ")
	case tea.KeyEnter:
		return true, e.insert("\n")
	case tea.KeyBackspace:
		if p == 0 {
			return true, nil
		}
		return true, e.surf.Delete(p-1, p)
	case tea.KeyDelete:
		if p >= e.surf.Len() {
			return true, nil
		}
		return true, e.surf.Delete(p, p+1)
	case tea.KeyLeft:
		e.surf.SetPoint(p - 1)
		return true, nil
	case tea.KeyRight:
		e.surf.SetPoint(p + 1)
		return true, nil
	case tea.KeyUp:
		e.moveVertical(-1)
		return true, nil
	case tea.KeyDown:
		e.moveVertical(1)
		return true, nil
	case tea.KeyHome, tea.KeyCtrlA:
		e.surf.SetPoint(e.surf.LineStart(p))
		return true, nil
	case tea.KeyEnd, tea.KeyCtrlE:
		e.surf.SetPoint(e.surf.LineEnd(p))
		return true, nil
	case tea.KeyCtrlU:
		return true, e.surf.Delete(e.surf.LineStart(p), p)
	case tea.KeyCtrlK:
		return true, e.surf.Delete(p, e.surf.LineEnd(p))
	}
	return false, nil
}

func (e *editor) insert(text string) error {
	return e.surf.Insert(e.surf.Point(), text)
}

// moveVertical keeps the column when hopping lines, clamped to the target
// line's end.
func (e *editor) moveVertical(delta int) {
	p := e.surf.Point()
	col := p - e.surf.LineStart(p)
	if delta < 0 {
		start := e.surf.LineStart(p)
		if start == 0 {
			return
		}
		prevStart := e.surf.LineStart(start - 1)
		target := prevStart + col
		if end := e.surf.LineEnd(prevStart); target > end {
			target = end
		}
		e.surf.SetPoint(target)
		return
	}
	end := e.surf.LineEnd(p)
	if end >= e.surf.Len() {
		return
	}
	nextStart := end + 1
	target := nextStart + col
	if nextEnd := e.surf.LineEnd(nextStart); target > nextEnd {
		target = nextEnd
	}
	e.surf.SetPoint(target)
}
