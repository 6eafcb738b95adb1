package tui

import (
	"testing"

	"github.com/csheth/lingo/internal/surface"
)

// Styles degrade to plain text without a terminal, so these tests assert
// on content and placement only.

func paintSurface(t *testing.T, text string, decorate func(*surface.Surface)) *surface.Surface {
	t.Helper()
	surf := surface.New("test")
	if err := surf.Reset(text); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if decorate != nil {
		decorate(surf)
	}
	return surf
}

func TestPaintPlainTextUnchanged(t *testing.T) {
	p := newPainter()
	surf := paintSurface(t, "hola\nmundo", nil)

	if got := p.paint(surf, 0, false); got != "hola\nmundo" {
		t.Fatalf("paint = %q, want the raw text", got)
	}
}

func TestPaintAfterDecorationInlay(t *testing.T) {
	p := newPainter()
	surf := paintSurface(t, "hola", func(s *surface.Surface) {
		if _, err := s.Decorate(0, 4, surface.DecorationSpec{
			Mode:    surface.DecorationAfter,
			Content: " → hi",
		}); err != nil {
			t.Fatalf("decorate: %v", err)
		}
	})

	if got := p.paint(surf, 0, false); got != "hola → hi" {
		t.Fatalf("paint = %q, want inlay after the text", got)
	}
}

func TestPaintReplaceDecorationHidesRange(t *testing.T) {
	p := newPainter()
	surf := paintSurface(t, "hola mundo", func(s *surface.Surface) {
		if _, err := s.Decorate(0, 4, surface.DecorationSpec{
			Mode:    surface.DecorationReplace,
			Content: "hi",
		}); err != nil {
			t.Fatalf("decorate: %v", err)
		}
	})

	if got := p.paint(surf, 0, false); got != "hi mundo" {
		t.Fatalf("paint = %q, want the range replaced", got)
	}
}

func TestPaintHoverDecorationFollowsCursor(t *testing.T) {
	p := newPainter()
	surf := paintSurface(t, "hola", func(s *surface.Surface) {
		if _, err := s.Decorate(0, 4, surface.DecorationSpec{
			Mode:    surface.DecorationHover,
			Content: "[hi]",
		}); err != nil {
			t.Fatalf("decorate: %v", err)
		}
	})

	if got := p.paint(surf, 2, true); got != "hola[hi]" {
		t.Fatalf("paint with cursor inside = %q, want the hover inlay", got)
	}
	if got := p.paint(surf, 0, false); got != "hola" {
		t.Fatalf("paint without cursor = %q, want no hover inlay", got)
	}
}

func TestPaintBeforeDecorationInlay(t *testing.T) {
	p := newPainter()
	surf := paintSurface(t, "mundo", func(s *surface.Surface) {
		if _, err := s.Decorate(0, 5, surface.DecorationSpec{
			Mode:    surface.DecorationBefore,
			Content: "es: ",
		}); err != nil {
			t.Fatalf("decorate: %v", err)
		}
	})

	if got := p.paint(surf, 0, false); got != "es: mundo" {
		t.Fatalf("paint = %q, want inlay before the text", got)
	}
}

func TestPaintCursorAtEndParksOnSpace(t *testing.T) {
	p := newPainter()
	surf := paintSurface(t, "hi", nil)
	surf.SetPoint(2)

	if got := p.paint(surf, surf.Point(), true); got != "hi " {
		t.Fatalf("paint = %q, want a parked cursor cell", got)
	}
}
