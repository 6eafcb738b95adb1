// Package surface models an editable text surface shared between the user
// and programmatic writers. Positions are rune offsets. A surface carries
// live anchors that are renumbered on every edit, styled highlight ranges,
// and non-destructive decorations, so content can be patched in place while
// the surrounding text keeps moving.
//
// Surfaces are not safe for concurrent use; all mutation is expected to
// happen on the host program's event loop.
package surface

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"strings"
	"unicode"
)

var (
	// ErrReadOnly is returned when a mutation hits a read-only surface.
	ErrReadOnly = errors.New("surface is read-only")
	// ErrClosed is returned when an operation hits a closed surface.
	ErrClosed = errors.New("surface is closed")
	// ErrOutOfRange is returned when a position falls outside the text.
	ErrOutOfRange = errors.New("position out of range")
)

// Surface is an in-memory editable text buffer.
type Surface struct {
	name        string
	text        []rune
	anchors     []*Anchor
	highlights  []*Highlight
	decorations []*Decoration
	point       *Anchor
	readOnly    bool
	closed      bool
	modified    bool
}

// New returns an empty surface with the given name.
func New(name string) *Surface {
	s := &Surface{name: name}
	s.point = s.Anchor(0, BiasForward)
	return s
}

// Name reports the surface name.
func (s *Surface) Name() string { return s.name }

// Len reports the text length in runes.
func (s *Surface) Len() int { return len(s.text) }

// Text returns the full text.
func (s *Surface) Text() string { return string(s.text) }

// Slice returns the text in [start, end), clamped to the surface bounds.
func (s *Surface) Slice(start, end int) string {
	start, end = s.clamp(start), s.clamp(end)
	if start >= end {
		return ""
	}
	return string(s.text[start:end])
}

// RuneAt returns the rune at pos, or false when pos is out of range.
func (s *Surface) RuneAt(pos int) (rune, bool) {
	if pos < 0 || pos >= len(s.text) {
		return 0, false
	}
	return s.text[pos], true
}

// Insert writes text at the given position and renumbers anchors.
func (s *Surface) Insert(at int, text string) error {
	if err := s.writable(); err != nil {
		return err
	}
	if at < 0 || at > len(s.text) {
		return ErrOutOfRange
	}
	if text == "" {
		return nil
	}
	runes := []rune(text)
	s.text = append(s.text[:at], append(runes, s.text[at:]...)...)
	s.shiftForInsert(at, len(runes))
	s.evictOnInsert(at)
	s.modified = true
	return nil
}

// Delete removes the text in [start, end) and renumbers anchors.
func (s *Surface) Delete(start, end int) error {
	if err := s.writable(); err != nil {
		return err
	}
	if start < 0 || end > len(s.text) || start > end {
		return ErrOutOfRange
	}
	if start == end {
		return nil
	}
	s.evictOnDelete(start, end)
	s.text = append(s.text[:start], s.text[end:]...)
	s.shiftForDelete(start, end)
	s.modified = true
	return nil
}

// ReplaceRegion swaps the region's current content for text and re-pins the
// region exactly around the replacement. Every other anchor adjusts by the
// ordinary renumbering rules, so untouched regions keep their positions
// relative to the surrounding text.
func (s *Surface) ReplaceRegion(r Region, text string) error {
	if !r.Valid() {
		return ErrOutOfRange
	}
	start := r.Start()
	if err := s.Delete(start, r.End()); err != nil {
		return err
	}
	if err := s.Insert(start, text); err != nil {
		return err
	}
	r.start.pos = start
	r.end.pos = start + len([]rune(text))
	return nil
}

func (s *Surface) writable() error {
	if s.closed {
		return ErrClosed
	}
	if s.readOnly {
		return ErrReadOnly
	}
	return nil
}

// ReadOnly reports whether the surface refuses edits.
func (s *Surface) ReadOnly() bool { return s.readOnly }

// SetReadOnly toggles edit protection.
func (s *Surface) SetReadOnly(ro bool) { s.readOnly = ro }

// WithWritable lifts read-only protection for the duration of fn and
// restores the previous protection afterwards, error or not.
func (s *Surface) WithWritable(fn func() error) error {
	if s.closed {
		return ErrClosed
	}
	prev := s.readOnly
	s.readOnly = false
	defer func() { s.readOnly = prev }()
	return fn()
}

// Close marks the surface as gone; further operations fail with ErrClosed.
func (s *Surface) Close() { s.closed = true }

// Closed reports whether the surface has been closed.
func (s *Surface) Closed() bool { return s.closed }

// Modified reports whether the surface changed since the flag was last cleared.
func (s *Surface) Modified() bool { return s.modified }

// SetModified overrides the modified flag.
func (s *Surface) SetModified(m bool) { s.modified = m }

// Hash returns a digest of the current text, used to detect net-no-op edits.
func (s *Surface) Hash() string {
	sum := sha1.Sum([]byte(string(s.text)))
	return hex.EncodeToString(sum[:])
}

// Reset replaces the whole text, drops all anchors, highlights and
// decorations, and clears the modified flag. Read-only protection is
// bypassed: resetting is a programmatic re-layout, not a user edit.
func (s *Surface) Reset(text string) error {
	if s.closed {
		return ErrClosed
	}
	for _, a := range s.anchors {
		a.dead = true
	}
	s.anchors = s.anchors[:0]
	s.highlights = s.highlights[:0]
	s.decorations = s.decorations[:0]
	s.text = []rune(text)
	s.modified = false
	s.point = s.Anchor(0, BiasForward)
	return nil
}

// Point returns the cursor position. The point is anchored, so it tracks
// surrounding edits like any other anchor.
func (s *Surface) Point() int { return s.point.Pos() }

// SetPoint moves the cursor, clamped to the text bounds.
func (s *Surface) SetPoint(pos int) { s.point.pos = s.clamp(pos) }

func (s *Surface) clamp(pos int) int {
	if pos < 0 {
		return 0
	}
	if pos > len(s.text) {
		return len(s.text)
	}
	return pos
}

// LineStart returns the position just after the previous newline.
func (s *Surface) LineStart(pos int) int {
	pos = s.clamp(pos)
	for pos > 0 && s.text[pos-1] != '\n' {
		pos--
	}
	return pos
}

// LineEnd returns the position of the next newline, or the text end.
func (s *Surface) LineEnd(pos int) int {
	pos = s.clamp(pos)
	for pos < len(s.text) && s.text[pos] != '\n' {
		pos++
	}
	return pos
}

// Line reports the zero-based line number at pos.
func (s *Surface) Line(pos int) int {
	pos = s.clamp(pos)
	n := 0
	for i := 0; i < pos; i++ {
		if s.text[i] == '\n' {
			n++
		}
	}
	return n
}

// LineCount reports the number of lines in the surface.
func (s *Surface) LineCount() int {
	return strings.Count(string(s.text), "\n") + 1
}

// AtLineEnd reports whether pos sits at the end of its line.
func (s *Surface) AtLineEnd(pos int) bool {
	return s.clamp(pos) == s.LineEnd(pos)
}

// AfterWord reports whether the rune immediately before pos is a word rune.
func (s *Surface) AfterWord(pos int) bool {
	r, ok := s.RuneAt(s.clamp(pos) - 1)
	if !ok {
		return false
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
