package surface

// Highlight is an out-of-band styled range. The painter decides what a
// class looks like; the surface only tracks where it applies.
type Highlight struct {
	region Region
	Class  string
}

// AddHighlight styles the region with the given class.
func (s *Surface) AddHighlight(r Region, class string) *Highlight {
	h := &Highlight{region: r, Class: class}
	s.highlights = append(s.highlights, h)
	return h
}

// RemoveHighlight drops a highlight. The underlying region keeps tracking.
func (s *Surface) RemoveHighlight(h *Highlight) {
	for i, other := range s.highlights {
		if other == h {
			s.highlights = append(s.highlights[:i], s.highlights[i+1:]...)
			return
		}
	}
}

// Highlights returns the live highlights. Order is insertion order; callers
// that care about document order sort by Region().Start().
func (s *Surface) Highlights() []*Highlight {
	out := make([]*Highlight, 0, len(s.highlights))
	for _, h := range s.highlights {
		if h.region.Valid() {
			out = append(out, h)
		}
	}
	return out
}

// Region exposes the highlighted range.
func (h *Highlight) Region() Region { return h.region }

// DecorationMode selects how a decoration presents its content relative to
// the decorated text.
type DecorationMode int

const (
	// DecorationReplace displays the content instead of the decorated text.
	DecorationReplace DecorationMode = iota
	// DecorationAfter displays the content after the decorated text.
	DecorationAfter
	// DecorationBefore displays the content before the decorated text.
	DecorationBefore
	// DecorationHover keeps the content off-screen until the cursor is inside.
	DecorationHover
)

// DecorationSpec describes a decoration to attach.
type DecorationSpec struct {
	Mode    DecorationMode
	Content string // displayable content, possibly pre-styled
	Raw     string // plain combined text, kept for later retrieval (copy)
	// EvictOnEdit removes the decoration as soon as the decorated text is
	// edited, so stale annotations never shadow fresh user input.
	EvictOnEdit bool
}

// Decoration is a non-destructive annotation over a text range.
type Decoration struct {
	region Region
	DecorationSpec
}

// Decorate attaches a decoration over [start, end). Decorations never alter
// the underlying text and survive closures of the writer that created them.
func (s *Surface) Decorate(start, end int, spec DecorationSpec) (*Decoration, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if start < 0 || end > len(s.text) || start > end {
		return nil, ErrOutOfRange
	}
	d := &Decoration{region: s.Region(start, end), DecorationSpec: spec}
	s.decorations = append(s.decorations, d)
	return d, nil
}

// Decorations returns all live decorations in insertion order.
func (s *Surface) Decorations() []*Decoration {
	out := make([]*Decoration, 0, len(s.decorations))
	out = append(out, s.decorations...)
	return out
}

// DecorationsIn returns decorations whose range overlaps [start, end).
func (s *Surface) DecorationsIn(start, end int) []*Decoration {
	var out []*Decoration
	for _, d := range s.decorations {
		if d.region.Start() < end && d.region.End() > start {
			out = append(out, d)
		}
	}
	return out
}

// RemoveDecorationsIn drops every decoration overlapping [start, end) and
// reports how many were removed.
func (s *Surface) RemoveDecorationsIn(start, end int) int {
	kept := s.decorations[:0]
	removed := 0
	for _, d := range s.decorations {
		if d.region.Start() < end && d.region.End() > start {
			d.region.Release()
			removed++
			continue
		}
		kept = append(kept, d)
	}
	s.decorations = kept
	return removed
}

// Region exposes the decorated range.
func (d *Decoration) Region() Region { return d.region }

func (s *Surface) evictOnInsert(at int) {
	kept := s.decorations[:0]
	for _, d := range s.decorations {
		if d.EvictOnEdit && d.region.Start() < at && at < d.region.End() {
			d.region.Release()
			continue
		}
		kept = append(kept, d)
	}
	s.decorations = kept
}

func (s *Surface) evictOnDelete(start, end int) {
	kept := s.decorations[:0]
	for _, d := range s.decorations {
		if d.EvictOnEdit && d.region.Start() < end && d.region.End() > start {
			d.region.Release()
			continue
		}
		kept = append(kept, d)
	}
	s.decorations = kept
}
