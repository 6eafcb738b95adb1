package surface

// Bias controls how an anchor reacts to text inserted exactly at its
// position: a forward-biased anchor moves past the insertion, a
// backward-biased anchor stays in front of it.
type Bias int

const (
	BiasBackward Bias = iota
	BiasForward
)

// Anchor is a live position into a surface. Edits elsewhere in the text
// renumber it so it keeps pointing at the same spot in the content.
type Anchor struct {
	surf *Surface
	pos  int
	bias Bias
	dead bool
}

// Anchor registers a new anchor at pos with the given bias.
func (s *Surface) Anchor(pos int, bias Bias) *Anchor {
	a := &Anchor{surf: s, pos: s.clamp(pos), bias: bias}
	s.anchors = append(s.anchors, a)
	return a
}

// Pos reports the anchor's current position.
func (a *Anchor) Pos() int { return a.pos }

// Release detaches the anchor; it stops tracking edits.
func (a *Anchor) Release() {
	if a == nil || a.dead {
		return
	}
	a.dead = true
	anchors := a.surf.anchors
	for i, other := range anchors {
		if other == a {
			a.surf.anchors = append(anchors[:i], anchors[i+1:]...)
			break
		}
	}
}

func (s *Surface) shiftForInsert(at, n int) {
	for _, a := range s.anchors {
		if a.dead {
			continue
		}
		switch {
		case a.pos > at:
			a.pos += n
		case a.pos == at && a.bias == BiasForward:
			a.pos += n
		}
	}
}

func (s *Surface) shiftForDelete(start, end int) {
	n := end - start
	for _, a := range s.anchors {
		if a.dead {
			continue
		}
		switch {
		case a.pos >= end:
			a.pos -= n
		case a.pos > start:
			a.pos = start
		}
	}
}

// Region is an anchored range [Start, End). The start anchor is
// forward-biased and the end anchor backward-biased, so content inserted at
// either edge by a neighbouring patch stays outside the region.
type Region struct {
	start *Anchor
	end   *Anchor
}

// Region anchors a new region over [start, end).
func (s *Surface) Region(start, end int) Region {
	return Region{
		start: s.Anchor(start, BiasForward),
		end:   s.Anchor(end, BiasBackward),
	}
}

// Valid reports whether the region still tracks a live surface range.
func (r Region) Valid() bool {
	return r.start != nil && r.end != nil && !r.start.dead && !r.end.dead
}

// Start reports the region's current start position.
func (r Region) Start() int { return r.start.Pos() }

// End reports the region's current end position.
func (r Region) End() int { return r.end.Pos() }

// Empty reports whether the region covers no text.
func (r Region) Empty() bool { return r.Start() >= r.End() }

// Text returns the region's current content.
func (r Region) Text() string {
	if !r.Valid() {
		return ""
	}
	return r.start.surf.Slice(r.Start(), r.End())
}

// Release detaches both region anchors.
func (r Region) Release() {
	r.start.Release()
	r.end.Release()
}
