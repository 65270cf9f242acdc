package fieldpath

import (
	"cmp"
	"strings"
)

// Compare orders chains segment by segment. Named segments compare by
// case-folded name, indexed segments by index ("[]" first), and a named
// segment sorts after an indexed one. When all shared segments are equal the
// shorter chain sorts first. A nil chain sorts before any other.
func (s *Segment) Compare(other *Segment) int {
	if s == nil {
		if other == nil {
			return 0
		}
		return -1
	}

	a, b := s, other
	for {
		if c := a.compareSegment(b); c != 0 {
			return c
		}
		switch {
		case a.child == nil && b.child == nil:
			return 0
		case a.child == nil:
			return -1
		case b.child == nil:
			return 1
		}
		a, b = a.child, b.child
	}
}

func (s *Segment) compareSegment(other *Segment) int {
	if other == nil {
		return 1
	}

	switch s.kind {
	case kindIndexed:
		if other.kind != kindIndexed {
			return -1
		}
		return cmp.Compare(s.index, other.index)
	case kindNamed:
		if other.kind != kindNamed {
			return 1
		}
		return strings.Compare(s.folded, other.folded)
	}
	return 0
}

// Equal reports whether both chains have the same segments, ignoring the case
// of names and whether they were quoted.
func (s *Segment) Equal(other *Segment) bool {
	a, b := s, other
	for a != nil && b != nil {
		if a == b {
			return true
		}
		if !a.segmentEqual(b) {
			return false
		}
		a, b = a.child, b.child
	}
	return a == nil && b == nil
}

func (s *Segment) segmentEqual(other *Segment) bool {
	if s == other {
		return true
	}
	if s == nil || other == nil || s.kind != other.kind {
		return false
	}

	switch s.kind {
	case kindIndexed:
		return s.index == other.index
	case kindNamed:
		return s.folded == other.folded
	}
	return false
}

// Hash returns a structural hash consistent with Equal. It is computed once
// per segment and cached; concurrent first calls store the same value.
func (s *Segment) Hash() uint32 {
	if s == nil {
		return 0
	}
	if h := s.hash.Load(); h != 0 {
		return h
	}

	h := 31*s.segmentHash() + s.child.Hash()
	s.hash.Store(h)
	return h
}

func (s *Segment) segmentHash() uint32 {
	if s.kind == kindIndexed {
		return uint32(int32(s.index))
	}

	var h uint32
	for i := 0; i < len(s.folded); i++ {
		h = 31*h + uint32(s.folded[i])
	}
	return h
}

// Contains reports whether data reachable through one of the chains has to
// be examined when the other one is requested: other lies below s, or s lies
// below other.
//
// Any indexed segment at the compared level makes the result true, whatever
// the other side holds. Array elements are therefore never filtered by index.
func (s *Segment) Contains(other *Segment) bool {
	a, b := s, other
	for {
		if a == b {
			return true
		}
		if a == nil || b == nil {
			return false
		}
		if a.kind == kindIndexed || b.kind == kindIndexed {
			return true
		}
		if !a.segmentEqual(b) {
			return false
		}
		if a.child == nil || b.child == nil {
			return true
		}
		a, b = a.child, b.child
	}
}

// IsAtOrBelow reports whether s addresses other or a location beneath it,
// that is other is s or one of its ancestors.
func (s *Segment) IsAtOrBelow(other *Segment) bool {
	a, b := s, other
	for {
		if a == b || b == nil {
			return true
		}
		if a == nil || !a.segmentEqual(b) {
			return false
		}
		if a.child == nil {
			return b.child == nil
		}
		a, b = a.child, b.child
	}
}

// IsAtOrAbove reports whether s addresses other or one of its ancestors,
// that is other is s or lies beneath it.
func (s *Segment) IsAtOrAbove(other *Segment) bool {
	a, b := s, other
	for {
		if a == b || a == nil {
			return true
		}
		if b == nil || !a.segmentEqual(b) {
			return false
		}
		if a.child == nil {
			return true
		}
		a, b = a.child, b.child
	}
}
