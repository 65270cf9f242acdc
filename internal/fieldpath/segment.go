// Package fieldpath models field paths such as `a.b[3].c` that address
// locations inside a document tree.
//
// A path is a chain of segments. Each segment either names a map entry
// (compared case-insensitively) or indexes an array element, and owns at most
// one child segment. Segments are immutable once built, so they can be shared
// between goroutines without synchronization.
package fieldpath

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"golang.org/x/text/cases"
)

// NoIndex is the index of an indexed segment written as "[]", which does not
// address a specific array position.
const NoIndex = -1

const (
	kindNamed segmentKind = iota + 1
	kindIndexed
)

const (
	shapeLeaf segmentShape = iota
	shapeMap
	shapeArray
)

type segmentKind uint8

// segmentShape classifies the context a segment addresses, derived from its child.
type segmentShape uint8

// Segment is one step of a field path: a map key or an array index.
type Segment struct {
	kind  segmentKind
	shape segmentShape

	name   string
	folded string // case-folded name used for ordering, equality and hashing
	quoted bool

	index int

	child *Segment

	hash atomic.Uint32 // 0 until first computed
}

// NewNamed returns a segment addressing the map entry name. quoted records
// that the textual form wrapped the name in backticks; it only affects rendering.
func NewNamed(name string, quoted bool, child *Segment) *Segment {
	s := newSegment(kindNamed, child)
	s.name = name
	s.folded = foldName(name)
	s.quoted = quoted
	return s
}

// NewIndexed returns a segment addressing the array element at index.
func NewIndexed(index int, child *Segment) (*Segment, error) {
	if index < 0 {
		return nil, fmt.Errorf("%w: negative index %d", ErrInvalidArgument, index)
	}
	s := newSegment(kindIndexed, child)
	s.index = index
	return s, nil
}

// NewAnyIndexed returns an indexed segment without a position, rendered as "[]".
func NewAnyIndexed(child *Segment) *Segment {
	s := newSegment(kindIndexed, child)
	s.index = NoIndex
	return s
}

func newSegment(kind segmentKind, child *Segment) *Segment {
	s := &Segment{kind: kind, child: child}
	switch {
	case child == nil:
		s.shape = shapeLeaf
	case child.kind == kindIndexed:
		s.shape = shapeArray
	default:
		s.shape = shapeMap
	}
	return s
}

func foldName(name string) string {
	return cases.Fold().String(name)
}

// IsMap reports whether the child of s is a named segment.
func (s *Segment) IsMap() bool {
	return s != nil && s.shape == shapeMap
}

// IsArray reports whether the child of s is an indexed segment.
func (s *Segment) IsArray() bool {
	return s != nil && s.shape == shapeArray
}

// IsLeaf reports whether s has no child.
func (s *Segment) IsLeaf() bool {
	return s != nil && s.shape == shapeLeaf
}

func (s *Segment) IsIndexed() bool {
	return s != nil && s.kind == kindIndexed
}

func (s *Segment) IsNamed() bool {
	return s != nil && s.kind == kindNamed
}

// Name returns the unquoted name of a named segment, or "" for indexed ones.
func (s *Segment) Name() string {
	if !s.IsNamed() {
		return ""
	}
	return s.name
}

// MatchesName reports whether s is a named segment for key, ignoring case.
func (s *Segment) MatchesName(key string) bool {
	return s.IsNamed() && (s.name == key || s.folded == foldName(key))
}

// Quoted reports whether the name was written in backticks.
func (s *Segment) Quoted() bool {
	return s.IsNamed() && s.quoted
}

// Index returns the position of an indexed segment. It returns NoIndex for
// "[]" segments and for named segments.
func (s *Segment) Index() int {
	if !s.IsIndexed() {
		return NoIndex
	}
	return s.index
}

// HasIndex reports whether s is an indexed segment with a concrete position.
func (s *Segment) HasIndex() bool {
	return s.IsIndexed() && s.index != NoIndex
}

func (s *Segment) Child() *Segment {
	if s == nil {
		return nil
	}
	return s.child
}

// withChild copies the head of s onto a different child.
func (s *Segment) withChild(child *Segment) *Segment {
	c := newSegment(s.kind, child)
	c.name = s.name
	c.folded = s.folded
	c.quoted = s.quoted
	c.index = s.index
	return c
}

func (s *Segment) chain() []*Segment {
	var out []*Segment
	for seg := s; seg != nil; seg = seg.child {
		out = append(out, seg)
	}
	return out
}

// Clone returns a deep copy of the chain starting at s.
func (s *Segment) Clone() *Segment {
	return rebuild(s.chain(), nil)
}

// CloneWithNewChild returns a copy of the chain starting at s whose deepest
// segment has newChild (itself copied) as its child.
func (s *Segment) CloneWithNewChild(newChild *Segment) *Segment {
	return rebuild(s.chain(), newChild.Clone())
}

func rebuild(chain []*Segment, tail *Segment) *Segment {
	for i := len(chain) - 1; i >= 0; i-- {
		tail = chain[i].withChild(tail)
	}
	return tail
}

// PathString renders the chain starting at s. With escape set, every name is
// wrapped in backticks; otherwise only names that were quoted or that
// contain delimiter characters are.
func (s *Segment) PathString(escape bool) string {
	var b strings.Builder
	for seg := s; seg != nil; seg = seg.child {
		if seg != s && seg.kind == kindNamed {
			b.WriteByte('.')
		}
		seg.writeSegment(&b, escape)
	}
	return b.String()
}

func (s *Segment) String() string {
	return s.PathString(false)
}

func (s *Segment) writeSegment(b *strings.Builder, escape bool) {
	if s.kind == kindIndexed {
		b.WriteByte('[')
		if s.index != NoIndex {
			b.WriteString(strconv.Itoa(s.index))
		}
		b.WriteByte(']')
		return
	}

	if !escape && !s.quoted && !needsQuoting(s.name) {
		b.WriteString(s.name)
		return
	}
	writeQuoted(b, s.name)
}
