package fieldpath

import "iter"

// Path is a complete field path. The zero value is the empty path, which
// addresses the document root.
type Path struct {
	root *Segment
}

// New wraps an existing segment chain.
func New(root *Segment) Path {
	return Path{root: root}
}

// Named is a shorthand for a path made of plain names, e.g. Named("a", "b") is "a.b".
func Named(names ...string) Path {
	var root *Segment
	for i := len(names) - 1; i >= 0; i-- {
		root = NewNamed(names[i], false, root)
	}
	return Path{root: root}
}

func (p Path) Root() *Segment {
	return p.root
}

func (p Path) IsEmpty() bool {
	return p.root == nil
}

// Leaf returns the last segment, or nil for the empty path.
func (p Path) Leaf() *Segment {
	leaf := p.root
	for leaf != nil && leaf.child != nil {
		leaf = leaf.child
	}
	return leaf
}

// Segments iterates the chain from the root.
func (p Path) Segments() iter.Seq[*Segment] {
	return func(yield func(*Segment) bool) {
		for seg := p.root; seg != nil; seg = seg.child {
			if !yield(seg) {
				return
			}
		}
	}
}

// Len returns the number of segments.
func (p Path) Len() int {
	n := 0
	for seg := p.root; seg != nil; seg = seg.child {
		n++
	}
	return n
}

// Parent returns the path without its last segment.
func (p Path) Parent() Path {
	chain := p.root.chain()
	if len(chain) <= 1 {
		return Path{}
	}
	return Path{root: rebuild(chain[:len(chain)-1], nil)}
}

// Append grafts other onto the end of p.
func (p Path) Append(other Path) Path {
	if p.root == nil {
		return other
	}
	return Path{root: p.root.CloneWithNewChild(other.root)}
}

// Child returns p extended with a named segment.
func (p Path) Child(name string) Path {
	return p.Append(Path{root: NewNamed(name, false, nil)})
}

// Element returns p extended with an indexed segment.
func (p Path) Element(index int) (Path, error) {
	seg, err := NewIndexed(index, nil)
	if err != nil {
		return Path{}, err
	}
	return p.Append(Path{root: seg}), nil
}

func (p Path) Compare(other Path) int {
	return p.root.Compare(other.root)
}

func (p Path) Equal(other Path) bool {
	return p.root.Equal(other.root)
}

func (p Path) Hash() uint32 {
	return p.root.Hash()
}

// Contains reports whether one of p and other lies at or below the other,
// treating array segments as always matching. The empty path contains every path.
func (p Path) Contains(other Path) bool {
	if p.root == nil || other.root == nil {
		return true
	}
	return p.root.Contains(other.root)
}

// IsAtOrBelow reports whether other is p or one of its ancestors.
func (p Path) IsAtOrBelow(other Path) bool {
	return p.root.IsAtOrBelow(other.root)
}

// IsAtOrAbove reports whether other is p or one of its descendants.
func (p Path) IsAtOrAbove(other Path) bool {
	return p.root.IsAtOrAbove(other.root)
}

// String renders p, quoting only names that need it or were written quoted.
func (p Path) String() string {
	return p.root.PathString(false)
}

// Escaped renders p with every name in backticks.
func (p Path) Escaped() string {
	return p.root.PathString(true)
}

func (p Path) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Path) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
