// Package document assembles flat event streams into document trees and
// replays them into builders.
//
// A Document is always rooted at a map. The Materializer tracks open
// containers on an explicit stack, so arbitrarily deep input never grows the
// call stack, while Copy mirrors the same grammar through mutual recursion and
// hands every step to a Builder.
package document

import (
	"github.com/jacoelho/docstream/internal/event"
	"github.com/jacoelho/docstream/internal/fieldpath"
	"github.com/jacoelho/docstream/internal/value"
)

// Document is a map-rooted value tree.
type Document struct {
	root *value.Map
}

// New wraps root; a nil root yields an empty document.
func New(root *value.Map) *Document {
	if root == nil {
		root = value.NewMap()
	}
	return &Document{root: root}
}

func (d *Document) Root() *value.Map {
	return d.root
}

// Get resolves p against the document. Named segments match keys ignoring
// case, preferring an exact match; an unspecified index resolves nothing.
func (d *Document) Get(p fieldpath.Path) (value.Value, bool) {
	current := value.FromMap(d.root)
	for seg := range p.Segments() {
		next, ok := step(current, seg)
		if !ok {
			return value.Value{}, false
		}
		current = next
	}
	return current, true
}

func step(v value.Value, seg *fieldpath.Segment) (value.Value, bool) {
	if seg.IsIndexed() {
		l, ok := v.List()
		if !ok || !seg.HasIndex() {
			return value.Value{}, false
		}
		return l.Get(seg.Index())
	}

	m, ok := v.Map()
	if !ok {
		return value.Value{}, false
	}
	if exact, ok := m.Get(seg.Name()); ok {
		return exact, true
	}
	for k, child := range m.All() {
		if seg.MatchesName(k) {
			return child, true
		}
	}
	return value.Value{}, false
}

func (d *Document) Equal(other *Document) bool {
	if d == nil || other == nil {
		return d == other
	}
	return d.root.Equal(other.root)
}

func (d *Document) Interface() map[string]any {
	return d.root.Interface()
}

// Events returns a reader replaying the document as events.
func (d *Document) Events() event.Reader {
	return event.NewSliceReader(event.Flatten(d.root)...)
}

func (d *Document) String() string {
	return value.FromMap(d.root).String()
}
