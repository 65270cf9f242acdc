// Package projection filters a document event stream down to the subtrees
// selected by a set of field paths.
package projection

import (
	"errors"
	"fmt"
	"io"

	"github.com/jacoelho/docstream/internal/event"
	"github.com/jacoelho/docstream/internal/fieldpath"
	"github.com/jacoelho/docstream/internal/stack"
)

type frame struct {
	path    fieldpath.Path
	array   bool
	index   int
	pending fieldpath.Path // path of the value following a kept field name
	keepAll bool
}

// Reader keeps a field when one of the requested paths contains it. Fields
// inside arrays are always kept, and ancestors of a requested field are kept
// as containers whose other entries are dropped. Events that break the
// document grammar are passed through untouched so the consumer can report
// them.
type Reader struct {
	src    event.Reader
	paths  []fieldpath.Path
	frames *stack.Stack[frame]
}

// NewReader filters src by paths. With no paths every event is kept.
func NewReader(src event.Reader, paths ...fieldpath.Path) *Reader {
	return &Reader{
		src:    src,
		paths:  paths,
		frames: stack.New[frame](),
	}
}

func (r *Reader) Next() (event.Event, error) {
	for {
		e, err := r.src.Next()
		if err != nil {
			return e, err
		}

		keep, err := r.filter(e)
		if err != nil {
			return event.Event{}, err
		}
		if keep {
			return e, nil
		}
	}
}

func (r *Reader) filter(e event.Event) (bool, error) {
	top := r.frames.PeekRef()
	if top == nil {
		if e.Type == event.StartMap {
			r.frames.Push(frame{keepAll: len(r.paths) == 0})
		}
		return true, nil
	}

	switch {
	case e.Type == event.EndMap || e.Type == event.EndArray:
		r.frames.Pop()
		return true, nil

	case !top.array && e.Type == event.FieldName:
		child := top.path.Child(e.Name)
		if top.keepAll || r.wanted(child) {
			top.pending = child
			return true, nil
		}
		return false, r.skipValue()

	case !top.array:
		r.enter(e, top.pending, top.keepAll)
		return true, nil

	case e.Type == event.FieldName:
		return true, nil
	}

	child, err := top.path.Element(top.index)
	if err != nil {
		return false, err
	}
	top.index++
	if !top.keepAll && !r.wanted(child) {
		return false, r.skip(e)
	}
	r.enter(e, child, top.keepAll)
	return true, nil
}

func (r *Reader) enter(e event.Event, path fieldpath.Path, parentKeepsAll bool) {
	switch e.Type {
	case event.StartMap, event.StartArray:
		r.frames.Push(frame{
			path:    path,
			array:   e.Type == event.StartArray,
			keepAll: parentKeepsAll || r.covered(path),
		})
	}
}

// wanted reports whether p lies on the way to, or inside, a requested path.
func (r *Reader) wanted(p fieldpath.Path) bool {
	for _, q := range r.paths {
		if q.Contains(p) {
			return true
		}
	}
	return false
}

// covered reports whether p is a requested path or lies below one.
func (r *Reader) covered(p fieldpath.Path) bool {
	for _, q := range r.paths {
		if p.IsAtOrBelow(q) {
			return true
		}
	}
	return false
}

func (r *Reader) skipValue() error {
	e, err := r.src.Next()
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: stream ended after a field name", event.ErrMalformed)
	}
	if err != nil {
		return err
	}
	switch e.Type {
	case event.FieldName, event.EndMap, event.EndArray:
		return fmt.Errorf("%w: %s after a field name", event.ErrMalformed, e.Type)
	}
	return r.skip(e)
}

// skip discards the rest of a value whose first event is e.
func (r *Reader) skip(e event.Event) error {
	depth := 0
	for {
		switch e.Type {
		case event.StartMap, event.StartArray:
			depth++
		case event.EndMap, event.EndArray:
			depth--
		}
		if depth <= 0 {
			return nil
		}

		var err error
		if e, err = r.src.Next(); err != nil {
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("%w: stream ended inside a dropped value", event.ErrMalformed)
			}
			return err
		}
	}
}
