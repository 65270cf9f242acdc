package document

import (
	"errors"
	"fmt"
	"io"

	"github.com/jacoelho/docstream/internal/event"
	"github.com/jacoelho/docstream/internal/stack"
	"github.com/jacoelho/docstream/internal/value"
)

// container is an open map or list; exactly one field is set.
type container struct {
	m *value.Map
	l *value.List
}

func (c container) kind() string {
	if c.m != nil {
		return "map"
	}
	return "array"
}

// Materializer turns an event stream into Documents. A Materializer may be
// reused across streams once Next has returned io.EOF or an error.
type Materializer struct {
	open   *stack.Stack[container]
	key    string
	hasKey bool
}

func NewMaterializer() *Materializer {
	return &Materializer{open: stack.New[container]()}
}

// Materialize reads the first document of r.
func Materialize(r event.Reader) (*Document, error) {
	doc, err := NewMaterializer().Next(r)
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: no document in stream", ErrDecoding)
	}
	return doc, err
}

// Next consumes events until the next document closes. It returns io.EOF when
// r ends between documents, and ErrDecoding for grammar violations. Reader
// errors are returned unchanged.
func (m *Materializer) Next(r event.Reader) (*Document, error) {
	for {
		e, err := r.Next()
		if errors.Is(err, io.EOF) {
			if m.open.IsEmpty() {
				return nil, io.EOF
			}
			depth := m.open.Size()
			m.reset()
			return nil, fmt.Errorf("%w: stream ended with %d open containers", ErrDecoding, depth)
		}
		if err != nil {
			m.reset()
			return nil, err
		}

		doc, err := m.apply(e)
		if err != nil {
			m.reset()
			return nil, err
		}
		if doc != nil {
			return doc, nil
		}
	}
}

func (m *Materializer) reset() {
	m.open.Reset()
	m.key, m.hasKey = "", false
}

func (m *Materializer) apply(e event.Event) (*Document, error) {
	switch {
	case e.Type == event.FieldName:
		top, ok := m.open.Peek()
		if !ok || top.m == nil {
			return nil, fmt.Errorf("%w: field %q outside a map", ErrDecoding, e.Name)
		}
		if m.hasKey {
			return nil, fmt.Errorf("%w: field %q follows field %q without a value", ErrDecoding, e.Name, m.key)
		}
		m.key, m.hasKey = e.Name, true
		return nil, nil

	case e.Type.IsScalar():
		return nil, m.place(e.Value)

	case e.Type == event.StartMap:
		child := value.NewMap()
		if m.open.IsEmpty() {
			m.open.Push(container{m: child})
			return nil, nil
		}
		if err := m.place(value.FromMap(child)); err != nil {
			return nil, err
		}
		m.open.Push(container{m: child})
		return nil, nil

	case e.Type == event.StartArray:
		child := value.NewList()
		if err := m.place(value.FromList(child)); err != nil {
			return nil, err
		}
		m.open.Push(container{l: child})
		return nil, nil

	case e.Type == event.EndMap:
		if m.hasKey {
			return nil, fmt.Errorf("%w: field %q has no value", ErrDecoding, m.key)
		}
		closed, ok := m.open.PopIf(func(c container) bool { return c.m != nil })
		if !ok {
			return nil, fmt.Errorf("%w: %s %s", ErrDecoding, e.Type, m.openDescription())
		}
		if m.open.IsEmpty() {
			return New(closed.m), nil
		}
		return nil, nil

	case e.Type == event.EndArray:
		if _, ok := m.open.PopIf(func(c container) bool { return c.l != nil }); !ok {
			return nil, fmt.Errorf("%w: %s %s", ErrDecoding, e.Type, m.openDescription())
		}
		return nil, nil
	}

	return nil, fmt.Errorf("%w: unknown event %s", ErrDecoding, e.Type)
}

func (m *Materializer) openDescription() string {
	top, ok := m.open.Peek()
	if !ok {
		return "with no open container"
	}
	return "while " + top.kind() + " is open"
}

// place inserts v into the open container using the pending key.
func (m *Materializer) place(v value.Value) error {
	top, ok := m.open.Peek()
	if !ok {
		return fmt.Errorf("%w: %s value at document root", ErrDecoding, v.Kind())
	}

	if top.m != nil {
		if !m.hasKey {
			return fmt.Errorf("%w: %s value in map without a field name", ErrDecoding, v.Kind())
		}
		top.m.Put(m.key, v)
		m.key, m.hasKey = "", false
		return nil
	}

	top.l.Add(v)
	return nil
}
