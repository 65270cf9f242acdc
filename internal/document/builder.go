package document

import (
	"fmt"

	"github.com/jacoelho/docstream/internal/stack"
	"github.com/jacoelho/docstream/internal/value"
)

// Builder receives a document one step at a time. Put and the PutNew methods
// apply inside a map, Add and the AddNew methods inside an array or at the
// root. End closes the most recently opened container.
type Builder interface {
	Put(key string, v value.Value) error
	Add(v value.Value) error
	PutNull(key string) error
	AddNull() error
	PutNewMap(key string) error
	AddNewMap() error
	PutNewArray(key string) error
	AddNewArray() error
	EndMap() error
	EndArray() error
}

// TreeBuilder is a Builder that assembles Documents in memory. Every map
// opened at the root becomes a separate document.
type TreeBuilder struct {
	open *stack.Stack[container]
	docs []*Document
}

func NewTreeBuilder() *TreeBuilder {
	return &TreeBuilder{open: stack.New[container]()}
}

// Documents returns the completed documents in build order.
func (b *TreeBuilder) Documents() []*Document {
	return b.docs
}

// Last returns the most recently completed document, or nil.
func (b *TreeBuilder) Last() *Document {
	if len(b.docs) == 0 {
		return nil
	}
	return b.docs[len(b.docs)-1]
}

func (b *TreeBuilder) Put(key string, v value.Value) error {
	m, err := b.openMap("put " + key)
	if err != nil {
		return err
	}
	m.Put(key, v)
	return nil
}

func (b *TreeBuilder) Add(v value.Value) error {
	l, err := b.openList("add " + v.Kind().String())
	if err != nil {
		return err
	}
	l.Add(v)
	return nil
}

func (b *TreeBuilder) PutNull(key string) error {
	return b.Put(key, value.Null())
}

func (b *TreeBuilder) AddNull() error {
	return b.Add(value.Null())
}

func (b *TreeBuilder) PutNewMap(key string) error {
	child := value.NewMap()
	if err := b.Put(key, value.FromMap(child)); err != nil {
		return err
	}
	b.open.Push(container{m: child})
	return nil
}

func (b *TreeBuilder) AddNewMap() error {
	child := value.NewMap()
	if !b.open.IsEmpty() {
		if err := b.Add(value.FromMap(child)); err != nil {
			return err
		}
	}
	b.open.Push(container{m: child})
	return nil
}

func (b *TreeBuilder) PutNewArray(key string) error {
	child := value.NewList()
	if err := b.Put(key, value.FromList(child)); err != nil {
		return err
	}
	b.open.Push(container{l: child})
	return nil
}

func (b *TreeBuilder) AddNewArray() error {
	child := value.NewList()
	if err := b.Add(value.FromList(child)); err != nil {
		return err
	}
	b.open.Push(container{l: child})
	return nil
}

func (b *TreeBuilder) EndMap() error {
	closed, ok := b.open.PopIf(func(c container) bool { return c.m != nil })
	if !ok {
		return fmt.Errorf("%w: end map without an open map", ErrBuilder)
	}
	if b.open.IsEmpty() {
		b.docs = append(b.docs, New(closed.m))
	}
	return nil
}

func (b *TreeBuilder) EndArray() error {
	if _, ok := b.open.PopIf(func(c container) bool { return c.l != nil }); !ok {
		return fmt.Errorf("%w: end array without an open array", ErrBuilder)
	}
	return nil
}

func (b *TreeBuilder) openMap(op string) (*value.Map, error) {
	top, ok := b.open.Peek()
	if !ok || top.m == nil {
		return nil, fmt.Errorf("%w: %s outside a map", ErrBuilder, op)
	}
	return top.m, nil
}

func (b *TreeBuilder) openList(op string) (*value.List, error) {
	top, ok := b.open.Peek()
	if !ok || top.l == nil {
		return nil, fmt.Errorf("%w: %s outside an array", ErrBuilder, op)
	}
	return top.l, nil
}
