package value

import (
	"iter"
	"slices"
)

// Map is an ordered map: keys are unique and iteration follows insertion order.
type Map struct {
	keys    []string
	entries map[string]Value
}

func NewMap() *Map {
	return &Map{entries: make(map[string]Value)}
}

// Put stores v under key. A key that already exists keeps its position.
func (m *Map) Put(key string, v Value) {
	if _, exists := m.entries[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.entries[key] = v
}

func (m *Map) Get(key string) (Value, bool) {
	v, ok := m.entries[key]
	return v, ok
}

// Delete removes key and returns whether it was present.
func (m *Map) Delete(key string) bool {
	if _, exists := m.entries[key]; !exists {
		return false
	}
	delete(m.entries, key)
	m.keys = slices.DeleteFunc(m.keys, func(k string) bool { return k == key })
	return true
}

func (m *Map) Len() int {
	return len(m.keys)
}

func (m *Map) Keys() []string {
	return slices.Clone(m.keys)
}

// All iterates entries in insertion order.
func (m *Map) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for _, k := range m.keys {
			if !yield(k, m.entries[k]) {
				return
			}
		}
	}
}

func (m *Map) Equal(other *Map) bool {
	if m == nil || other == nil {
		return m == other
	}
	if !slices.Equal(m.keys, other.keys) {
		return false
	}
	for k, v := range m.entries {
		if !v.Equal(other.entries[k]) {
			return false
		}
	}
	return true
}

func (m *Map) Interface() map[string]any {
	out := make(map[string]any, len(m.keys))
	for k, v := range m.All() {
		out[k] = v.Interface()
	}
	return out
}

// List is an ordered sequence of values.
type List struct {
	items []Value
}

func NewList(items ...Value) *List {
	return &List{items: items}
}

func (l *List) Add(v Value) {
	l.items = append(l.items, v)
}

func (l *List) Get(i int) (Value, bool) {
	if i < 0 || i >= len(l.items) {
		return Value{}, false
	}
	return l.items[i], true
}

func (l *List) Len() int {
	return len(l.items)
}

func (l *List) All() iter.Seq2[int, Value] {
	return slices.All(l.items)
}

func (l *List) Equal(other *List) bool {
	if l == nil || other == nil {
		return l == other
	}
	return slices.EqualFunc(l.items, other.items, Value.Equal)
}

func (l *List) Interface() []any {
	out := make([]any, len(l.items))
	for i, v := range l.items {
		out[i] = v.Interface()
	}
	return out
}
