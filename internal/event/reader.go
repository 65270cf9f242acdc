package event

import (
	"errors"
	"io"

	"github.com/jacoelho/docstream/internal/value"
)

// Reader is a pull-based event source. Next returns io.EOF once the source is
// exhausted; any other error is terminal for the source.
type Reader interface {
	Next() (Event, error)
}

// SliceReader replays a fixed list of events.
type SliceReader struct {
	events []Event
	pos    int
}

func NewSliceReader(events ...Event) *SliceReader {
	return &SliceReader{events: events}
}

func (r *SliceReader) Next() (Event, error) {
	if r.pos >= len(r.events) {
		return Event{}, io.EOF
	}
	e := r.events[r.pos]
	r.pos++
	return e, nil
}

// Collect drains r.
func Collect(r Reader) ([]Event, error) {
	var events []Event
	for {
		e, err := r.Next()
		if errors.Is(err, io.EOF) {
			return events, nil
		}
		if err != nil {
			return events, err
		}
		events = append(events, e)
	}
}

// Flatten returns the events describing m as a document.
func Flatten(m *value.Map) []Event {
	return appendValue(nil, value.FromMap(m))
}

func appendValue(events []Event, v value.Value) []Event {
	switch v.Kind() {
	case value.KindMap:
		m, _ := v.Map()
		events = append(events, MapStart())
		for k, child := range m.All() {
			events = append(events, Field(k))
			events = appendValue(events, child)
		}
		return append(events, MapEnd())
	case value.KindArray:
		l, _ := v.List()
		events = append(events, ArrayStart())
		for _, child := range l.All() {
			events = appendValue(events, child)
		}
		return append(events, ArrayEnd())
	}
	return append(events, Of(v))
}
