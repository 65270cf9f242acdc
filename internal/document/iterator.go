package document

import (
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/jacoelho/docstream/internal/event"
)

// Iterator yields one Document per event source, in source order. It is
// forward-only: a drained source cannot be replayed.
type Iterator struct {
	next func() (event.Reader, bool)
	stop func()

	peeked    event.Reader
	hasPeeked bool
	done      bool

	materializer *Materializer
}

func NewIterator(sources iter.Seq[event.Reader]) *Iterator {
	next, stop := iter.Pull(sources)
	return &Iterator{
		next:         next,
		stop:         stop,
		materializer: NewMaterializer(),
	}
}

// HasNext reports whether another source is available. Repeated calls without
// Next look at the same source.
func (it *Iterator) HasNext() bool {
	if it.hasPeeked {
		return true
	}
	if it.done {
		return false
	}

	r, ok := it.next()
	if !ok {
		it.done = true
		it.stop()
		return false
	}
	it.peeked, it.hasPeeked = r, true
	return true
}

// Next drains the next source and returns the last document it completed.
// Once every source is consumed Next returns io.EOF.
func (it *Iterator) Next() (*Document, error) {
	if !it.HasNext() {
		return nil, io.EOF
	}
	r := it.peeked
	it.peeked, it.hasPeeked = nil, false

	doc, err := it.drain(r)
	if c, ok := r.(io.Closer); ok {
		if closeErr := c.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close source: %w", closeErr)
		}
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (it *Iterator) drain(r event.Reader) (*Document, error) {
	var last *Document
	for {
		doc, err := it.materializer.Next(r)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		last = doc
	}

	if last == nil {
		return nil, fmt.Errorf("%w: source produced no document", ErrDecoding)
	}
	return last, nil
}

// Remove always fails: documents cannot be removed during iteration.
func (it *Iterator) Remove() error {
	return fmt.Errorf("%w: remove", ErrUnsupported)
}

// All adapts the iterator to a range-over-func sequence. Iteration stops after
// the first error.
func (it *Iterator) All() iter.Seq2[*Document, error] {
	return func(yield func(*Document, error) bool) {
		for it.HasNext() {
			doc, err := it.Next()
			if !yield(doc, err) || err != nil {
				return
			}
		}
	}
}

// Close releases the source sequence. It is safe to call more than once.
func (it *Iterator) Close() {
	it.done = true
	it.peeked, it.hasPeeked = nil, false
	it.stop()
}
