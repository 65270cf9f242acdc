package document

import (
	"errors"
	"fmt"
	"io"

	"github.com/jacoelho/docstream/internal/event"
)

// Copy replays the next document of r into b. A leading field name makes
// the document a nested map of the builder's open map (PutNewMap); otherwise
// it starts with AddNewMap. Copy returns io.EOF when r has no more events.
// Builder errors are returned unchanged.
func Copy(r event.Reader, b Builder) error {
	e, err := r.Next()
	if err != nil {
		return err
	}

	if e.Type == event.FieldName {
		name := e.Name
		if e, err = expect(r); err != nil {
			return err
		}
		if e.Type != event.StartMap {
			return fmt.Errorf("%w: field %q starts with %s, want %s", ErrDecoding, name, e.Type, event.StartMap)
		}
		if err := b.PutNewMap(name); err != nil {
			return err
		}
		return copyMap(r, b)
	}

	if e.Type != event.StartMap {
		return fmt.Errorf("%w: document starts with %s", ErrDecoding, e.Type)
	}
	if err := b.AddNewMap(); err != nil {
		return err
	}
	return copyMap(r, b)
}

// CopyAll replays every document of r into b.
func CopyAll(r event.Reader, b Builder) error {
	for {
		err := Copy(r, b)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// expect reads an event that must exist inside an open container.
func expect(r event.Reader) (event.Event, error) {
	e, err := r.Next()
	if errors.Is(err, io.EOF) {
		return e, fmt.Errorf("%w: stream ended inside a document", ErrDecoding)
	}
	return e, err
}

// copyMap copies entries until the END_MAP closing the current map.
func copyMap(r event.Reader, b Builder) error {
	for {
		e, err := expect(r)
		if err != nil {
			return err
		}

		switch e.Type {
		case event.EndMap:
			return b.EndMap()
		case event.FieldName:
		default:
			return fmt.Errorf("%w: %s in map, want %s", ErrDecoding, e.Type, event.FieldName)
		}

		name := e.Name
		e, err = expect(r)
		if err != nil {
			return err
		}

		switch {
		case e.Type == event.Null:
			err = b.PutNull(name)
		case e.Type.IsScalar():
			err = b.Put(name, e.Value)
		case e.Type == event.StartMap:
			if err = b.PutNewMap(name); err == nil {
				err = copyMap(r, b)
			}
		case e.Type == event.StartArray:
			if err = b.PutNewArray(name); err == nil {
				err = copyArray(r, b)
			}
		default:
			err = fmt.Errorf("%w: %s after field %q", ErrDecoding, e.Type, name)
		}
		if err != nil {
			return err
		}
	}
}

// copyArray copies elements until the END_ARRAY closing the current array.
func copyArray(r event.Reader, b Builder) error {
	for {
		e, err := expect(r)
		if err != nil {
			return err
		}

		switch {
		case e.Type == event.EndArray:
			return b.EndArray()
		case e.Type == event.Null:
			err = b.AddNull()
		case e.Type.IsScalar():
			err = b.Add(e.Value)
		case e.Type == event.StartMap:
			if err = b.AddNewMap(); err == nil {
				err = copyMap(r, b)
			}
		case e.Type == event.StartArray:
			if err = b.AddNewArray(); err == nil {
				err = copyArray(r, b)
			}
		default:
			err = fmt.Errorf("%w: %s in array", ErrDecoding, e.Type)
		}
		if err != nil {
			return err
		}
	}
}
