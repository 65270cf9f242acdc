// Package output renders documents as JSON or YAML.
package output

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jacoelho/docstream/internal/document"
	"github.com/jacoelho/docstream/internal/event"
	"github.com/jacoelho/docstream/internal/stack"
	"github.com/jacoelho/docstream/internal/value"
)

const millisPerDay = 24 * 60 * 60 * 1000

type jsonFrame struct {
	array   bool
	entries int
}

// JSONBuilder is a document.Builder that writes JSON text as it is called.
// Each top-level value becomes one line, or an indented block with Indent.
// Kinds JSON cannot express natively are written as single-key tag objects
// that event.JSONReader reads back.
type JSONBuilder struct {
	w      io.Writer
	indent string
	buf    bytes.Buffer
	open   *stack.Stack[jsonFrame]
}

var _ document.Builder = (*JSONBuilder)(nil)

// NewJSONBuilder writes to w; a non-empty indent pretty-prints each value.
func NewJSONBuilder(w io.Writer, indent string) *JSONBuilder {
	return &JSONBuilder{w: w, indent: indent, open: stack.New[jsonFrame]()}
}

func (b *JSONBuilder) Put(key string, v value.Value) error {
	if err := b.key(key); err != nil {
		return err
	}
	return b.finish(writeJSONValue(&b.buf, v))
}

func (b *JSONBuilder) Add(v value.Value) error {
	if err := b.element(); err != nil {
		return err
	}
	return b.finish(writeJSONValue(&b.buf, v))
}

func (b *JSONBuilder) PutNull(key string) error {
	return b.Put(key, value.Null())
}

func (b *JSONBuilder) AddNull() error {
	return b.Add(value.Null())
}

func (b *JSONBuilder) PutNewMap(key string) error {
	if err := b.key(key); err != nil {
		return err
	}
	b.start('{', false)
	return nil
}

func (b *JSONBuilder) AddNewMap() error {
	if err := b.element(); err != nil {
		return err
	}
	b.start('{', false)
	return nil
}

func (b *JSONBuilder) PutNewArray(key string) error {
	if err := b.key(key); err != nil {
		return err
	}
	b.start('[', true)
	return nil
}

func (b *JSONBuilder) AddNewArray() error {
	if err := b.element(); err != nil {
		return err
	}
	b.start('[', true)
	return nil
}

func (b *JSONBuilder) EndMap() error {
	if _, ok := b.open.PopIf(func(f jsonFrame) bool { return !f.array }); !ok {
		return fmt.Errorf("%w: end map without an open map", document.ErrBuilder)
	}
	b.buf.WriteByte('}')
	return b.finish(nil)
}

func (b *JSONBuilder) EndArray() error {
	if _, ok := b.open.PopIf(func(f jsonFrame) bool { return f.array }); !ok {
		return fmt.Errorf("%w: end array without an open array", document.ErrBuilder)
	}
	b.buf.WriteByte(']')
	return b.finish(nil)
}

// Reset drops a partially written value so the builder can start over.
func (b *JSONBuilder) Reset() {
	b.buf.Reset()
	b.open.Reset()
}

func (b *JSONBuilder) start(delim byte, array bool) {
	b.buf.WriteByte(delim)
	b.open.Push(jsonFrame{array: array})
}

// key writes the separator and key of a map entry.
func (b *JSONBuilder) key(key string) error {
	top := b.open.PeekRef()
	if top == nil || top.array {
		return fmt.Errorf("%w: field %q outside a map", document.ErrBuilder, key)
	}
	if top.entries > 0 {
		b.buf.WriteByte(',')
	}
	top.entries++
	writeJSONString(&b.buf, key)
	b.buf.WriteByte(':')
	return nil
}

// element writes the separator of an array element. At the root it is a no-op.
func (b *JSONBuilder) element() error {
	top := b.open.PeekRef()
	if top == nil {
		return nil
	}
	if !top.array {
		return fmt.Errorf("%w: array element inside a map", document.ErrBuilder)
	}
	if top.entries > 0 {
		b.buf.WriteByte(',')
	}
	top.entries++
	return nil
}

// finish flushes the buffer once a top-level value is complete.
func (b *JSONBuilder) finish(err error) error {
	if err != nil || !b.open.IsEmpty() {
		return err
	}
	defer b.buf.Reset()

	out := b.buf.Bytes()
	if b.indent != "" {
		var indented bytes.Buffer
		if err := json.Indent(&indented, out, "", b.indent); err != nil {
			return fmt.Errorf("indent JSON: %w", err)
		}
		out = indented.Bytes()
	}
	if _, err := b.w.Write(append(out, '\n')); err != nil {
		return fmt.Errorf("write JSON: %w", err)
	}
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) {
	enc, _ := json.Marshal(s) // strings always marshal
	buf.Write(enc)
}

func writeTagged(buf *bytes.Buffer, tag, text string) {
	buf.WriteByte('{')
	writeJSONString(buf, tag)
	buf.WriteByte(':')
	writeJSONString(buf, text)
	buf.WriteByte('}')
}

func writeJSONValue(buf *bytes.Buffer, v value.Value) error {
	switch v.Kind() {
	case value.KindNull:
		buf.WriteString("null")
	case value.KindBoolean:
		b, _ := v.Bool()
		buf.WriteString(strconv.FormatBool(b))
	case value.KindString:
		s, _ := v.Str()
		writeJSONString(buf, s)
	case value.KindByte:
		n, _ := v.Int64()
		writeTagged(buf, event.TagByte, strconv.FormatInt(n, 10))
	case value.KindShort:
		n, _ := v.Int64()
		writeTagged(buf, event.TagShort, strconv.FormatInt(n, 10))
	case value.KindInt:
		n, _ := v.Int64()
		writeTagged(buf, event.TagInt, strconv.FormatInt(n, 10))
	case value.KindLong:
		n, _ := v.Int64()
		buf.WriteString(strconv.FormatInt(n, 10))
	case value.KindFloat:
		f, _ := v.Float64()
		writeTagged(buf, event.TagFloat, strconv.FormatFloat(f, 'g', -1, 32))
	case value.KindDouble:
		f, _ := v.Float64()
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return fmt.Errorf("%w: DOUBLE %v has no JSON form", document.ErrBuilder, f)
		}
		s := strconv.FormatFloat(f, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0" // keep it a DOUBLE when read back
		}
		buf.WriteString(s)
	case value.KindDecimal:
		d, _ := v.Decimal()
		writeTagged(buf, event.TagDecimal, d.String())
	case value.KindDate:
		t, _ := v.Time()
		writeTagged(buf, event.TagDate, t.Format(time.DateOnly))
	case value.KindTime:
		t, _ := v.Time()
		writeTagged(buf, event.TagTime, t.Format(event.TimeLayout))
	case value.KindTimestamp:
		t, _ := v.Time()
		writeTagged(buf, event.TagDateTime, t.Format(time.RFC3339Nano))
	case value.KindInterval:
		i, _ := v.Interval()
		writeTagged(buf, event.TagInterval, strconv.FormatInt(intervalMillis(i), 10))
	case value.KindBinary:
		b, _ := v.Binary()
		writeTagged(buf, event.TagBinary, base64.StdEncoding.EncodeToString(b))
	case value.KindMap:
		m, _ := v.Map()
		buf.WriteByte('{')
		i := 0
		for k, child := range m.All() {
			if i > 0 {
				buf.WriteByte(',')
			}
			i++
			writeJSONString(buf, k)
			buf.WriteByte(':')
			if err := writeJSONValue(buf, child); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case value.KindArray:
		l, _ := v.List()
		buf.WriteByte('[')
		for i, child := range l.All() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONValue(buf, child); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		return fmt.Errorf("%w: unknown kind %s", document.ErrBuilder, v.Kind())
	}
	return nil
}

// intervalMillis flattens an interval, counting a month as 30 days.
func intervalMillis(i value.Interval) int64 {
	return i.Millis + int64(i.Days)*millisPerDay + int64(i.Months)*30*millisPerDay
}
