package event

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jacoelho/docstream/internal/stack"
	"github.com/jacoelho/docstream/internal/value"
	"github.com/shopspring/decimal"
)

// Single-key objects with one of these keys decode to a typed scalar, e.g.
// {"$dateDay": "2024-01-31"} is a DATE.
const (
	TagLong     = "$numberLong"
	TagInt      = "$numberInt"
	TagShort    = "$numberShort"
	TagByte     = "$numberByte"
	TagFloat    = "$numberFloat"
	TagDecimal  = "$decimal"
	TagDate     = "$dateDay"
	TagTime     = "$time"
	TagDateTime = "$date"
	TagInterval = "$interval"
	TagBinary   = "$binary"
)

// TimeLayout is the textual form of TIME values.
const TimeLayout = "15:04:05.000"

var jsonTags = map[string]func(string) (value.Value, error){
	TagLong: func(s string) (value.Value, error) {
		n, err := strconv.ParseInt(s, 10, 64)
		return value.Long(n), err
	},
	TagInt: func(s string) (value.Value, error) {
		n, err := strconv.ParseInt(s, 10, 32)
		return value.Int(int32(n)), err
	},
	TagShort: func(s string) (value.Value, error) {
		n, err := strconv.ParseInt(s, 10, 16)
		return value.Short(int16(n)), err
	},
	TagByte: func(s string) (value.Value, error) {
		n, err := strconv.ParseInt(s, 10, 8)
		return value.Byte(int8(n)), err
	},
	TagFloat: func(s string) (value.Value, error) {
		f, err := strconv.ParseFloat(s, 32)
		return value.Float(float32(f)), err
	},
	TagDecimal: func(s string) (value.Value, error) {
		d, err := decimal.NewFromString(s)
		return value.Decimal(d), err
	},
	TagDate: func(s string) (value.Value, error) {
		t, err := time.Parse(time.DateOnly, s)
		return value.Date(t), err
	},
	TagTime: func(s string) (value.Value, error) {
		t, err := time.Parse("15:04:05.999999999", s)
		return value.TimeOfDay(t), err
	},
	TagDateTime: func(s string) (value.Value, error) {
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return value.Timestamp(time.UnixMilli(ms)), nil
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		return value.Timestamp(t), err
	},
	TagInterval: func(s string) (value.Value, error) {
		ms, err := strconv.ParseInt(s, 10, 64)
		return value.FromInterval(value.Interval{Millis: ms}), err
	},
	TagBinary: func(s string) (value.Value, error) {
		b, err := base64.StdEncoding.DecodeString(s)
		return value.Binary(b), err
	},
}

const (
	frameMap frameKind = iota
	frameArray
)

type frameKind uint8

// jsonFrame tracks the state of an open JSON container.
type jsonFrame struct {
	kind    frameKind
	needKey bool // true if the object expects a key or its closing brace next
}

// JSONReader turns a stream of concatenated JSON values into events. Integers
// become LONG, other numbers DOUBLE.
type JSONReader struct {
	dec     *json.Decoder
	frames  *stack.Stack[jsonFrame]
	pending []Event
}

func NewJSONReader(r io.Reader) *JSONReader {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	return &JSONReader{
		dec:    dec,
		frames: stack.New[jsonFrame](),
	}
}

func (r *JSONReader) Next() (Event, error) {
	for len(r.pending) == 0 {
		if err := r.fill(); err != nil {
			if errors.Is(err, io.EOF) && !r.frames.IsEmpty() {
				return Event{}, fmt.Errorf("%w: unexpected end of JSON input", ErrMalformed)
			}
			return Event{}, err
		}
	}

	e := r.pending[0]
	r.pending = r.pending[1:]
	return e, nil
}

func (r *JSONReader) emit(events ...Event) {
	r.pending = append(r.pending, events...)
}

// token returns io.EOF unchanged only when allowEOF is set.
func (r *JSONReader) token(allowEOF bool) (json.Token, error) {
	tok, err := r.dec.Token()
	if errors.Is(err, io.EOF) {
		if allowEOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: unexpected end of JSON input", ErrMalformed)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return tok, nil
}

func (r *JSONReader) fill() error {
	tok, err := r.token(true)
	if err != nil {
		return err
	}

	if top := r.frames.PeekRef(); top != nil && top.kind == frameMap && top.needKey {
		return r.key(tok, top)
	}
	return r.value(tok)
}

func (r *JSONReader) key(tok json.Token, top *jsonFrame) error {
	if tok == json.Delim('}') {
		r.frames.Pop()
		r.emit(MapEnd())
		return nil
	}

	key, ok := tok.(string)
	if !ok {
		return fmt.Errorf("%w: object key %v is not a string", ErrMalformed, tok)
	}
	top.needKey = false
	r.emit(Field(key))
	return nil
}

func (r *JSONReader) value(tok json.Token) error {
	if top := r.frames.PeekRef(); top != nil && top.kind == frameMap {
		top.needKey = true
	}

	d, ok := tok.(json.Delim)
	if !ok {
		e, err := plainScalar(tok)
		if err != nil {
			return err
		}
		r.emit(e)
		return nil
	}

	switch d {
	case '{':
		return r.openMap()
	case '[':
		r.frames.Push(jsonFrame{kind: frameArray})
		r.emit(ArrayStart())
		return nil
	case ']':
		if _, ok := r.frames.PopIf(func(f jsonFrame) bool { return f.kind == frameArray }); !ok {
			return fmt.Errorf("%w: unexpected ']'", ErrMalformed)
		}
		r.emit(ArrayEnd())
		return nil
	}
	return fmt.Errorf("%w: unexpected delimiter %q", ErrMalformed, d)
}

// openMap looks ahead to recognize tagged scalars before committing to a map.
func (r *JSONReader) openMap() error {
	tok, err := r.token(false)
	if err != nil {
		return err
	}
	if tok == json.Delim('}') {
		r.emit(MapStart(), MapEnd())
		return nil
	}

	key, ok := tok.(string)
	if !ok {
		return fmt.Errorf("%w: object key %v is not a string", ErrMalformed, tok)
	}
	decode, tagged := jsonTags[key]
	if !tagged {
		r.frames.Push(jsonFrame{kind: frameMap})
		r.emit(MapStart(), Field(key))
		return nil
	}

	tagValue, err := r.token(false)
	if err != nil {
		return err
	}
	if _, isDelim := tagValue.(json.Delim); isDelim {
		r.frames.Push(jsonFrame{kind: frameMap})
		r.emit(MapStart(), Field(key))
		return r.value(tagValue)
	}

	next, err := r.token(false)
	if err != nil {
		return err
	}
	if next == json.Delim('}') {
		v, err := decodeTagged(decode, tagValue)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrMalformed, key, err)
		}
		r.emit(Of(v))
		return nil
	}

	// More keys follow, so this is an ordinary object.
	plain, err := plainScalar(tagValue)
	if err != nil {
		return err
	}
	r.frames.Push(jsonFrame{kind: frameMap, needKey: true})
	r.emit(MapStart(), Field(key), plain)
	return r.key(next, r.frames.PeekRef())
}

func decodeTagged(decode func(string) (value.Value, error), tok json.Token) (value.Value, error) {
	switch t := tok.(type) {
	case string:
		return decode(t)
	case json.Number:
		return decode(t.String())
	}
	return value.Value{}, fmt.Errorf("unexpected %T", tok)
}

func plainScalar(tok json.Token) (Event, error) {
	switch t := tok.(type) {
	case nil:
		return Of(value.Null()), nil
	case bool:
		return Of(value.Bool(t)), nil
	case string:
		return Of(value.String(t)), nil
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return Of(value.Long(n)), nil
		}
		f, err := t.Float64()
		if err != nil {
			return Event{}, fmt.Errorf("%w: number %s: %v", ErrMalformed, t, err)
		}
		return Of(value.Double(f)), nil
	}
	return Event{}, fmt.Errorf("%w: unexpected token %v", ErrMalformed, tok)
}
