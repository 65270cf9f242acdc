// Package value holds the node types of a document tree: ordered maps, lists
// and typed scalars.
package value

import (
	"bytes"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	KindNull Kind = iota
	KindBoolean
	KindString
	KindByte
	KindShort
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindDecimal
	KindDate
	KindTime
	KindTimestamp
	KindInterval
	KindBinary
	KindMap
	KindArray
)

// Kind identifies the type held by a Value.
type Kind uint8

var kindNames = [...]string{
	KindNull:      "NULL",
	KindBoolean:   "BOOLEAN",
	KindString:    "STRING",
	KindByte:      "BYTE",
	KindShort:     "SHORT",
	KindInt:       "INT",
	KindLong:      "LONG",
	KindFloat:     "FLOAT",
	KindDouble:    "DOUBLE",
	KindDecimal:   "DECIMAL",
	KindDate:      "DATE",
	KindTime:      "TIME",
	KindTimestamp: "TIMESTAMP",
	KindInterval:  "INTERVAL",
	KindBinary:    "BINARY",
	KindMap:       "MAP",
	KindArray:     "ARRAY",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// IsScalar reports whether k is neither a map nor an array.
func (k Kind) IsScalar() bool {
	return k != KindMap && k != KindArray
}

// Interval is a duration split the way calendars need it.
type Interval struct {
	Months int32
	Days   int32
	Millis int64
}

// Value is a node of a document tree. The zero Value is null.
type Value struct {
	kind Kind
	v    any
}

func Null() Value { return Value{} }

func Bool(b bool) Value { return Value{kind: KindBoolean, v: b} }
func String(s string) Value { return Value{kind: KindString, v: s} }
func Byte(n int8) Value { return Value{kind: KindByte, v: n} }
func Short(n int16) Value { return Value{kind: KindShort, v: n} }
func Int(n int32) Value { return Value{kind: KindInt, v: n} }
func Long(n int64) Value { return Value{kind: KindLong, v: n} }
func Float(f float32) Value { return Value{kind: KindFloat, v: f} }
func Double(f float64) Value { return Value{kind: KindDouble, v: f} }
func Decimal(d decimal.Decimal) Value { return Value{kind: KindDecimal, v: d} }
func FromInterval(i Interval) Value { return Value{kind: KindInterval, v: i} }
func Binary(b []byte) Value { return Value{kind: KindBinary, v: bytes.Clone(b)} }

// Date keeps only the calendar day of t, in UTC.
func Date(t time.Time) Value {
	y, m, d := t.Date()
	return Value{kind: KindDate, v: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// TimeOfDay keeps only the wall clock part of t, with millisecond precision.
func TimeOfDay(t time.Time) Value {
	ms := t.Nanosecond() / int(time.Millisecond) * int(time.Millisecond)
	return Value{kind: KindTime, v: time.Date(1970, time.January, 1, t.Hour(), t.Minute(), t.Second(), ms, time.UTC)}
}

func Timestamp(t time.Time) Value { return Value{kind: KindTimestamp, v: t.UTC()} }

func FromMap(m *Map) Value { return Value{kind: KindMap, v: m} }
func FromList(l *List) Value { return Value{kind: KindArray, v: l} }

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) Bool() (bool, bool) {
	b, ok := v.v.(bool)
	return b, ok
}

func (v Value) Str() (string, bool) {
	s, ok := v.v.(string)
	return s, ok
}

// Int64 returns any integral kind widened to int64.
func (v Value) Int64() (int64, bool) {
	switch n := v.v.(type) {
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	}
	return 0, false
}

// Float64 returns FLOAT and DOUBLE values widened to float64.
func (v Value) Float64() (float64, bool) {
	switch f := v.v.(type) {
	case float32:
		return float64(f), true
	case float64:
		return f, true
	}
	return 0, false
}

func (v Value) Decimal() (decimal.Decimal, bool) {
	d, ok := v.v.(decimal.Decimal)
	return d, ok
}

// Time returns the instant behind DATE, TIME and TIMESTAMP values.
func (v Value) Time() (time.Time, bool) {
	t, ok := v.v.(time.Time)
	return t, ok
}

func (v Value) Interval() (Interval, bool) {
	i, ok := v.v.(Interval)
	return i, ok
}

func (v Value) Binary() ([]byte, bool) {
	b, ok := v.v.([]byte)
	return b, ok
}

func (v Value) Map() (*Map, bool) {
	m, ok := v.v.(*Map)
	return m, ok
}

func (v Value) List() (*List, bool) {
	l, ok := v.v.(*List)
	return l, ok
}

// Equal compares kinds and contents; maps compare key order too.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}

	switch v.kind {
	case KindNull:
		return true
	case KindDecimal:
		a, _ := v.Decimal()
		b, _ := other.Decimal()
		return a.Equal(b)
	case KindDate, KindTime, KindTimestamp:
		a, _ := v.Time()
		b, _ := other.Time()
		return a.Equal(b)
	case KindBinary:
		a, _ := v.Binary()
		b, _ := other.Binary()
		return bytes.Equal(a, b)
	case KindMap:
		a, _ := v.Map()
		b, _ := other.Map()
		return a.Equal(b)
	case KindArray:
		a, _ := v.List()
		b, _ := other.List()
		return a.Equal(b)
	}
	return v.v == other.v
}

// Interface converts v to plain Go values: map[string]any, []any, bool,
// string, int64, float64, decimal.Decimal, time.Time, Interval or []byte.
func (v Value) Interface() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindByte, KindShort, KindInt, KindLong:
		n, _ := v.Int64()
		return n
	case KindFloat, KindDouble:
		f, _ := v.Float64()
		return f
	case KindMap:
		m, _ := v.Map()
		return m.Interface()
	case KindArray:
		l, _ := v.List()
		return l.Interface()
	}
	return v.v
}

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindDate:
		t, _ := v.Time()
		return t.Format(time.DateOnly)
	case KindTime:
		t, _ := v.Time()
		return t.Format("15:04:05.000")
	case KindTimestamp:
		t, _ := v.Time()
		return t.Format(time.RFC3339Nano)
	}
	return fmt.Sprint(v.Interface())
}
