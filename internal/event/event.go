// Package event defines the structural event grammar of a document stream and
// the pull-based readers that produce it.
//
// A map is written as StartMap, then FieldName followed by exactly one value
// per entry, then EndMap. Arrays are StartArray, values, EndArray, and never
// contain FieldName events.
package event

import (
	"fmt"

	"github.com/jacoelho/docstream/internal/value"
)

const (
	FieldName Type = iota + 1
	Null
	Boolean
	String
	Byte
	Short
	Int
	Long
	Float
	Double
	Decimal
	Date
	Time
	Timestamp
	Interval
	Binary
	StartMap
	EndMap
	StartArray
	EndArray
)

// Type identifies an event.
type Type uint8

var typeNames = [...]string{
	FieldName:  "FIELD_NAME",
	Null:       "NULL",
	Boolean:    "BOOLEAN",
	String:     "STRING",
	Byte:       "BYTE",
	Short:      "SHORT",
	Int:        "INT",
	Long:       "LONG",
	Float:      "FLOAT",
	Double:     "DOUBLE",
	Decimal:    "DECIMAL",
	Date:       "DATE",
	Time:       "TIME",
	Timestamp:  "TIMESTAMP",
	Interval:   "INTERVAL",
	Binary:     "BINARY",
	StartMap:   "START_MAP",
	EndMap:     "END_MAP",
	StartArray: "START_ARRAY",
	EndArray:   "END_ARRAY",
}

func (t Type) String() string {
	if int(t) < len(typeNames) && typeNames[t] != "" {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", t)
}

// IsScalar reports whether t carries a scalar value.
func (t Type) IsScalar() bool {
	return t >= Null && t <= Binary
}

var scalarTypes = map[value.Kind]Type{
	value.KindNull:      Null,
	value.KindBoolean:   Boolean,
	value.KindString:    String,
	value.KindByte:      Byte,
	value.KindShort:     Short,
	value.KindInt:       Int,
	value.KindLong:      Long,
	value.KindFloat:     Float,
	value.KindDouble:    Double,
	value.KindDecimal:   Decimal,
	value.KindDate:      Date,
	value.KindTime:      Time,
	value.KindTimestamp: Timestamp,
	value.KindInterval:  Interval,
	value.KindBinary:    Binary,
}

// Event is one element of a document stream. Name is set for FieldName
// events, Value for scalar events.
type Event struct {
	Type  Type
	Name  string
	Value value.Value
}

func (e Event) String() string {
	switch {
	case e.Type == FieldName:
		return fmt.Sprintf("%s(%q)", e.Type, e.Name)
	case e.Type.IsScalar():
		return fmt.Sprintf("%s(%v)", e.Type, e.Value)
	}
	return e.Type.String()
}

// Field returns a FieldName event.
func Field(name string) Event {
	return Event{Type: FieldName, Name: name}
}

// Scalar returns the event carrying v. Maps and lists have no scalar event;
// use Flatten for them.
func Scalar(v value.Value) (Event, error) {
	t, ok := scalarTypes[v.Kind()]
	if !ok {
		return Event{}, fmt.Errorf("%w: %s is not a scalar", ErrMalformed, v.Kind())
	}
	return Event{Type: t, Value: v}, nil
}

// Of is like Scalar but panics on container values. It is meant for literals.
func Of(v value.Value) Event {
	e, err := Scalar(v)
	if err != nil {
		panic(err)
	}
	return e
}

func MapStart() Event   { return Event{Type: StartMap} }
func MapEnd() Event     { return Event{Type: EndMap} }
func ArrayStart() Event { return Event{Type: StartArray} }
func ArrayEnd() Event   { return Event{Type: EndArray} }
