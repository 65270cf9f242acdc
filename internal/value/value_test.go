package value

import (
	"reflect"
	"slices"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestMapKeepsInsertionOrder(t *testing.T) {
	m := NewMap()
	m.Put("b", Long(1))
	m.Put("a", Long(2))
	m.Put("c", Long(3))
	m.Put("a", String("replaced"))

	if got, want := m.Keys(), []string{"b", "a", "c"}; !slices.Equal(got, want) {
		t.Fatalf("Keys() = %v, want %v", got, want)
	}
	if v, ok := m.Get("a"); !ok || !v.Equal(String("replaced")) {
		t.Errorf("Get(a) = %v, %t", v, ok)
	}

	if !m.Delete("b") || m.Delete("missing") {
		t.Errorf("Delete() results unexpected")
	}
	if got, want := m.Keys(), []string{"a", "c"}; !slices.Equal(got, want) {
		t.Errorf("Keys() after delete = %v, want %v", got, want)
	}
}

func TestEqual(t *testing.T) {
	build := func(order ...string) *Map {
		m := NewMap()
		for _, k := range order {
			m.Put(k, Int(1))
		}
		return m
	}

	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{name: "null", a: Null(), b: Value{}, want: true},
		{name: "kinds_differ", a: Int(1), b: Long(1), want: false},
		{name: "decimal_scale", a: Decimal(decimal.RequireFromString("1.50")), b: Decimal(decimal.RequireFromString("1.5")), want: true},
		{name: "binary", a: Binary([]byte{1, 2}), b: Binary([]byte{1, 2}), want: true},
		{name: "map_same_order", a: FromMap(build("x", "y")), b: FromMap(build("x", "y")), want: true},
		{name: "map_other_order", a: FromMap(build("x", "y")), b: FromMap(build("y", "x")), want: false},
		{name: "lists", a: FromList(NewList(Bool(true), Null())), b: FromList(NewList(Bool(true), Null())), want: true},
		{name: "list_lengths", a: FromList(NewList(Bool(true))), b: FromList(NewList()), want: false},
		{name: "interval", a: FromInterval(Interval{Days: 2}), b: FromInterval(Interval{Days: 2}), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %t, want %t", got, tt.want)
			}
		})
	}
}

func TestTemporalConstructors(t *testing.T) {
	ts := time.Date(2024, time.March, 5, 13, 14, 15, 987654321, time.FixedZone("X", 3600))

	if got := Date(ts).String(); got != "2024-03-05" {
		t.Errorf("Date().String() = %q", got)
	}
	if got := TimeOfDay(ts).String(); got != "13:14:15.987" {
		t.Errorf("TimeOfDay().String() = %q", got)
	}
	if got, _ := Timestamp(ts).Time(); got.Location() != time.UTC || !got.Equal(ts) {
		t.Errorf("Timestamp() = %v", got)
	}
}

func TestInterface(t *testing.T) {
	inner := NewMap()
	inner.Put("n", Short(7))
	root := NewMap()
	root.Put("inner", FromMap(inner))
	root.Put("list", FromList(NewList(Float(1.5), String("x"), Null())))

	want := map[string]any{
		"inner": map[string]any{"n": int64(7)},
		"list":  []any{1.5, "x", nil},
	}
	if got := root.Interface(); !reflect.DeepEqual(got, want) {
		t.Errorf("Interface() = %#v, want %#v", got, want)
	}
}

func TestKindString(t *testing.T) {
	if KindTimestamp.String() != "TIMESTAMP" || Kind(99).String() != "Kind(99)" {
		t.Errorf("unexpected kind names %q %q", KindTimestamp, Kind(99))
	}
	if KindMap.IsScalar() || !KindBinary.IsScalar() {
		t.Errorf("IsScalar() misclassified")
	}
}
