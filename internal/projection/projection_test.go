package projection

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/jacoelho/docstream/internal/document"
	"github.com/jacoelho/docstream/internal/event"
	"github.com/jacoelho/docstream/internal/fieldpath"
)

func project(t *testing.T, input string, paths ...string) map[string]any {
	t.Helper()

	parsed := make([]fieldpath.Path, 0, len(paths))
	for _, p := range paths {
		parsed = append(parsed, fieldpath.MustParse(p))
	}

	doc, err := document.Materialize(NewReader(event.NewJSONReader(strings.NewReader(input)), parsed...))
	if err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}
	return doc.Interface()
}

func TestReader(t *testing.T) {
	const input = `{"a": {"b": 1, "c": {"d": 2}}, "e": [1, {"f": 3}], "g": "x"}`

	tests := []struct {
		name  string
		paths []string
		want  map[string]any
	}{
		{
			name:  "no_paths_keeps_everything",
			paths: nil,
			want: map[string]any{
				"a": map[string]any{"b": int64(1), "c": map[string]any{"d": int64(2)}},
				"e": []any{int64(1), map[string]any{"f": int64(3)}},
				"g": "x",
			},
		},
		{
			name:  "leaf_drops_siblings",
			paths: []string{"a.b"},
			want:  map[string]any{"a": map[string]any{"b": int64(1)}},
		},
		{
			name:  "subtree_kept_whole",
			paths: []string{"a"},
			want: map[string]any{
				"a": map[string]any{"b": int64(1), "c": map[string]any{"d": int64(2)}},
			},
		},
		{
			name:  "case_insensitive",
			paths: []string{"A.C.D"},
			want:  map[string]any{"a": map[string]any{"c": map[string]any{"d": int64(2)}}},
		},
		{
			name:  "several_paths",
			paths: []string{"g", "a.c"},
			want: map[string]any{
				"a": map[string]any{"c": map[string]any{"d": int64(2)}},
				"g": "x",
			},
		},
		{
			name:  "array_elements_are_always_kept",
			paths: []string{"e[1].f"},
			want: map[string]any{
				"e": []any{int64(1), map[string]any{"f": int64(3)}},
			},
		},
		{
			name:  "missing_path_leaves_empty_document",
			paths: []string{"zzz"},
			want:  map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := project(t, input, tt.paths...); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("projection = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestReaderMultipleDocuments(t *testing.T) {
	r := NewReader(
		event.NewJSONReader(strings.NewReader(`{"a": 1, "b": 2} {"a": 3, "b": 4}`)),
		fieldpath.Named("b"),
	)
	m := document.NewMaterializer()

	for _, want := range []int64{2, 4} {
		doc, err := m.Next(r)
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		if got := doc.Interface(); !reflect.DeepEqual(got, map[string]any{"b": want}) {
			t.Errorf("document = %v, want b=%d", got, want)
		}
	}
}

func TestReaderTruncatedDroppedValue(t *testing.T) {
	r := NewReader(event.NewSliceReader(
		event.MapStart(), event.Field("drop"), event.MapStart(), event.Field("x"),
	), fieldpath.Named("keep"))

	_, err := event.Collect(r)
	if !errors.Is(err, event.ErrMalformed) {
		t.Errorf("Collect() error = %v, want ErrMalformed", err)
	}
}
