// Package query selects values from documents with RFC 9535 JSONPath
// expressions.
package query

import (
	"encoding/base64"
	"errors"
	"fmt"
	"slices"

	"github.com/jacoelho/docstream/internal/document"
	"github.com/jacoelho/docstream/internal/fieldpath"
	"github.com/jacoelho/docstream/internal/value"
	"github.com/theory/jsonpath"
	"github.com/theory/jsonpath/spec"
)

var (
	ErrInvalidQuery = errors.New("query: invalid expression")
	ErrNotFound     = errors.New("query: no match")
)

// Match is one selected node: where it was found and its typed value.
type Match struct {
	Path  fieldpath.Path
	Value value.Value
}

type Query struct {
	expr string
	path *jsonpath.Path
}

func Compile(expr string) (*Query, error) {
	if expr == "" {
		return nil, fmt.Errorf("%w: expression is empty", ErrInvalidQuery)
	}

	path, err := jsonpath.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidQuery, expr, err)
	}
	return &Query{expr: expr, path: path}, nil
}

func (q *Query) String() string {
	return q.expr
}

// Select returns the matches in document order. The expression is evaluated
// over the plain form of doc; each result is read back from doc so values
// keep their original kind and key order.
func (q *Query) Select(doc *document.Document) ([]Match, error) {
	located := q.path.SelectLocated(plain(value.FromMap(doc.Root())))

	type ranked struct {
		match Match
		rank  []int
	}
	found := make([]ranked, 0, len(located))
	for _, node := range located {
		p, err := toFieldPath(node.Path)
		if err != nil {
			return nil, err
		}
		v, ok := doc.Get(p)
		if !ok {
			return nil, fmt.Errorf("%w: %s resolved to %s, which is not in the document", ErrNotFound, q.expr, p)
		}
		found = append(found, ranked{match: Match{Path: p, Value: v}, rank: documentOrder(doc.Root(), node.Path)})
	}

	// The evaluator walks plain Go maps, whose order is random.
	slices.SortStableFunc(found, func(a, b ranked) int {
		return slices.Compare(a.rank, b.rank)
	})

	matches := make([]Match, 0, len(found))
	for _, f := range found {
		matches = append(matches, f.match)
	}
	return matches, nil
}

// documentOrder ranks a location by the key position or array index of each
// step. Ancestors rank before their descendants.
func documentOrder(root *value.Map, np spec.NormalizedPath) []int {
	rank := make([]int, 0, len(np))
	cur := value.FromMap(root)
	for _, sel := range np {
		switch s := sel.(type) {
		case spec.Name:
			m, ok := cur.Map()
			if !ok {
				return rank
			}
			rank = append(rank, slices.Index(m.Keys(), string(s)))
			cur, _ = m.Get(string(s))
		case spec.Index:
			l, ok := cur.List()
			if !ok {
				return rank
			}
			rank = append(rank, int(s))
			cur, _ = l.Get(int(s))
		}
	}
	return rank
}

// First returns the first match, or ErrNotFound.
func (q *Query) First(doc *document.Document) (Match, error) {
	matches, err := q.Select(doc)
	if err != nil {
		return Match{}, err
	}
	if len(matches) == 0 {
		return Match{}, fmt.Errorf("%w: %s", ErrNotFound, q.expr)
	}
	return matches[0], nil
}

// plain converts v into the JSON-shaped form the evaluator compares: numbers
// become float64, temporal values strings, binary base64 text.
func plain(v value.Value) any {
	switch v.Kind() {
	case value.KindMap:
		m, _ := v.Map()
		out := make(map[string]any, m.Len())
		for k, child := range m.All() {
			out[k] = plain(child)
		}
		return out
	case value.KindArray:
		l, _ := v.List()
		out := make([]any, 0, l.Len())
		for _, child := range l.All() {
			out = append(out, plain(child))
		}
		return out
	case value.KindByte, value.KindShort, value.KindInt, value.KindLong:
		n, _ := v.Int64()
		return float64(n)
	case value.KindFloat, value.KindDouble:
		f, _ := v.Float64()
		return f
	case value.KindDecimal:
		d, _ := v.Decimal()
		return d.InexactFloat64()
	case value.KindBinary:
		b, _ := v.Binary()
		return base64.StdEncoding.EncodeToString(b)
	case value.KindDate, value.KindTime, value.KindTimestamp, value.KindInterval:
		return v.String()
	}
	return v.Interface()
}

// toFieldPath converts a normalized JSONPath location into a field path.
func toFieldPath(np spec.NormalizedPath) (fieldpath.Path, error) {
	var root *fieldpath.Segment
	for i := len(np) - 1; i >= 0; i-- {
		switch sel := np[i].(type) {
		case spec.Name:
			root = fieldpath.NewNamed(string(sel), false, root)
		case spec.Index:
			seg, err := fieldpath.NewIndexed(int(sel), root)
			if err != nil {
				return fieldpath.Path{}, err
			}
			root = seg
		default:
			return fieldpath.Path{}, fmt.Errorf("%w: unexpected selector %T", ErrInvalidQuery, sel)
		}
	}
	return fieldpath.New(root), nil
}
