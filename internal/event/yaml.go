package event

import (
	"encoding/base64"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
	"github.com/goccy/go-yaml/token"
	"github.com/jacoelho/docstream/internal/value"
	"github.com/shopspring/decimal"
)

// timestampLayouts are the forms accepted for !!timestamp scalars.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999 -07:00",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// YAMLReader emits the events of every document in a YAML stream. Anchors and
// aliases are expanded, and merge keys are applied.
type YAMLReader struct {
	src     io.Reader
	docs    []*ast.DocumentNode
	parsed  bool
	anchors map[string]ast.Node
	pending []Event
}

func NewYAMLReader(r io.Reader) *YAMLReader {
	return &YAMLReader{src: r, anchors: make(map[string]ast.Node)}
}

func (r *YAMLReader) Next() (Event, error) {
	if !r.parsed {
		if err := r.parse(); err != nil {
			return Event{}, err
		}
	}

	for len(r.pending) == 0 {
		if len(r.docs) == 0 {
			return Event{}, io.EOF
		}
		doc := r.docs[0]
		r.docs = r.docs[1:]
		if doc.Body == nil {
			continue
		}

		// Anchors are scoped to the document that defines them.
		clear(r.anchors)
		events, err := r.appendNode(nil, doc.Body)
		if err != nil {
			return Event{}, err
		}
		r.pending = events
	}

	e := r.pending[0]
	r.pending = r.pending[1:]
	return e, nil
}

func (r *YAMLReader) parse() error {
	r.parsed = true

	data, err := io.ReadAll(r.src)
	if err != nil {
		return fmt.Errorf("read YAML: %w", err)
	}

	file, err := parser.ParseBytes(data, 0)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	r.docs = file.Docs
	return nil
}

func (r *YAMLReader) appendNode(events []Event, node ast.Node) ([]Event, error) {
	switch n := node.(type) {
	case *ast.DocumentNode:
		return r.appendNode(events, n.Body)
	case *ast.MappingNode:
		return r.appendMap(events, n.Values)
	case *ast.MappingValueNode:
		return r.appendMap(events, []*ast.MappingValueNode{n})
	case *ast.SequenceNode:
		events = append(events, ArrayStart())
		for _, item := range n.Values {
			var err error
			if events, err = r.appendNode(events, item); err != nil {
				return nil, err
			}
		}
		return append(events, ArrayEnd()), nil
	case *ast.AnchorNode:
		r.anchors[n.Name.GetToken().Value] = n.Value
		return r.appendNode(events, n.Value)
	case *ast.AliasNode:
		target, err := r.alias(n)
		if err != nil {
			return nil, err
		}
		return r.appendNode(events, target)
	case *ast.TagNode:
		return r.appendTagged(events, n)
	}

	v, err := yamlScalar(node)
	if err != nil {
		return nil, err
	}
	return append(events, Of(v)), nil
}

func (r *YAMLReader) appendMap(events []Event, pairs []*ast.MappingValueNode) ([]Event, error) {
	events, err := r.appendPairs(append(events, MapStart()), pairs)
	if err != nil {
		return nil, err
	}
	return append(events, MapEnd()), nil
}

func (r *YAMLReader) alias(n *ast.AliasNode) (ast.Node, error) {
	name := n.Value.GetToken().Value
	target, ok := r.anchors[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown alias %q", ErrMalformed, name)
	}
	return target, nil
}

// appendPairs emits key/value pairs. Pairs pulled in through "<<" never
// override keys the mapping sets itself, and the first merged source wins.
func (r *YAMLReader) appendPairs(events []Event, pairs []*ast.MappingValueNode) ([]Event, error) {
	seen := make(map[string]bool)
	var merges []ast.Node

	for _, pair := range pairs {
		if pair.Key.IsMergeKey() {
			merges = append(merges, pair.Value)
			continue
		}

		key, err := r.keyName(pair.Key)
		if err != nil {
			return nil, err
		}
		seen[key] = true
		events = append(events, Field(key))
		if events, err = r.appendNode(events, pair.Value); err != nil {
			return nil, err
		}
	}

	for _, source := range merges {
		merged, err := r.mergeTarget(source)
		if err != nil {
			return nil, err
		}
		for _, pair := range merged {
			key, err := r.keyName(pair.Key)
			if err != nil {
				return nil, err
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			events = append(events, Field(key))
			if events, err = r.appendNode(events, pair.Value); err != nil {
				return nil, err
			}
		}
	}
	return events, nil
}

func (r *YAMLReader) mergeTarget(node ast.Node) ([]*ast.MappingValueNode, error) {
	switch n := node.(type) {
	case *ast.AliasNode:
		target, err := r.alias(n)
		if err != nil {
			return nil, err
		}
		return r.mergeTarget(target)
	case *ast.AnchorNode:
		r.anchors[n.Name.GetToken().Value] = n.Value
		return r.mergeTarget(n.Value)
	case *ast.MappingNode:
		return n.Values, nil
	case *ast.MappingValueNode:
		return []*ast.MappingValueNode{n}, nil
	case *ast.SequenceNode:
		var pairs []*ast.MappingValueNode
		for _, item := range n.Values {
			merged, err := r.mergeTarget(item)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, merged...)
		}
		return pairs, nil
	}
	return nil, fmt.Errorf("%w: cannot merge %s", ErrUnsupportedNode, node.Type())
}

func (r *YAMLReader) keyName(key ast.MapKeyNode) (string, error) {
	var node ast.Node = key
	if k, ok := node.(*ast.MappingKeyNode); ok {
		node = k.Value
	}

	switch k := node.(type) {
	case *ast.StringNode:
		return k.Value, nil
	case *ast.AliasNode:
		target, err := r.alias(k)
		if err != nil {
			return "", err
		}
		if s, ok := target.(ast.ScalarNode); ok {
			return fmt.Sprint(s.GetValue()), nil
		}
	case *ast.AnchorNode:
		r.anchors[k.Name.GetToken().Value] = k.Value
		if s, ok := k.Value.(ast.ScalarNode); ok {
			return fmt.Sprint(s.GetValue()), nil
		}
	case *ast.NullNode:
		return "null", nil
	case ast.ScalarNode:
		return k.GetToken().Value, nil
	}
	return "", fmt.Errorf("%w: map key of type %s", ErrUnsupportedNode, node.Type())
}

func (r *YAMLReader) appendTagged(events []Event, n *ast.TagNode) ([]Event, error) {
	switch token.ReservedTagKeyword(n.Start.Value) {
	case token.BinaryTag:
		text, err := tagText(n)
		if err != nil {
			return nil, err
		}
		b, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(text), ""))
		if err != nil {
			return nil, fmt.Errorf("%w: !!binary: %v", ErrMalformed, err)
		}
		return append(events, Of(value.Binary(b))), nil
	case token.TimestampTag:
		text, err := tagText(n)
		if err != nil {
			return nil, err
		}
		t, err := parseTimestamp(text)
		if err != nil {
			return nil, err
		}
		return append(events, Of(value.Timestamp(t))), nil
	}
	return r.appendNode(events, n.Value)
}

func tagText(n *ast.TagNode) (string, error) {
	switch v := n.Value.(type) {
	case *ast.StringNode:
		return v.Value, nil
	case *ast.LiteralNode:
		return v.Value.Value, nil
	case ast.ScalarNode:
		return v.GetToken().Value, nil
	}
	return "", fmt.Errorf("%w: %s applied to %s", ErrUnsupportedNode, n.Start.Value, n.Value.Type())
}

func parseTimestamp(text string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: invalid timestamp %q", ErrMalformed, text)
}

func yamlScalar(node ast.Node) (value.Value, error) {
	switch n := node.(type) {
	case *ast.NullNode:
		return value.Null(), nil
	case *ast.BoolNode:
		return value.Bool(n.Value), nil
	case *ast.StringNode:
		return value.String(n.Value), nil
	case *ast.LiteralNode:
		return value.String(n.Value.Value), nil
	case *ast.FloatNode:
		return value.Double(n.Value), nil
	case *ast.InfinityNode:
		return value.Double(n.Value), nil
	case *ast.NanNode:
		return value.Double(math.NaN()), nil
	case *ast.IntegerNode:
		switch i := n.Value.(type) {
		case int64:
			return value.Long(i), nil
		case uint64:
			// beyond int64
			return value.Decimal(decimal.RequireFromString(strconv.FormatUint(i, 10))), nil
		}
		return value.Value{}, fmt.Errorf("%w: integer of type %T", ErrMalformed, n.Value)
	}

	if node == nil {
		return value.Null(), nil
	}
	return value.Value{}, fmt.Errorf("%w: %s", ErrUnsupportedNode, node.Type())
}
