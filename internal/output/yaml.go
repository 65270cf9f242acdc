package output

import (
	"encoding/base64"
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/jacoelho/docstream/internal/document"
	"github.com/jacoelho/docstream/internal/value"
)

// rawYAML is emitted verbatim, which lets tagged scalars through.
type rawYAML string

func (r rawYAML) MarshalYAML() ([]byte, error) {
	return []byte(r), nil
}

// YAMLEncoder writes documents as a YAML stream separated by "---".
type YAMLEncoder struct {
	w       io.Writer
	written int
}

func NewYAMLEncoder(w io.Writer) *YAMLEncoder {
	return &YAMLEncoder{w: w}
}

func (e *YAMLEncoder) Encode(doc *document.Document) error {
	return e.EncodeValue(value.FromMap(doc.Root()))
}

func (e *YAMLEncoder) EncodeValue(v value.Value) error {
	payload, err := yaml.MarshalWithOptions(toYAML(v), yaml.Indent(2), yaml.IndentSequence(true))
	if err != nil {
		return fmt.Errorf("encode YAML: %w", err)
	}

	if e.written > 0 {
		if _, err := io.WriteString(e.w, "---\n"); err != nil {
			return fmt.Errorf("write YAML: %w", err)
		}
	}
	e.written++

	if _, err := e.w.Write(payload); err != nil {
		return fmt.Errorf("write YAML: %w", err)
	}
	return nil
}

// toYAML maps a value onto types the YAML encoder renders in order.
func toYAML(v value.Value) any {
	switch v.Kind() {
	case value.KindMap:
		m, _ := v.Map()
		out := make(yaml.MapSlice, 0, m.Len())
		for k, child := range m.All() {
			out = append(out, yaml.MapItem{Key: k, Value: toYAML(child)})
		}
		return out
	case value.KindArray:
		l, _ := v.List()
		out := make([]any, 0, l.Len())
		for _, child := range l.All() {
			out = append(out, toYAML(child))
		}
		return out
	case value.KindDecimal:
		d, _ := v.Decimal()
		return rawYAML(d.String())
	case value.KindDate, value.KindTime:
		return v.String()
	case value.KindTimestamp:
		t, _ := v.Time()
		return rawYAML("!!timestamp " + t.Format(time.RFC3339Nano))
	case value.KindInterval:
		i, _ := v.Interval()
		return intervalMillis(i)
	case value.KindBinary:
		b, _ := v.Binary()
		return rawYAML("!!binary " + base64.StdEncoding.EncodeToString(b))
	}
	return v.Interface()
}
