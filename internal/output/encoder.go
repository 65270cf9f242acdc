package output

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jacoelho/docstream/internal/document"
	"github.com/jacoelho/docstream/internal/value"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

var ErrUnknownFormat = errors.New("output: unknown format")

// Encoder writes whole documents, or single values such as query results.
type Encoder interface {
	Encode(doc *document.Document) error
	EncodeValue(v value.Value) error
}

// JSONEncoder writes one JSON value per line, or indented blocks.
type JSONEncoder struct {
	builder *JSONBuilder
}

func NewJSONEncoder(w io.Writer, indent string) *JSONEncoder {
	return &JSONEncoder{builder: NewJSONBuilder(w, indent)}
}

// Builder exposes the streaming builder so events can be copied without
// materializing documents.
func (e *JSONEncoder) Builder() *JSONBuilder {
	return e.builder
}

func (e *JSONEncoder) Encode(doc *document.Document) error {
	if err := document.Copy(doc.Events(), e.builder); err != nil {
		e.builder.Reset()
		return err
	}
	return nil
}

func (e *JSONEncoder) EncodeValue(v value.Value) error {
	if err := e.builder.Add(v); err != nil {
		e.builder.Reset()
		return err
	}
	return nil
}

// New returns the encoder for format. indent only affects JSON.
func New(format string, w io.Writer, indent string) (Encoder, error) {
	switch strings.ToLower(format) {
	case FormatJSON, "":
		return NewJSONEncoder(w, indent), nil
	case FormatYAML, "yml":
		return NewYAMLEncoder(w), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}
