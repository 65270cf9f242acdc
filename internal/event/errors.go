package event

import "errors"

var (
	// ErrMalformed indicates the source data is not a well-formed document stream.
	ErrMalformed = errors.New("event: malformed input")

	// ErrUnsupportedNode indicates a source construct with no event equivalent.
	ErrUnsupportedNode = errors.New("event: unsupported node")
)
