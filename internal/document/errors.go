package document

import "errors"

var (
	// ErrDecoding indicates an event sequence that violates the document grammar.
	ErrDecoding = errors.New("document: decoding error")

	// ErrUnsupported indicates an operation the iterator does not provide.
	ErrUnsupported = errors.New("document: unsupported operation")

	// ErrBuilder indicates a builder call that does not fit the open container.
	ErrBuilder = errors.New("document: invalid builder call")
)
