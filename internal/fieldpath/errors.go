package fieldpath

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument indicates a segment could not be constructed from the given values.
	ErrInvalidArgument = errors.New("fieldpath: invalid argument")

	// ErrSyntax indicates a field path expression could not be parsed.
	ErrSyntax = errors.New("fieldpath: syntax error")
)

func syntaxError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSyntax, fmt.Sprintf(format, args...))
}
