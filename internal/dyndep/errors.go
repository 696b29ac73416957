package dyndep

import (
	"errors"
	"fmt"
)

// ErrorKind separates subprocess failures from introspection-format
// failures; both are fatal, but callers report them differently.
type ErrorKind string

const (
	// KindSubprocess indicates the external tool's introspection invocation
	// exited non-zero or could not be started.
	KindSubprocess ErrorKind = "SUBPROCESS"

	// KindFormat indicates the introspection payload could not be parsed as
	// valid structured data.
	KindFormat ErrorKind = "INTROSPECTION_FORMAT"
)

// Error is a fatal synthesis failure. No partial declaration is ever
// written when one is returned.
type Error struct {
	Kind    ErrorKind
	Message string

	// Output is the captured subprocess output, when there is any.
	Output []byte
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Output) > 0 {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Message, e.Output)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// IsKind reports whether err is a synthesis Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind == kind
	}
	return false
}
