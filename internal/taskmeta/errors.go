package taskmeta

import (
	"errors"
	"fmt"
)

// FormatErrorCode categorizes descriptor format errors.
type FormatErrorCode string

const (
	// ErrCodeBadLength indicates a byte buffer whose length does not match
	// the fixed descriptor size.
	ErrCodeBadLength FormatErrorCode = "BAD_LENGTH"

	// ErrCodeBadMagic indicates a record whose magic does not match Magic.
	ErrCodeBadMagic FormatErrorCode = "BAD_MAGIC"

	// ErrCodeBadVersion indicates a record version this codec does not read.
	ErrCodeBadVersion FormatErrorCode = "BAD_VERSION"

	// ErrCodeInvalidExitMode indicates a job-flags field whose exit-mode
	// bits decode outside the defined enumeration.
	ErrCodeInvalidExitMode FormatErrorCode = "INVALID_EXIT_MODE"

	// ErrCodeResourceOverflow indicates a resource array exceeding the fixed
	// four-entry capacity.
	ErrCodeResourceOverflow FormatErrorCode = "RESOURCE_OVERFLOW"
)

// FormatError represents a descriptor-format error detected while packing
// or decoding a task descriptor.
type FormatError struct {
	Code    FormatErrorCode
	Message string
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// newFormatError creates a FormatError with a formatted message.
func newFormatError(code FormatErrorCode, format string, args ...any) *FormatError {
	return &FormatError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// IsFormatError reports whether err is a FormatError with the given code.
// Uses errors.As to handle wrapped errors.
func IsFormatError(err error, code FormatErrorCode) bool {
	var fe *FormatError
	if errors.As(err, &fe) {
		return fe.Code == code
	}
	return false
}
