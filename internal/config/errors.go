package config

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue/token"
)

// Configuration error codes (C001-C099). All of these are fatal at
// generation time and are reported before any graph output is written.
const (
	ErrCodeNotFound    = "C001" // project description file not found
	ErrCodeParse       = "C002" // CUE syntax or schema violation
	ErrCodeDanglingDep = "C003" // dependency name resolves to no package
	ErrCodeCycle       = "C004" // package dependency cycle
	ErrCodeBadImage    = "C005" // image references an undeclared package
	ErrCodeBadOption   = "C006" // unusable package option value
	ErrCodeNoTemplate  = "C007" // post-processed image lacks a linker-script template
)

// ConfigError represents a fatal project configuration error.
type ConfigError struct {
	Code    string
	Field   string
	Message string
	Pos     token.Pos // CUE position if available
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: [%s] %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Field, e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// newConfigError creates a ConfigError with a formatted message.
func newConfigError(code, field, format string, args ...any) *ConfigError {
	return &ConfigError{Code: code, Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsConfigError reports whether err is a ConfigError with the given code.
// Uses errors.As to handle wrapped errors.
func IsConfigError(err error, code string) bool {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}
