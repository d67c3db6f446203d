// Package errors defines the error taxonomy of the logging facade and the
// diagnostic channel used for failures that are recovered locally.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents different types of errors that can occur
type ErrorType int

const (
	// UnsupportedBackend means the identifier is unknown or its backend cannot be used.
	UnsupportedBackend ErrorType = iota
	// CreationFailure means a supported backend failed to produce a per-component handle.
	CreationFailure
	// BackendInvocationFailure means an enablement check or emit call on a handle failed.
	BackendInvocationFailure
	// FormattingFailure means the template and its arguments did not match.
	FormattingFailure
	// ConfigError means the configuration is invalid.
	ConfigError
)

func (e ErrorType) String() string {
	switch e {
	case UnsupportedBackend:
		return "unsupported_backend"
	case CreationFailure:
		return "creation_failure"
	case BackendInvocationFailure:
		return "backend_invocation_failure"
	case FormattingFailure:
		return "formatting_failure"
	case ConfigError:
		return "config_error"
	default:
		return "unknown_error"
	}
}

// LoggerError represents an error that occurred in the logger system
type LoggerError struct {
	Type      ErrorType
	Message   string
	Cause     error
	Component string
	Timestamp time.Time
}

func (e *LoggerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s [%s]: %s (caused by: %v)", e.Type, e.Component, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s [%s]: %s", e.Type, e.Component, e.Message)
}

func (e *LoggerError) Unwrap() error {
	return e.Cause
}

// NewError creates a new LoggerError
func NewError(errType ErrorType, component, message string, cause error) *LoggerError {
	return &LoggerError{
		Type:      errType,
		Message:   message,
		Cause:     cause,
		Component: component,
		Timestamp: time.Now(),
	}
}

// TypeOf reports the ErrorType of the first LoggerError in err's chain.
func TypeOf(err error) (ErrorType, bool) {
	var le *LoggerError
	if stderrors.As(err, &le) {
		return le.Type, true
	}
	return 0, false
}

// Is reports whether err carries a LoggerError of the given type.
func Is(err error, errType ErrorType) bool {
	t, ok := TypeOf(err)
	return ok && t == errType
}

// IsUnsupportedBackend reports whether err is an UnsupportedBackend error.
func IsUnsupportedBackend(err error) bool { return Is(err, UnsupportedBackend) }

// IsCreationFailure reports whether err is a CreationFailure error.
func IsCreationFailure(err error) bool { return Is(err, CreationFailure) }
