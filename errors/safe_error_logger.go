package errors

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// SafeErrorLogger provides thread-safe error logging to prevent concurrent write issues.
type SafeErrorLogger struct {
	mu sync.Mutex
	w  io.Writer
}

// defaultErrorLogger is the diagnostic stream shared by all factories.
var defaultErrorLogger = &SafeErrorLogger{
	w: os.Stderr,
}

// GetDefaultErrorLogger returns the default thread-safe error logger.
func GetDefaultErrorLogger() *SafeErrorLogger {
	return defaultErrorLogger
}

// NewSafeErrorLogger creates a logger writing to w.
func NewSafeErrorLogger(w io.Writer) *SafeErrorLogger {
	return &SafeErrorLogger{w: w}
}

// LogBackendError logs backend-related errors in a thread-safe manner.
func (s *SafeErrorLogger) LogBackendError(backend string, operation string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "[%s-ERROR] %s: %v\n", backend, operation, err)
}

// LogGeneralError logs general errors in a thread-safe manner.
func (s *SafeErrorLogger) LogGeneralError(component string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "[%s-ERROR] %v\n", component, err)
}

// SetWriter changes the output writer (useful for testing).
func (s *SafeErrorLogger) SetWriter(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.w = w
}
