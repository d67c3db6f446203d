package errors

import (
	"fmt"
	"sync"
)

// ErrorHandler records recovered failures and reports them on the diagnostic stream.
type ErrorHandler struct {
	mu            sync.RWMutex
	writer        *SafeErrorLogger
	errorCallback func(*LoggerError)
	errorCounts   map[string]int
	lastErrors    map[string]*LoggerError
}

// NewErrorHandler creates a handler writing to w; nil means the default stderr logger.
func NewErrorHandler(w *SafeErrorLogger) *ErrorHandler {
	if w == nil {
		w = GetDefaultErrorLogger()
	}
	return &ErrorHandler{
		writer:      w,
		errorCounts: make(map[string]int),
		lastErrors:  make(map[string]*LoggerError),
	}
}

var (
	defaultHandler     *ErrorHandler
	defaultHandlerOnce sync.Once
)

// DefaultHandler returns the process-wide handler shared by factories that were
// not given one explicitly.
func DefaultHandler() *ErrorHandler {
	defaultHandlerOnce.Do(func() {
		defaultHandler = NewErrorHandler(nil)
	})
	return defaultHandler
}

// SetErrorCallback sets a callback function to be called when errors occur.
// The callback runs synchronously on the goroutine that hit the failure.
func (h *ErrorHandler) SetErrorCallback(callback func(*LoggerError)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errorCallback = callback
}

// HandleError records err and writes it to the diagnostic stream.
func (h *ErrorHandler) HandleError(err *LoggerError) {
	if err == nil {
		return
	}

	key := fmt.Sprintf("%s:%s", err.Type, err.Component)

	h.mu.Lock()
	h.errorCounts[key]++
	h.lastErrors[key] = err
	callback := h.errorCallback
	h.mu.Unlock()

	switch {
	case err.Type == BackendInvocationFailure && err.Cause != nil:
		h.writer.LogBackendError(err.Component, err.Message, err.Cause)
	default:
		h.writer.LogGeneralError(err.Component, err)
	}

	if callback != nil {
		callback(err)
	}
}

// GetErrorStats returns error statistics keyed by "type:component".
func (h *ErrorHandler) GetErrorStats() map[string]int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	stats := make(map[string]int, len(h.errorCounts))
	for k, v := range h.errorCounts {
		stats[k] = v
	}
	return stats
}

// Count returns the number of recorded errors of the given type across components.
func (h *ErrorHandler) Count(errType ErrorType) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, err := range h.lastErrors {
		if err.Type == errType {
			total += h.errorCounts[fmt.Sprintf("%s:%s", err.Type, err.Component)]
		}
	}
	return total
}

// GetLastErrors returns the most recent error for each component
func (h *ErrorHandler) GetLastErrors() map[string]*LoggerError {
	h.mu.RLock()
	defer h.mu.RUnlock()

	errors := make(map[string]*LoggerError, len(h.lastErrors))
	for k, v := range h.lastErrors {
		errors[k] = v
	}
	return errors
}

// Reset clears all error statistics and cached errors
func (h *ErrorHandler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.errorCounts = make(map[string]int)
	h.lastErrors = make(map[string]*LoggerError)
}
