package errors

import (
	"bytes"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewError(t *testing.T) {
	cause := fmt.Errorf("underlying error")
	err := NewError(CreationFailure, "zap", "handle creation failed", cause)

	assert.Equal(t, CreationFailure, err.Type)
	assert.Equal(t, "zap", err.Component)
	assert.Equal(t, "handle creation failed", err.Message)
	assert.Same(t, cause, err.Cause)
	assert.False(t, err.Timestamp.IsZero())
}

func TestLoggerError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *LoggerError
		expected string
	}{
		{
			name: "error with cause",
			err: &LoggerError{
				Type:      UnsupportedBackend,
				Message:   "no backend registered",
				Component: "log4j",
				Cause:     fmt.Errorf("not found"),
			},
			expected: "unsupported_backend [log4j]: no backend registered (caused by: not found)",
		},
		{
			name: "error without cause",
			err: &LoggerError{
				Type:      FormattingFailure,
				Message:   "bad template",
				Component: "console",
			},
			expected: "formatting_failure [console]: bad template",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestIs(t *testing.T) {
	base := NewError(UnsupportedBackend, "x", "missing", nil)
	wrapped := fmt.Errorf("resolve: %w", base)

	assert.True(t, IsUnsupportedBackend(wrapped))
	assert.False(t, IsCreationFailure(wrapped))
	assert.False(t, Is(fmt.Errorf("plain"), UnsupportedBackend))

	typ, ok := TypeOf(wrapped)
	require.True(t, ok)
	assert.Equal(t, UnsupportedBackend, typ)
}

func TestErrorHandler_HandleError(t *testing.T) {
	var buf bytes.Buffer
	handler := NewErrorHandler(NewSafeErrorLogger(&buf))

	var seen []*LoggerError
	handler.SetErrorCallback(func(err *LoggerError) {
		seen = append(seen, err)
	})

	handler.HandleError(NewError(FormattingFailure, "console", "bad verb", nil))
	handler.HandleError(NewError(FormattingFailure, "console", "missing arg", nil))
	handler.HandleError(NewError(BackendInvocationFailure, "zap", "emit failed", nil))
	handler.HandleError(nil)

	stats := handler.GetErrorStats()
	assert.Equal(t, 2, stats["formatting_failure:console"])
	assert.Equal(t, 1, stats["backend_invocation_failure:zap"])
	assert.Equal(t, 2, handler.Count(FormattingFailure))
	assert.Equal(t, 0, handler.Count(CreationFailure))
	assert.Len(t, seen, 3)
	assert.Contains(t, buf.String(), "[console-ERROR] formatting_failure [console]: bad verb")

	last := handler.GetLastErrors()
	assert.Equal(t, "missing arg", last["formatting_failure:console"].Message)

	handler.Reset()
	assert.Empty(t, handler.GetErrorStats())
	assert.Empty(t, handler.GetLastErrors())
}

func TestErrorHandler_BackendFailureLine(t *testing.T) {
	var buf bytes.Buffer
	handler := NewErrorHandler(NewSafeErrorLogger(&buf))

	handler.HandleError(NewError(BackendInvocationFailure, "zap", `emit info entry for "pkg" failed`, fmt.Errorf("broken pipe")))

	assert.Equal(t, "[zap-ERROR] emit info entry for \"pkg\" failed: broken pipe\n", buf.String())
	assert.Equal(t, 1, handler.Count(BackendInvocationFailure))
}

func TestErrorHandler_Concurrent(t *testing.T) {
	var buf bytes.Buffer
	handler := NewErrorHandler(NewSafeErrorLogger(&buf))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			handler.HandleError(NewError(BackendInvocationFailure, "slog", "boom", nil))
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, handler.GetErrorStats()["backend_invocation_failure:slog"])
}

func TestSafeErrorLogger_SetWriter(t *testing.T) {
	var first, second bytes.Buffer
	l := NewSafeErrorLogger(&first)
	l.LogBackendError("ZAP", "sync", fmt.Errorf("bad fd"))
	l.SetWriter(&second)
	l.LogGeneralError("registry", fmt.Errorf("oops"))

	assert.Equal(t, "[ZAP-ERROR] sync: bad fd\n", first.String())
	assert.Equal(t, "[registry-ERROR] oops\n", second.String())
}
