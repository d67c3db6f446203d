package unilog

import (
	"context"
	"strings"

	"github.com/kart-io/unilog/core"
)

var defaultRegistry = newDefaultRegistry(builtins)

// newDefaultRegistry registers the built-in backends with their defaults on a
// new registry whose global Logger is the console.
func newDefaultRegistry(set *builtinSet) *core.Registry {
	reg := core.NewRegistry(core.ConsoleID)
	backends := NewBuiltinBackends(nil)

	set.mu.Lock()
	defer set.mu.Unlock()
	set.install(reg, nil, backends, newFactories(backends))
	return reg
}

// Registry returns the default registry used by Of, SetGlobal and AddFactory.
func Registry() *core.Registry {
	return defaultRegistry
}

// AddFactory registers backend under id on the default registry, replacing
// any factory already registered under that id. It reports false when id is
// empty or backend is nil.
func AddFactory(id string, backend core.Backend) bool {
	if backend == nil {
		return false
	}
	return defaultRegistry.Register(id, core.NewFactory(backend))
}

// SetGlobal switches the global Logger to id. It reports false, leaving the
// global Logger unchanged, when id is unknown or its backend is unsupported.
func SetGlobal(id string) bool {
	if id == "" {
		id = defaultRegistry.DefaultID()
	}
	return defaultRegistry.SetCurrent(strings.ToLower(id))
}

// Global returns the global Logger.
func Global() Logger {
	return Logger{id: defaultRegistry.Current(), registry: defaultRegistry}
}

// OpenLogger turns logging on process-wide.
func OpenLogger() { core.Open() }

// CloseLogger turns logging off process-wide until OpenLogger is called.
func CloseLogger() { core.Close() }

// IsLoggerOpen reports whether logging is on.
func IsLoggerOpen() bool { return core.IsOpen() }

// WithPrefix returns a context whose messages are prefixed with prefix when
// logged through the Ctx methods.
func WithPrefix(ctx context.Context, prefix string) context.Context {
	return core.WithPrefix(ctx, prefix)
}

// ClearPrefix returns a context without a message prefix.
func ClearPrefix(ctx context.Context) context.Context {
	return core.ClearPrefix(ctx)
}

// IsTraceEnabled reports whether the global Logger writes TRACE entries for the calling package.
func IsTraceEnabled() bool { return Global().enabled(callerDepth, core.TraceLevel) }

// IsDebugEnabled reports whether the global Logger writes DEBUG entries for the calling package.
func IsDebugEnabled() bool { return Global().enabled(callerDepth, core.DebugLevel) }

// IsInfoEnabled reports whether the global Logger writes INFO entries for the calling package.
func IsInfoEnabled() bool { return Global().enabled(callerDepth, core.InfoLevel) }

// IsWarnEnabled reports whether the global Logger writes WARN entries for the calling package.
func IsWarnEnabled() bool { return Global().enabled(callerDepth, core.WarnLevel) }

// IsErrorEnabled reports whether the global Logger writes ERROR entries for the calling package.
func IsErrorEnabled() bool { return Global().enabled(callerDepth, core.ErrorLevel) }

// Trace logs at TRACE through the global Logger.
func Trace(template string, args ...any) {
	Global().log(context.Background(), callerDepth, core.TraceLevel, template, args...)
}

// Debug logs at DEBUG through the global Logger.
func Debug(template string, args ...any) {
	Global().log(context.Background(), callerDepth, core.DebugLevel, template, args...)
}

// Info logs at INFO through the global Logger.
func Info(template string, args ...any) {
	Global().log(context.Background(), callerDepth, core.InfoLevel, template, args...)
}

// Warn logs at WARN through the global Logger.
func Warn(template string, args ...any) {
	Global().log(context.Background(), callerDepth, core.WarnLevel, template, args...)
}

// Error logs at ERROR through the global Logger.
func Error(template string, args ...any) {
	Global().log(context.Background(), callerDepth, core.ErrorLevel, template, args...)
}

// Log logs at level through the global Logger.
func Log(level core.Level, template string, args ...any) {
	Global().log(context.Background(), callerDepth, level, template, args...)
}

// TraceCtx logs at TRACE through the global Logger.
func TraceCtx(ctx context.Context, template string, args ...any) {
	Global().log(ctx, callerDepth, core.TraceLevel, template, args...)
}

// DebugCtx logs at DEBUG through the global Logger.
func DebugCtx(ctx context.Context, template string, args ...any) {
	Global().log(ctx, callerDepth, core.DebugLevel, template, args...)
}

// InfoCtx logs at INFO through the global Logger.
func InfoCtx(ctx context.Context, template string, args ...any) {
	Global().log(ctx, callerDepth, core.InfoLevel, template, args...)
}

// WarnCtx logs at WARN through the global Logger.
func WarnCtx(ctx context.Context, template string, args ...any) {
	Global().log(ctx, callerDepth, core.WarnLevel, template, args...)
}

// ErrorCtx logs at ERROR through the global Logger.
func ErrorCtx(ctx context.Context, template string, args ...any) {
	Global().log(ctx, callerDepth, core.ErrorLevel, template, args...)
}
