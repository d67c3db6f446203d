package unilog

import (
	"context"
	"strings"

	"github.com/kart-io/unilog/core"
)

// callerDepth is the number of frames between a public logging method and
// Logger.log. Every public entry point calls log directly.
const callerDepth = 1

// Logger is an immutable handle on one backend of one Registry. Loggers with
// the same id and registry are interchangeable and compare equal.
type Logger struct {
	id       string
	registry *core.Registry
}

// Of returns the Logger for id on the default registry. An empty id yields the
// console Logger. Unknown or unsupported ids fail with an UnsupportedBackend error.
func Of(id string) (Logger, error) {
	return OfRegistry(defaultRegistry, id)
}

// MustOf is like Of but panics on error.
func MustOf(id string) Logger {
	l, err := Of(id)
	if err != nil {
		panic(err)
	}
	return l
}

// OfRegistry returns the Logger for id on reg.
func OfRegistry(reg *core.Registry, id string) (Logger, error) {
	if id == "" {
		id = reg.DefaultID()
	}
	id = strings.ToLower(id)
	if err := reg.Check(id); err != nil {
		return Logger{}, err
	}
	return Logger{id: id, registry: reg}, nil
}

// ID returns the backend identifier the Logger is bound to.
func (l Logger) ID() string { return l.id }

func (l Logger) String() string { return "Logger(" + l.id + ")" }

// Journal returns the calling package's journal, creating it on first use.
func (l Logger) Journal() (*core.Journal, error) {
	return l.journal(core.CallerFrame(1).Package())
}

func (l Logger) journal(component string) (*core.Journal, error) {
	reg := l.registry
	if reg == nil {
		reg = defaultRegistry
	}
	id := l.id
	if id == "" {
		id = reg.DefaultID()
	}
	f, err := reg.Resolve(id)
	if err != nil {
		return nil, err
	}
	return f.Journal(component)
}

// mustJournal panics with the *errors.LoggerError when the journal cannot be
// obtained; void logging calls have no other way to report it.
func (l Logger) mustJournal(component string) *core.Journal {
	j, err := l.journal(component)
	if err != nil {
		panic(err)
	}
	return j
}

func (l Logger) enabled(depth int, level core.Level) bool {
	caller := core.CallerFrame(depth + 1)
	return l.mustJournal(caller.Package()).Enabled(level)
}

func (l Logger) log(ctx context.Context, depth int, level core.Level, template string, args ...any) {
	if !core.IsOpen() {
		return
	}
	caller := core.CallerFrame(depth + 1)
	j := l.mustJournal(caller.Package())
	if !j.Enabled(level) {
		return
	}
	j.Log(ctx, caller, level, template, args...)
}

// IsTraceEnabled reports whether TRACE entries from the calling package are written.
func (l Logger) IsTraceEnabled() bool { return l.enabled(callerDepth, core.TraceLevel) }

// IsDebugEnabled reports whether DEBUG entries from the calling package are written.
func (l Logger) IsDebugEnabled() bool { return l.enabled(callerDepth, core.DebugLevel) }

// IsInfoEnabled reports whether INFO entries from the calling package are written.
func (l Logger) IsInfoEnabled() bool { return l.enabled(callerDepth, core.InfoLevel) }

// IsWarnEnabled reports whether WARN entries from the calling package are written.
func (l Logger) IsWarnEnabled() bool { return l.enabled(callerDepth, core.WarnLevel) }

// IsErrorEnabled reports whether ERROR entries from the calling package are written.
func (l Logger) IsErrorEnabled() bool { return l.enabled(callerDepth, core.ErrorLevel) }

// IsEnabled reports whether entries at level from the calling package are written.
func (l Logger) IsEnabled(level core.Level) bool { return l.enabled(callerDepth, level) }

// Trace logs at TRACE. A trailing error argument is attached as the cause.
func (l Logger) Trace(template string, args ...any) {
	l.log(context.Background(), callerDepth, core.TraceLevel, template, args...)
}

// Debug logs at DEBUG. A trailing error argument is attached as the cause.
func (l Logger) Debug(template string, args ...any) {
	l.log(context.Background(), callerDepth, core.DebugLevel, template, args...)
}

// Info logs at INFO. A trailing error argument is attached as the cause.
func (l Logger) Info(template string, args ...any) {
	l.log(context.Background(), callerDepth, core.InfoLevel, template, args...)
}

// Warn logs at WARN. A trailing error argument is attached as the cause.
func (l Logger) Warn(template string, args ...any) {
	l.log(context.Background(), callerDepth, core.WarnLevel, template, args...)
}

// Error logs at ERROR. A trailing error argument is attached as the cause.
func (l Logger) Error(template string, args ...any) {
	l.log(context.Background(), callerDepth, core.ErrorLevel, template, args...)
}

// Log logs at level.
func (l Logger) Log(level core.Level, template string, args ...any) {
	l.log(context.Background(), callerDepth, level, template, args...)
}

// TraceCtx logs at TRACE with the message prefix carried by ctx.
func (l Logger) TraceCtx(ctx context.Context, template string, args ...any) {
	l.log(ctx, callerDepth, core.TraceLevel, template, args...)
}

// DebugCtx logs at DEBUG with the message prefix carried by ctx.
func (l Logger) DebugCtx(ctx context.Context, template string, args ...any) {
	l.log(ctx, callerDepth, core.DebugLevel, template, args...)
}

// InfoCtx logs at INFO with the message prefix carried by ctx.
func (l Logger) InfoCtx(ctx context.Context, template string, args ...any) {
	l.log(ctx, callerDepth, core.InfoLevel, template, args...)
}

// WarnCtx logs at WARN with the message prefix carried by ctx.
func (l Logger) WarnCtx(ctx context.Context, template string, args ...any) {
	l.log(ctx, callerDepth, core.WarnLevel, template, args...)
}

// ErrorCtx logs at ERROR with the message prefix carried by ctx.
func (l Logger) ErrorCtx(ctx context.Context, template string, args ...any) {
	l.log(ctx, callerDepth, core.ErrorLevel, template, args...)
}

// LogCtx logs at level with the message prefix carried by ctx.
func (l Logger) LogCtx(ctx context.Context, level core.Level, template string, args ...any) {
	l.log(ctx, callerDepth, level, template, args...)
}
