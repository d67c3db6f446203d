package core

import "time"

// Entry is one log record handed to a backend.
type Entry struct {
	Time      time.Time
	Level     Level
	Component string
	Caller    Frame
	Message   string
	Cause     error
}

// Backend adapts one logging implementation to the facade. Implementations
// may return errors or panic from any method; the Factory converts those into
// "unsupported", CreationFailure or a dropped entry as appropriate.
type Backend interface {
	// Name returns a stable display name.
	Name() string

	// Init prepares the backend and reports whether it is usable. It is called
	// at most once per Factory, on the first capability query.
	Init() (bool, error)

	// NewHandle creates a backend-native logger bound to component.
	NewHandle(component string) (any, error)

	// Enabled reports whether level is enabled for handle.
	Enabled(handle any, level Level) (bool, error)

	// Emit writes entry through handle.
	Emit(handle any, entry *Entry) error
}

// ConsoleBackend is implemented by backends that need no capability detection.
type ConsoleBackend interface {
	Console() bool
}

// Per-level emit hooks. A backend implements only the hooks whose behavior
// differs from its generic Emit; the others fall back to Emit.
type (
	TraceEmitter interface {
		EmitTrace(handle any, entry *Entry) error
	}
	DebugEmitter interface {
		EmitDebug(handle any, entry *Entry) error
	}
	InfoEmitter interface {
		EmitInfo(handle any, entry *Entry) error
	}
	WarnEmitter interface {
		EmitWarn(handle any, entry *Entry) error
	}
	ErrorEmitter interface {
		EmitError(handle any, entry *Entry) error
	}
)

// dispatch routes entry to the level hook of b, or to Emit when b has none.
func dispatch(b Backend, handle any, entry *Entry) error {
	switch entry.Level {
	case TraceLevel:
		if h, ok := b.(TraceEmitter); ok {
			return h.EmitTrace(handle, entry)
		}
	case DebugLevel:
		if h, ok := b.(DebugEmitter); ok {
			return h.EmitDebug(handle, entry)
		}
	case InfoLevel:
		if h, ok := b.(InfoEmitter); ok {
			return h.EmitInfo(handle, entry)
		}
	case WarnLevel:
		if h, ok := b.(WarnEmitter); ok {
			return h.EmitWarn(handle, entry)
		}
	case ErrorLevel:
		if h, ok := b.(ErrorEmitter); ok {
			return h.EmitError(handle, entry)
		}
	}
	return b.Emit(handle, entry)
}
