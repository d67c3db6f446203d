// Package slog adapts the standard library log/slog package to the unilog
// backend contract.
package slog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/kart-io/unilog/core"
	"github.com/kart-io/unilog/fields"
	"github.com/kart-io/unilog/option"
	"github.com/kart-io/unilog/output"
)

// Name is the registry id of this backend.
const Name = "slog"

// LevelTrace sits one step below slog.LevelDebug.
const LevelTrace = slog.LevelDebug - 4

// Backend builds one slog handler and hands out child loggers per component.
type Backend struct {
	opts *option.Options

	mu       sync.RWMutex
	sink     *output.Sink
	ownSink  bool
	root     *slog.Logger
	levelVar *slog.LevelVar
}

// New creates a slog backend that opens opts.OutputPaths on Init.
func New(opts *option.Options) *Backend {
	if opts == nil {
		opts = option.DefaultOptions()
	}
	return &Backend{opts: opts.Clone(), levelVar: new(slog.LevelVar)}
}

// NewWithSink creates a slog backend writing to sink instead of opts.OutputPaths.
func NewWithSink(opts *option.Options, sink *output.Sink) *Backend {
	b := New(opts)
	b.sink = sink
	return b
}

func (b *Backend) Name() string { return Name }

// Init builds the root handler.
func (b *Backend) Init() (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.opts.Validate(); err != nil {
		return false, err
	}

	if b.sink == nil {
		sink, err := output.Open(b.opts.OutputPaths, b.opts.Rotation)
		if err != nil {
			return false, err
		}
		b.sink, b.ownSink = sink, true
	}

	b.levelVar.Set(mapToSlogLevel(b.opts.ParsedLevel()))
	handlerOpts := &slog.HandlerOptions{
		AddSource:   !b.opts.DisableCaller,
		Level:       b.levelVar,
		ReplaceAttr: replaceAttr,
	}

	var handler slog.Handler
	switch b.opts.Format {
	case option.FormatJSON:
		handler = slog.NewJSONHandler(b.sink.Out(), handlerOpts)
	default:
		handler = slog.NewTextHandler(b.sink.Out(), handlerOpts)
	}
	b.root = slog.New(handler)
	return true, nil
}

// replaceAttr standardizes field names to match the zap backend output.
func replaceAttr(groups []string, attr slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return attr
	}

	switch attr.Key {
	case slog.TimeKey, slog.MessageKey:
		return slog.Attr{Key: fields.Standard(attr.Key), Value: attr.Value}
	case slog.LevelKey:
		if level, ok := attr.Value.Any().(slog.Level); ok {
			return slog.String(fields.LevelField, levelName(level))
		}
		return slog.Attr{Key: fields.LevelField, Value: attr.Value}
	case slog.SourceKey:
		if src, ok := attr.Value.Any().(*slog.Source); ok && src != nil {
			frame := core.Frame{Function: src.Function, File: src.File, Line: src.Line}
			return slog.String(fields.CallerField, frame.ShortFile())
		}
		return slog.Attr{Key: fields.CallerField, Value: attr.Value}
	default:
		return attr
	}
}

func levelName(level slog.Level) string {
	if level <= LevelTrace {
		return "trace"
	}
	return strings.ToLower(level.String())
}

// NewHandle returns a *slog.Logger carrying the component attribute.
func (b *Backend) NewHandle(component string) (any, error) {
	root := b.Root()
	if root == nil {
		return nil, fmt.Errorf("slog backend is not initialized")
	}
	return root.With(slog.String(fields.ComponentField, component)), nil
}

func (b *Backend) Enabled(handle any, level core.Level) (bool, error) {
	l, err := logger(handle)
	if err != nil {
		return false, err
	}
	return l.Enabled(context.Background(), mapToSlogLevel(level)), nil
}

// Emit builds a record stamped with the facade's time and caller and hands it
// to the handler directly, so handler errors surface to the caller.
func (b *Backend) Emit(handle any, entry *core.Entry) error {
	l, err := logger(handle)
	if err != nil {
		return err
	}

	level := mapToSlogLevel(entry.Level)
	ctx := context.Background()
	if !l.Enabled(ctx, level) {
		return nil
	}

	var pc uintptr
	if !b.opts.DisableCaller {
		pc = entry.Caller.PC
	}
	r := slog.NewRecord(entry.Time, level, entry.Message, pc)
	if entry.Cause != nil {
		r.AddAttrs(slog.Any(fields.ErrorField, entry.Cause))
	}
	return l.Handler().Handle(ctx, r)
}

// Root returns the root logger, or nil before Init.
func (b *Backend) Root() *slog.Logger {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.root
}

// SetLevel changes the minimum level of every handle. Before Init it replaces
// the configured level.
func (b *Backend) SetLevel(level core.Level) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.opts.Level = level.CapitalString()
	b.levelVar.Set(mapToSlogLevel(level))
}

// Sync flushes buffered entries.
func (b *Backend) Sync() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.sink == nil {
		return nil
	}
	return b.sink.Sync()
}

// Close releases the files opened on Init.
func (b *Backend) Close() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.sink == nil || !b.ownSink {
		return nil
	}
	return b.sink.Close()
}

func logger(handle any) (*slog.Logger, error) {
	l, ok := handle.(*slog.Logger)
	if !ok || l == nil {
		return nil, fmt.Errorf("unexpected slog handle %T", handle)
	}
	return l, nil
}

func mapToSlogLevel(level core.Level) slog.Level {
	switch level {
	case core.TraceLevel:
		return LevelTrace
	case core.DebugLevel:
		return slog.LevelDebug
	case core.InfoLevel:
		return slog.LevelInfo
	case core.WarnLevel:
		return slog.LevelWarn
	case core.ErrorLevel:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
