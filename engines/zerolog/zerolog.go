// Package zerolog adapts github.com/rs/zerolog to the unilog backend contract.
package zerolog

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/kart-io/unilog/core"
	"github.com/kart-io/unilog/fields"
	"github.com/kart-io/unilog/option"
	"github.com/kart-io/unilog/output"
)

// Name is the registry id of this backend.
const Name = "zerolog"

// Backend builds one zerolog root logger and hands out children per component.
// Children copy the root level when created, so the minimum level is kept on
// the backend and checked before every event.
type Backend struct {
	opts  *option.Options
	level atomic.Int32

	mu      sync.RWMutex
	sink    *output.Sink
	ownSink bool
	root    *zerolog.Logger
	timeKey string
}

// New creates a zerolog backend that opens opts.OutputPaths on Init.
func New(opts *option.Options) *Backend {
	if opts == nil {
		opts = option.DefaultOptions()
	}
	b := &Backend{opts: opts.Clone()}
	b.level.Store(int32(b.opts.ParsedLevel()))
	return b
}

// NewWithSink creates a zerolog backend writing to sink instead of opts.OutputPaths.
func NewWithSink(opts *option.Options, sink *output.Sink) *Backend {
	b := New(opts)
	b.sink = sink
	return b
}

func (b *Backend) Name() string { return Name }

// Init builds the root logger.
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

	lowerGlobalLevel(b.minLevel())

	var root zerolog.Logger
	switch b.opts.Format {
	case option.FormatJSON:
		b.timeKey = fields.TimestampField
		root = zerolog.New(b.sink.Out())
	default:
		b.timeKey = zerolog.TimestampFieldName
		root = zerolog.New(zerolog.ConsoleWriter{
			Out:        b.sink.Out(),
			NoColor:    b.opts.NoColor,
			TimeFormat: time.RFC3339,
		})
	}
	root = root.Level(zerolog.TraceLevel)
	b.root = &root
	return true, nil
}

// NewHandle returns a *zerolog.Logger carrying the component field.
func (b *Backend) NewHandle(component string) (any, error) {
	root := b.Root()
	if root == nil {
		return nil, fmt.Errorf("zerolog backend is not initialized")
	}
	l := root.With().Str(fields.ComponentField, component).Logger()
	return &l, nil
}

func (b *Backend) Enabled(handle any, level core.Level) (bool, error) {
	l, err := logger(handle)
	if err != nil {
		return false, err
	}
	zl := mapToZerologLevel(level)
	return zl >= b.minLevel() && zl >= l.GetLevel() && zl >= zerolog.GlobalLevel(), nil
}

// Emit writes entry with the caller and time captured at the facade boundary.
func (b *Backend) Emit(handle any, entry *core.Entry) error {
	l, err := logger(handle)
	if err != nil {
		return err
	}

	zl := mapToZerologLevel(entry.Level)
	if zl < b.minLevel() {
		return nil
	}
	e := l.WithLevel(zl)
	if e == nil {
		return nil
	}
	e = e.Time(b.timeKey, entry.Time)
	if !b.opts.DisableCaller && entry.Caller.Defined() {
		e = e.Str(zerolog.CallerFieldName, entry.Caller.ShortFile())
	}
	if entry.Cause != nil {
		e = e.Err(entry.Cause)
	}
	e.Msg(entry.Message)
	return nil
}

// Root returns the root logger, or nil before Init.
func (b *Backend) Root() *zerolog.Logger {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.root
}

// SetLevel changes the minimum level of every handle.
func (b *Backend) SetLevel(level core.Level) {
	b.level.Store(int32(level))
	lowerGlobalLevel(mapToZerologLevel(level))
}

func (b *Backend) minLevel() zerolog.Level {
	return mapToZerologLevel(core.Level(b.level.Load()))
}

// lowerGlobalLevel moves the package-wide floor down to level. The floor
// defaults to debug and would otherwise drop trace events.
func lowerGlobalLevel(level zerolog.Level) {
	if level < zerolog.GlobalLevel() {
		zerolog.SetGlobalLevel(level)
	}
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

func logger(handle any) (*zerolog.Logger, error) {
	l, ok := handle.(*zerolog.Logger)
	if !ok || l == nil {
		return nil, fmt.Errorf("unexpected zerolog handle %T", handle)
	}
	return l, nil
}

func mapToZerologLevel(level core.Level) zerolog.Level {
	switch level {
	case core.TraceLevel:
		return zerolog.TraceLevel
	case core.DebugLevel:
		return zerolog.DebugLevel
	case core.InfoLevel:
		return zerolog.InfoLevel
	case core.WarnLevel:
		return zerolog.WarnLevel
	case core.ErrorLevel:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
