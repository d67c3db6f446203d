// Package logrus adapts github.com/sirupsen/logrus to the unilog backend contract.
package logrus

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kart-io/unilog/core"
	"github.com/kart-io/unilog/fields"
	"github.com/kart-io/unilog/option"
	"github.com/kart-io/unilog/output"
)

// Name is the registry id of this backend.
const Name = "logrus"

// Backend owns one logrus.Logger and hands out entries per component.
type Backend struct {
	opts *option.Options

	mu      sync.RWMutex
	sink    *output.Sink
	ownSink bool
	root    *logrus.Logger
}

// New creates a logrus backend that opens opts.OutputPaths on Init.
func New(opts *option.Options) *Backend {
	if opts == nil {
		opts = option.DefaultOptions()
	}
	return &Backend{opts: opts.Clone()}
}

// NewWithSink creates a logrus backend writing to sink instead of opts.OutputPaths.
func NewWithSink(opts *option.Options, sink *output.Sink) *Backend {
	b := New(opts)
	b.sink = sink
	return b
}

func (b *Backend) Name() string { return Name }

// Init builds the logrus logger.
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

	l := logrus.New()
	l.SetOutput(b.sink.Out())
	l.SetLevel(mapToLogrusLevel(b.opts.ParsedLevel()))

	switch b.opts.Format {
	case option.FormatJSON:
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  fields.TimestampField,
				logrus.FieldKeyLevel: fields.LevelField,
				logrus.FieldKeyMsg:   fields.MessageField,
			},
		})
	default:
		l.SetFormatter(&logrus.TextFormatter{
			DisableColors:   b.opts.NoColor,
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	}
	b.root = l
	return true, nil
}

// NewHandle returns a *logrus.Entry carrying the component field.
func (b *Backend) NewHandle(component string) (any, error) {
	root := b.Root()
	if root == nil {
		return nil, fmt.Errorf("logrus backend is not initialized")
	}
	return root.WithField(fields.ComponentField, component), nil
}

func (b *Backend) Enabled(handle any, level core.Level) (bool, error) {
	e, err := entry(handle)
	if err != nil {
		return false, err
	}
	return e.Logger.IsLevelEnabled(mapToLogrusLevel(level)), nil
}

// Emit writes entry with the caller and time captured at the facade boundary.
func (b *Backend) Emit(handle any, ent *core.Entry) error {
	e, err := entry(handle)
	if err != nil {
		return err
	}

	level := mapToLogrusLevel(ent.Level)
	if !e.Logger.IsLevelEnabled(level) {
		return nil
	}

	e = e.WithTime(ent.Time)
	if !b.opts.DisableCaller && ent.Caller.Defined() {
		e = e.WithField(fields.CallerField, ent.Caller.ShortFile())
	}
	if ent.Cause != nil {
		e = e.WithError(ent.Cause)
	}
	e.Log(level, ent.Message)
	return nil
}

// Root returns the logrus logger, or nil before Init.
func (b *Backend) Root() *logrus.Logger {
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
	if b.root != nil {
		b.root.SetLevel(mapToLogrusLevel(level))
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

func entry(handle any) (*logrus.Entry, error) {
	e, ok := handle.(*logrus.Entry)
	if !ok || e == nil || e.Logger == nil {
		return nil, fmt.Errorf("unexpected logrus handle %T", handle)
	}
	return e, nil
}

func mapToLogrusLevel(level core.Level) logrus.Level {
	switch level {
	case core.TraceLevel:
		return logrus.TraceLevel
	case core.DebugLevel:
		return logrus.DebugLevel
	case core.InfoLevel:
		return logrus.InfoLevel
	case core.WarnLevel:
		return logrus.WarnLevel
	case core.ErrorLevel:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
