// Package zap adapts go.uber.org/zap to the unilog backend contract.
package zap

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kart-io/unilog/core"
	"github.com/kart-io/unilog/fields"
	"github.com/kart-io/unilog/option"
	"github.com/kart-io/unilog/output"
)

// Name is the registry id of this backend.
const Name = "zap"

// Backend builds one zap root logger and hands out named children per component.
type Backend struct {
	opts *option.Options

	mu          sync.RWMutex
	sink        *output.Sink
	ownSink     bool
	root        *zap.Logger
	atomicLevel zap.AtomicLevel
}

// New creates a zap backend that opens opts.OutputPaths on Init.
func New(opts *option.Options) *Backend {
	if opts == nil {
		opts = option.DefaultOptions()
	}
	return &Backend{opts: opts.Clone()}
}

// NewWithSink creates a zap backend writing to sink instead of opts.OutputPaths.
func NewWithSink(opts *option.Options, sink *output.Sink) *Backend {
	b := New(opts)
	b.sink = sink
	return b
}

func (b *Backend) Name() string { return Name }

// Init builds the root logger. It fails when the options are invalid or an
// output path cannot be opened.
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

	b.atomicLevel = zap.NewAtomicLevelAt(mapToZapLevel(b.opts.ParsedLevel()))
	zcore := zapcore.NewCore(newEncoder(b.opts), b.sink.Out(), b.atomicLevel)

	zapOpts := []zap.Option{zap.ErrorOutput(b.sink.Err())}
	if b.opts.Development {
		zapOpts = append(zapOpts, zap.Development(), zap.AddStacktrace(zapcore.ErrorLevel))
	}
	b.root = zap.New(zcore, zapOpts...)
	return true, nil
}

// NewHandle returns a *zap.Logger named after component.
func (b *Backend) NewHandle(component string) (any, error) {
	root := b.Root()
	if root == nil {
		return nil, fmt.Errorf("zap backend is not initialized")
	}
	return root.Named(component), nil
}

func (b *Backend) Enabled(handle any, level core.Level) (bool, error) {
	l, err := logger(handle)
	if err != nil {
		return false, err
	}
	return l.Core().Enabled(mapToZapLevel(level)), nil
}

// Emit writes entry with the caller and time captured at the facade boundary.
func (b *Backend) Emit(handle any, entry *core.Entry) error {
	l, err := logger(handle)
	if err != nil {
		return err
	}

	ce := l.Check(mapToZapLevel(entry.Level), entry.Message)
	if ce == nil {
		return nil
	}
	ce.Time = entry.Time
	if !b.opts.DisableCaller && entry.Caller.Defined() {
		ce.Caller = zapcore.EntryCaller{
			Defined:  true,
			PC:       entry.Caller.PC,
			File:     entry.Caller.File,
			Line:     entry.Caller.Line,
			Function: entry.Caller.Function,
		}
	}

	if entry.Cause != nil {
		ce.Write(zap.Error(entry.Cause))
	} else {
		ce.Write()
	}
	return nil
}

// Root returns the root logger, or nil before Init.
func (b *Backend) Root() *zap.Logger {
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
		b.atomicLevel.SetLevel(mapToZapLevel(level))
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

func logger(handle any) (*zap.Logger, error) {
	l, ok := handle.(*zap.Logger)
	if !ok || l == nil {
		return nil, fmt.Errorf("unexpected zap handle %T", handle)
	}
	return l, nil
}

func newEncoder(opts *option.Options) zapcore.Encoder {
	config := createStandardizedEncoderConfig()
	if opts.Development {
		config.EncodeDuration = zapcore.StringDurationEncoder
	}

	switch strings.ToLower(opts.Format) {
	case option.FormatJSON:
		return zapcore.NewJSONEncoder(config)
	default:
		if !opts.NoColor {
			config.EncodeLevel = capitalColorLevelEncoder
		} else {
			config.EncodeLevel = capitalLevelEncoder
		}
		return zapcore.NewConsoleEncoder(config)
	}
}

func createStandardizedEncoderConfig() zapcore.EncoderConfig {
	config := zap.NewProductionEncoderConfig()

	// Use our standardized field names
	config.TimeKey = fields.TimestampField
	config.LevelKey = fields.LevelField
	config.MessageKey = fields.MessageField
	config.CallerKey = fields.CallerField
	config.NameKey = fields.ComponentField
	config.StacktraceKey = fields.StacktraceField

	config.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	config.EncodeLevel = lowercaseLevelEncoder
	config.EncodeCaller = zapcore.ShortCallerEncoder

	return config
}

// zapTraceLevel sits one step below zapcore.DebugLevel.
const zapTraceLevel = zapcore.DebugLevel - 1

func lowercaseLevelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	if l == zapTraceLevel {
		enc.AppendString("trace")
		return
	}
	zapcore.LowercaseLevelEncoder(l, enc)
}

func capitalLevelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	if l == zapTraceLevel {
		enc.AppendString("TRACE")
		return
	}
	zapcore.CapitalLevelEncoder(l, enc)
}

func capitalColorLevelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	if l == zapTraceLevel {
		// magenta, matching zap's debug color family
		enc.AppendString("\x1b[35mTRACE\x1b[0m")
		return
	}
	zapcore.CapitalColorLevelEncoder(l, enc)
}

func mapToZapLevel(level core.Level) zapcore.Level {
	switch level {
	case core.TraceLevel:
		return zapTraceLevel
	case core.DebugLevel:
		return zapcore.DebugLevel
	case core.InfoLevel:
		return zapcore.InfoLevel
	case core.WarnLevel:
		return zapcore.WarnLevel
	case core.ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
