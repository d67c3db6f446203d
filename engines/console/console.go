// Package console is the built-in backend. It needs no capability detection
// and writes plain lines: ERROR entries go to the error stream, every other
// level to the regular stream.
package console

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/fatih/color"

	"github.com/kart-io/unilog/core"
	"github.com/kart-io/unilog/errors"
	"github.com/kart-io/unilog/option"
	"github.com/kart-io/unilog/output"
)

// Name is the registry id of this backend.
const Name = core.ConsoleID

// TimeFormat is the timestamp layout of every console line.
const TimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Backend writes "[time] [LEVEL] caller: message" lines.
type Backend struct {
	opts  *option.Options
	level atomic.Int32

	sinkOnce sync.Once
	opened   atomic.Bool
	sink     *output.Sink
	ownSink  bool

	labels map[core.Level]string
}

// New creates a console backend. Output paths are opened on first use; when
// they cannot be opened the backend falls back to the process streams.
// Without options every level is written.
func New(opts *option.Options) *Backend {
	level := core.TraceLevel
	if opts == nil {
		opts = option.DefaultOptions()
	} else {
		level = opts.ParsedLevel()
	}
	b := &Backend{opts: opts.Clone()}
	b.level.Store(int32(level))
	b.labels = levelLabels(b.opts.NoColor)
	return b
}

// NewWithSink creates a console backend writing to sink.
func NewWithSink(opts *option.Options, sink *output.Sink) *Backend {
	b := New(opts)
	b.sinkOnce.Do(func() {
		b.sink = sink
		b.opened.Store(true)
	})
	return b
}

func levelLabels(noColor bool) map[core.Level]string {
	colors := map[core.Level]*color.Color{
		core.TraceLevel: color.New(color.FgHiBlack),
		core.DebugLevel: color.New(color.FgMagenta),
		core.InfoLevel:  color.New(color.FgBlue),
		core.WarnLevel:  color.New(color.FgYellow),
		core.ErrorLevel: color.New(color.FgRed, color.Bold),
	}

	labels := make(map[core.Level]string, len(colors))
	for level, c := range colors {
		if noColor {
			c.DisableColor()
		}
		labels[level] = c.Sprint(level.CapitalString())
	}
	return labels
}

func (b *Backend) Name() string { return Name }

// Console marks the backend as always supported.
func (b *Backend) Console() bool { return true }

// Init is never called for console backends; it reports success for callers
// that call it directly.
func (b *Backend) Init() (bool, error) { return true, nil }

// NewHandle returns the component id; console lines need no native logger.
func (b *Backend) NewHandle(component string) (any, error) {
	return component, nil
}

func (b *Backend) Enabled(_ any, level core.Level) (bool, error) {
	return level >= core.Level(b.level.Load()), nil
}

// Emit writes entry to the regular stream.
func (b *Backend) Emit(handle any, entry *core.Entry) error {
	if ok, _ := b.Enabled(handle, entry.Level); !ok {
		return nil
	}
	return b.write(b.output().Out(), handle, entry)
}

// EmitError writes entry to the error stream.
func (b *Backend) EmitError(handle any, entry *core.Entry) error {
	if ok, _ := b.Enabled(handle, entry.Level); !ok {
		return nil
	}
	return b.write(b.output().Err(), handle, entry)
}

func (b *Backend) write(w io.Writer, handle any, entry *core.Entry) error {
	var buf bytes.Buffer
	buf.WriteString("[")
	buf.WriteString(entry.Time.Format(TimeFormat))
	buf.WriteString("] [")
	buf.WriteString(b.label(entry.Level))
	buf.WriteString("] ")
	buf.WriteString(b.location(handle, entry))
	buf.WriteString(": ")
	buf.WriteString(entry.Message)
	buf.WriteByte('\n')
	if entry.Cause != nil {
		// %+v prints the stack recorded by github.com/pkg/errors causes
		fmt.Fprintf(&buf, "%+v\n", entry.Cause)
	}

	_, err := w.Write(buf.Bytes())
	return err
}

func (b *Backend) label(level core.Level) string {
	if label, ok := b.labels[level]; ok {
		return label
	}
	return level.CapitalString()
}

func (b *Backend) location(handle any, entry *core.Entry) string {
	if !b.opts.DisableCaller && entry.Caller.Defined() {
		return entry.Caller.String()
	}
	if entry.Component != "" {
		return entry.Component
	}
	if component, ok := handle.(string); ok && component != "" {
		return component
	}
	return core.UnknownComponent
}

func (b *Backend) output() *output.Sink {
	b.sinkOnce.Do(func() {
		sink, err := output.Open(b.opts.OutputPaths, b.opts.Rotation)
		if err != nil {
			errors.DefaultHandler().HandleError(errors.NewError(errors.ConfigError, Name,
				"cannot open output paths, falling back to stdout/stderr", err))
			sink = output.NewSink(os.Stdout, os.Stderr)
		} else {
			b.ownSink = true
		}
		b.sink = sink
		b.opened.Store(true)
	})
	return b.sink
}

// SetLevel changes the minimum level.
func (b *Backend) SetLevel(level core.Level) {
	b.level.Store(int32(level))
}

// Sync flushes buffered entries. It does nothing before the first entry.
func (b *Backend) Sync() error {
	if !b.opened.Load() {
		return nil
	}
	return b.output().Sync()
}

// Close releases files opened for the configured output paths. Paths that
// were never written to are never opened.
func (b *Backend) Close() error {
	if !b.opened.Load() {
		return nil
	}
	sink := b.output()
	if !b.ownSink {
		return nil
	}
	return sink.Close()
}
