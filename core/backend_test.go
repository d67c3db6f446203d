package core

import (
	"bytes"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/unilog/errors"
	"github.com/kart-io/unilog/telemetry"
)

// recordingBackend is a Backend that records every call it receives.
type recordingBackend struct {
	name string

	initOK    bool
	initErr   error
	initPanic bool
	initCalls atomic.Int32

	handleErr   error
	handlePanic bool
	nilHandle   bool
	handleCalls atomic.Int32

	minLevel   Level
	enabledErr error
	emitErr    error
	emitPanic  bool

	mu      sync.Mutex
	entries []Entry
}

func newRecordingBackend(name string) *recordingBackend {
	return &recordingBackend{name: name, initOK: true, minLevel: TraceLevel}
}

func (b *recordingBackend) Name() string { return b.name }

func (b *recordingBackend) Init() (bool, error) {
	b.initCalls.Add(1)
	if b.initPanic {
		panic("init exploded")
	}
	return b.initOK, b.initErr
}

func (b *recordingBackend) NewHandle(component string) (any, error) {
	b.handleCalls.Add(1)
	if b.handlePanic {
		panic("handle exploded")
	}
	if b.handleErr != nil {
		return nil, b.handleErr
	}
	if b.nilHandle {
		return nil, nil
	}
	return "handle:" + component, nil
}

func (b *recordingBackend) Enabled(_ any, level Level) (bool, error) {
	if b.enabledErr != nil {
		return false, b.enabledErr
	}
	return level >= b.minLevel, nil
}

func (b *recordingBackend) Emit(_ any, entry *Entry) error {
	if b.emitPanic {
		panic("emit exploded")
	}
	if b.emitErr != nil {
		return b.emitErr
	}
	b.mu.Lock()
	b.entries = append(b.entries, *entry)
	b.mu.Unlock()
	return nil
}

func (b *recordingBackend) recorded() []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// errorHookBackend overrides only the ERROR hook.
type errorHookBackend struct {
	*recordingBackend
	errorHook []Entry
}

func (b *errorHookBackend) EmitError(_ any, entry *Entry) error {
	b.errorHook = append(b.errorHook, *entry)
	return nil
}

// testHandler returns an error handler writing into a buffer.
func testHandler() (*errors.ErrorHandler, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return errors.NewErrorHandler(errors.NewSafeErrorLogger(buf)), buf
}

func newTestFactory(b Backend) (*Factory, *errors.ErrorHandler, *bytes.Buffer) {
	h, buf := testHandler()
	f := NewFactory(b, WithErrorHandler(h), WithMetrics(telemetry.New(b.Name())))
	return f, h, buf
}

func TestDispatch_LevelHooks(t *testing.T) {
	base := newRecordingBackend("hooked")
	b := &errorHookBackend{recordingBackend: base}

	for _, level := range Levels {
		require.NoError(t, dispatch(b, nil, &Entry{Level: level, Message: level.String()}))
	}

	require.Len(t, b.errorHook, 1)
	assert.Equal(t, "error", b.errorHook[0].Message)

	var generic []string
	for _, e := range base.recorded() {
		generic = append(generic, e.Message)
	}
	assert.Equal(t, []string{"trace", "debug", "info", "warn"}, generic)
}

func TestDispatch_Fallback(t *testing.T) {
	b := newRecordingBackend("plain")
	require.NoError(t, dispatch(b, nil, &Entry{Level: ErrorLevel, Message: "x"}))
	assert.Len(t, b.recorded(), 1)

	b.emitErr = fmt.Errorf("closed")
	assert.EqualError(t, dispatch(b, nil, &Entry{Level: InfoLevel}), "closed")
}
