package core

import (
	"fmt"
	"testing"

	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/unilog/errors"
)

type consoleLike struct{ *recordingBackend }

func (consoleLike) Console() bool { return true }

func TestNewFactory_Nil(t *testing.T) {
	assert.Nil(t, NewFactory(nil))
}

func TestFactory_ConsoleSkipsInit(t *testing.T) {
	b := consoleLike{newRecordingBackend("console")}
	b.initOK = false

	f, _, _ := newTestFactory(b)
	assert.True(t, f.IsConsole())
	assert.True(t, f.IsSupported())
	assert.Equal(t, int32(0), b.initCalls.Load())
}

func TestFactory_IsSupported(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(b *recordingBackend)
		want    bool
		wantLog bool
	}{
		{"usable", func(b *recordingBackend) {}, true, false},
		{"reports false", func(b *recordingBackend) { b.initOK = false }, false, true},
		{"reports error", func(b *recordingBackend) { b.initErr = fmt.Errorf("no sink") }, false, true},
		{"panics", func(b *recordingBackend) { b.initPanic = true }, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newRecordingBackend("fake")
			tt.setup(b)
			f, h, buf := newTestFactory(b)

			assert.Equal(t, tt.want, f.IsSupported())
			assert.Equal(t, tt.want, f.IsSupported())
			assert.Equal(t, int32(1), b.initCalls.Load())

			if tt.wantLog {
				assert.Error(t, f.InitError())
				assert.Equal(t, 1, h.Count(errors.UnsupportedBackend))
				assert.Contains(t, buf.String(), "the 'fake' backend is not supported")
			} else {
				assert.NoError(t, f.InitError())
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestFactory_InitOnceConcurrent(t *testing.T) {
	b := newRecordingBackend("fake")
	f, _, _ := newTestFactory(b)

	var wg conc.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Go(func() {
			assert.True(t, f.IsSupported())
		})
	}
	wg.Wait()

	assert.Equal(t, int32(1), b.initCalls.Load())
}

func TestFactory_JournalCached(t *testing.T) {
	b := newRecordingBackend("fake")
	f, _, _ := newTestFactory(b)

	j1, err := f.Journal("pkg/a")
	require.NoError(t, err)
	j2, err := f.Journal("pkg/a")
	require.NoError(t, err)
	j3, err := f.Journal("pkg/b")
	require.NoError(t, err)

	assert.Same(t, j1, j2)
	assert.NotSame(t, j1, j3)
	assert.Equal(t, "pkg/a", j1.Component())
	assert.Equal(t, "handle:pkg/a", j1.Handle())
	assert.Same(t, f, j1.Factory())
	assert.Equal(t, 2, f.Len())
	assert.Equal(t, int32(2), b.handleCalls.Load())
}

func TestFactory_JournalConcurrentFirstAccess(t *testing.T) {
	b := newRecordingBackend("fake")
	f, _, _ := newTestFactory(b)

	const n = 100
	journals := make([]*Journal, n)

	var wg conc.WaitGroup
	for i := 0; i < n; i++ {
		wg.Go(func() {
			j, err := f.Journal("pkg/shared")
			assert.NoError(t, err)
			journals[i] = j
		})
	}
	wg.Wait()

	assert.Equal(t, int32(1), b.handleCalls.Load())
	for _, j := range journals {
		assert.Same(t, journals[0], j)
	}
}

func TestFactory_JournalUnsupported(t *testing.T) {
	b := newRecordingBackend("fake")
	b.initOK = false
	f, _, _ := newTestFactory(b)

	j, err := f.Journal("pkg/a")
	assert.Nil(t, j)
	assert.True(t, errors.IsUnsupportedBackend(err))
	assert.Equal(t, int32(0), b.handleCalls.Load())
}

func TestFactory_JournalCreationFailure(t *testing.T) {
	tests := []struct {
		name  string
		setup func(b *recordingBackend)
	}{
		{"error", func(b *recordingBackend) { b.handleErr = fmt.Errorf("cannot open") }},
		{"panic", func(b *recordingBackend) { b.handlePanic = true }},
		{"nil handle", func(b *recordingBackend) { b.nilHandle = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newRecordingBackend("fake")
			tt.setup(b)
			f, _, _ := newTestFactory(b)

			j, err := f.Journal("pkg/a")
			assert.Nil(t, j)
			assert.True(t, errors.IsCreationFailure(err))
			assert.Contains(t, err.Error(), `"pkg/a"`)
			assert.Equal(t, 0, f.Len())
		})
	}
}
