package zap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/unilog/core"
	"github.com/kart-io/unilog/option"
	"github.com/kart-io/unilog/output"
)

var fixedTime = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func newTestBackend(t *testing.T, modify func(o *option.Options)) (*Backend, *bytes.Buffer) {
	t.Helper()

	opts := option.DefaultOptions()
	opts.Format = option.FormatJSON
	opts.Level = "TRACE"
	if modify != nil {
		modify(opts)
	}

	var buf bytes.Buffer
	b := NewWithSink(opts, output.NewSink(&buf, nil))
	ok, err := b.Init()
	require.NoError(t, err)
	require.True(t, ok)
	return b, &buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m), line)
		out = append(out, m)
	}
	return out
}

func TestBackend_InitInvalidOptions(t *testing.T) {
	opts := option.DefaultOptions()
	opts.Level = "INVALID_LEVEL"

	ok, err := New(opts).Init()
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestBackend_InitBadOutputPath(t *testing.T) {
	opts := option.DefaultOptions()
	opts.OutputPaths = []string{"/dev/null/not-a-dir/app.log"}

	ok, err := New(opts).Init()
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestBackend_HandleBeforeInit(t *testing.T) {
	_, err := New(nil).NewHandle("pkg")
	assert.Error(t, err)
}

func TestBackend_Emit(t *testing.T) {
	b, buf := newTestBackend(t, nil)

	handle, err := b.NewHandle("github.com/acme/api")
	require.NoError(t, err)

	caller := core.CallerFrame(0)
	require.NoError(t, b.Emit(handle, &core.Entry{
		Time:    fixedTime,
		Level:   core.WarnLevel,
		Caller:  caller,
		Message: "disk almost full",
		Cause:   fmt.Errorf("quota"),
	}))

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	line := lines[0]
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "disk almost full", line["message"])
	assert.Equal(t, "github.com/acme/api", line["component"])
	assert.Equal(t, "quota", line["error"])
	assert.Equal(t, "2024-05-01T10:00:00Z", line["timestamp"])
	assert.Contains(t, line["caller"], "zap/zap_test.go:")
}

func TestBackend_TraceLevel(t *testing.T) {
	b, buf := newTestBackend(t, nil)
	handle, err := b.NewHandle("pkg")
	require.NoError(t, err)

	enabled, err := b.Enabled(handle, core.TraceLevel)
	require.NoError(t, err)
	assert.True(t, enabled)

	require.NoError(t, b.Emit(handle, &core.Entry{Time: fixedTime, Level: core.TraceLevel, Message: "fine grained"}))
	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "trace", lines[0]["level"])
}

func TestBackend_LevelFiltering(t *testing.T) {
	b, buf := newTestBackend(t, func(o *option.Options) { o.Level = "WARN" })
	handle, err := b.NewHandle("pkg")
	require.NoError(t, err)

	for _, tt := range []struct {
		level core.Level
		want  bool
	}{
		{core.TraceLevel, false},
		{core.DebugLevel, false},
		{core.InfoLevel, false},
		{core.WarnLevel, true},
		{core.ErrorLevel, true},
	} {
		enabled, err := b.Enabled(handle, tt.level)
		require.NoError(t, err)
		assert.Equal(t, tt.want, enabled, tt.level.String())
	}

	require.NoError(t, b.Emit(handle, &core.Entry{Time: fixedTime, Level: core.InfoLevel, Message: "filtered"}))
	assert.Empty(t, buf.String())

	b.SetLevel(core.InfoLevel)
	enabled, err := b.Enabled(handle, core.InfoLevel)
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestBackend_SetLevelBeforeInit(t *testing.T) {
	opts := option.DefaultOptions()
	opts.Format = option.FormatJSON
	var buf bytes.Buffer
	b := NewWithSink(opts, output.NewSink(&buf, nil))
	b.SetLevel(core.DebugLevel)

	ok, err := b.Init()
	require.NoError(t, err)
	require.True(t, ok)
	handle, err := b.NewHandle("pkg")
	require.NoError(t, err)

	enabled, err := b.Enabled(handle, core.DebugLevel)
	require.NoError(t, err)
	assert.True(t, enabled)
	enabled, err = b.Enabled(handle, core.TraceLevel)
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestBackend_DisableCaller(t *testing.T) {
	b, buf := newTestBackend(t, func(o *option.Options) { o.DisableCaller = true })
	handle, err := b.NewHandle("pkg")
	require.NoError(t, err)

	require.NoError(t, b.Emit(handle, &core.Entry{Time: fixedTime, Level: core.InfoLevel, Caller: core.CallerFrame(0), Message: "m"}))
	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.NotContains(t, lines[0], "caller")
}

func TestBackend_ConsoleFormat(t *testing.T) {
	b, buf := newTestBackend(t, func(o *option.Options) {
		o.Format = option.FormatConsole
		o.NoColor = true
	})
	handle, err := b.NewHandle("pkg")
	require.NoError(t, err)

	require.NoError(t, b.Emit(handle, &core.Entry{Time: fixedTime, Level: core.TraceLevel, Message: "console line"}))
	out := buf.String()
	assert.Contains(t, out, "TRACE")
	assert.Contains(t, out, "console line")
}

func TestBackend_BadHandle(t *testing.T) {
	b, _ := newTestBackend(t, nil)

	_, err := b.Enabled("not a logger", core.InfoLevel)
	assert.Error(t, err)
	assert.Error(t, b.Emit(nil, &core.Entry{Level: core.InfoLevel}))
}

func TestBackend_SyncClose(t *testing.T) {
	b, _ := newTestBackend(t, nil)
	assert.NoError(t, b.Sync())
	assert.NoError(t, b.Close())
	assert.NotNil(t, b.Root())
}
