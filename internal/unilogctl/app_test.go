package unilogctl

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/unilog"
	"github.com/kart-io/unilog/option"
)

const thisPackage = "github.com/kart-io/unilog/internal/unilogctl"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() { require.NoError(t, unilog.Init(option.DefaultOptions())) })

	cmd := NewApp().Command()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestBackends(t *testing.T) {
	out, err := execute(t, "backends", "--log.backend=slog", "--log.no-color")
	require.NoError(t, err)

	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "slog *")
	for _, id := range unilog.BuiltinIDs {
		assert.Contains(t, out, id)
	}
	assert.Contains(t, out, "supported")
}

func TestEmit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emit.log")

	_, err := execute(t, "emit", "warn", "disk %s at %s", "sda", "91%",
		"--cause=quota exceeded",
		"--log.backend=zap", "--log.format=json", "--log.output-paths="+path)
	require.NoError(t, err)

	content := readFile(t, path)
	assert.Contains(t, content, "disk sda at 91%")
	assert.Contains(t, content, "quota exceeded")
	assert.Contains(t, content, `"component":"`+thisPackage+`"`)
}

func TestEmit_InvalidLevel(t *testing.T) {
	_, err := execute(t, "emit", "loud", "hello")
	assert.Error(t, err)

	_, err = execute(t, "emit", "info")
	assert.Error(t, err)
}

func TestUnknownBackend(t *testing.T) {
	_, err := execute(t, "emit", "info", "hello", "--log.backend=log4go")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialize logger")
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "out.log")
	cfgPath := filepath.Join(dir, "unilog.yaml")
	cfg := "log:\n  backend: slog\n  format: json\n  level: debug\n  output_paths:\n    - " + logPath + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	_, err := execute(t, "emit", "debug", "from %s", "config", "-c", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, readFile(t, logPath), "from config")
}

func TestConfigFile_FlagsWin(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "unilog.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("log:\n  backend: slog\n  level: error\n"), 0o644))

	logPath := filepath.Join(dir, "out.log")
	_, err := execute(t, "emit", "info", "flag level wins", "-c", cfgPath,
		"--log.level=info", "--log.format=json", "--log.output-paths="+logPath)
	require.NoError(t, err)
	assert.Contains(t, readFile(t, logPath), "flag level wins")
}

func TestWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watch.log")

	_, err := execute(t, "watch", "--interval=10ms", "--count=2",
		"--log.backend=zerolog", "--log.format=json", "--log.output-paths="+path)
	require.NoError(t, err)

	content := readFile(t, path)
	assert.Contains(t, content, "heartbeat 1 via zerolog")
	assert.Contains(t, content, "heartbeat 2 via zerolog")
}

func TestOptions_Validate(t *testing.T) {
	opts := NewOptions()
	require.NoError(t, opts.Validate())

	opts.Interval = 0
	assert.Error(t, opts.Validate())

	opts = &Options{Interval: 1}
	require.NoError(t, opts.Validate())
	assert.NotNil(t, opts.Log)
}
