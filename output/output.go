// Package output opens the writers named by a logger configuration.
//
// The special paths "stdout" and "stderr" map to the process streams. Every
// other path is a file; when rotation is configured the file is managed by
// lumberjack, otherwise it is opened for append.
package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/kart-io/unilog/option"
)

const (
	Stdout = "stdout"
	Stderr = "stderr"
)

type target struct {
	path string
	ws   zapcore.WriteSyncer
}

// Sink is the set of writers for one backend. It is safe for concurrent use.
type Sink struct {
	targets []target
	closers []io.Closer

	out zapcore.WriteSyncer
	err zapcore.WriteSyncer

	closeOnce sync.Once
	closeErr  error
}

// Open opens paths. Files are rotated when rotation is enabled.
func Open(paths []string, rotation *option.RotationOption) (*Sink, error) {
	if len(paths) == 0 {
		paths = []string{Stdout}
	}

	s := &Sink{}
	for _, path := range paths {
		path = strings.TrimSpace(path)
		switch strings.ToLower(path) {
		case "":
			continue
		case Stdout:
			s.targets = append(s.targets, target{path: Stdout, ws: zapcore.Lock(os.Stdout)})
		case Stderr:
			s.targets = append(s.targets, target{path: Stderr, ws: zapcore.Lock(os.Stderr)})
		default:
			ws, closer, err := openFile(path, rotation)
			if err != nil {
				_ = s.Close()
				return nil, err
			}
			s.targets = append(s.targets, target{path: path, ws: ws})
			s.closers = append(s.closers, closer)
		}
	}
	if len(s.targets) == 0 {
		return nil, fmt.Errorf("no usable output paths in %v", paths)
	}

	s.out = combine(s.targets, false)
	s.err = combine(s.targets, true)
	return s, nil
}

// NewSink wraps caller-owned writers. errOut receives error entries for
// backends that separate them; nil means out.
func NewSink(out, errOut io.Writer) *Sink {
	if errOut == nil {
		errOut = out
	}
	return &Sink{
		out: zapcore.Lock(zapcore.AddSync(out)),
		err: zapcore.Lock(zapcore.AddSync(errOut)),
	}
}

func openFile(path string, rotation *option.RotationOption) (zapcore.WriteSyncer, io.Closer, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
		}
	}

	if rotation != nil && rotation.MaxSize > 0 {
		rotateWriter := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    rotation.MaxSize,
			MaxAge:     rotation.MaxAge,
			MaxBackups: rotation.MaxBackups,
			Compress:   rotation.Compress,
			LocalTime:  true,
		}
		return zapcore.Lock(zapcore.AddSync(rotateWriter)), rotateWriter, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return zapcore.Lock(f), f, nil
}

// combine joins targets. For the error stream stdout is swapped for stderr,
// unless stderr is already a target.
func combine(targets []target, errStream bool) zapcore.WriteSyncer {
	hasStderr := false
	for _, t := range targets {
		if t.path == Stderr {
			hasStderr = true
		}
	}

	syncers := make([]zapcore.WriteSyncer, 0, len(targets))
	for _, t := range targets {
		if errStream && t.path == Stdout {
			if hasStderr {
				continue
			}
			syncers = append(syncers, zapcore.Lock(os.Stderr))
			continue
		}
		syncers = append(syncers, t.ws)
	}
	if len(syncers) == 1 {
		return syncers[0]
	}
	return zapcore.NewMultiWriteSyncer(syncers...)
}

// Out returns the writer for regular entries.
func (s *Sink) Out() zapcore.WriteSyncer { return s.out }

// Err returns the writer for error entries.
func (s *Sink) Err() zapcore.WriteSyncer { return s.err }

// Paths returns the opened paths.
func (s *Sink) Paths() []string {
	paths := make([]string, 0, len(s.targets))
	for _, t := range s.targets {
		paths = append(paths, t.path)
	}
	return paths
}

// Sync flushes every writer. Errors syncing the process streams are ignored,
// since terminals and pipes reject fsync.
func (s *Sink) Sync() error {
	var firstErr error
	for _, t := range s.targets {
		if t.path == Stdout || t.path == Stderr {
			_ = t.ws.Sync()
			continue
		}
		if err := t.ws.Sync(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Close closes the files opened by Open. The process streams stay open.
func (s *Sink) Close() error {
	s.closeOnce.Do(func() {
		for _, c := range s.closers {
			if err := c.Close(); err != nil && s.closeErr == nil {
				s.closeErr = err
			}
		}
	})
	return s.closeErr
}
