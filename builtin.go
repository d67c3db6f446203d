package unilog

import (
	"fmt"
	"io"
	"sync"

	"github.com/kart-io/unilog/core"
	"github.com/kart-io/unilog/engines/console"
	logrusengine "github.com/kart-io/unilog/engines/logrus"
	slogengine "github.com/kart-io/unilog/engines/slog"
	zapengine "github.com/kart-io/unilog/engines/zap"
	zerologengine "github.com/kart-io/unilog/engines/zerolog"
	"github.com/kart-io/unilog/errors"
	"github.com/kart-io/unilog/option"
)

// BuiltinIDs lists the identifiers registered on the default registry.
var BuiltinIDs = []string{
	console.Name,
	slogengine.Name,
	zapengine.Name,
	zerologengine.Name,
	logrusengine.Name,
}

// NewBuiltinBackends creates one backend per built-in id, configured by opts.
func NewBuiltinBackends(opts *option.Options) map[string]core.Backend {
	return map[string]core.Backend{
		console.Name:       console.New(opts),
		slogengine.Name:    slogengine.New(opts),
		zapengine.Name:     zapengine.New(opts),
		zerologengine.Name: zerologengine.New(opts),
		logrusengine.Name:  logrusengine.New(opts),
	}
}

func newFactories(backends map[string]core.Backend) map[string]*core.Factory {
	factories := make(map[string]*core.Factory, len(backends))
	for id, backend := range backends {
		factories[id] = core.NewFactory(backend)
	}
	return factories
}

// builtinSet tracks the built-in backends currently registered on the
// default registry so they can be flushed, releveled and released when replaced.
type builtinSet struct {
	mu       sync.Mutex
	opts     *option.Options
	backends map[string]core.Backend
}

var builtins = &builtinSet{}

// install registers backends on reg and returns the ones they replace. opts
// is nil for the defaults installed at start-up.
func (s *builtinSet) install(reg *core.Registry, opts *option.Options, backends map[string]core.Backend, factories map[string]*core.Factory) map[string]core.Backend {
	for id, f := range factories {
		reg.Register(id, f)
	}
	previous := s.backends
	s.opts, s.backends = opts.Clone(), backends
	return previous
}

// apply reconfigures reg from validated opts. Nothing on reg, the kill switch
// or the global Logger changes unless opts.Backend is usable.
func (s *builtinSet) apply(reg *core.Registry, opts *option.Options) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.opts.OnlyLevelDiffers(opts) {
		return s.relevel(reg, opts)
	}

	backends := NewBuiltinBackends(opts)
	factories := newFactories(backends)

	if err := checkCandidate(reg, opts.Backend, factories); err != nil {
		closeBackends(backends)
		return err
	}

	previous := s.install(reg, opts, backends, factories)
	err := switchGlobal(reg, opts)
	closeBackends(previous)
	return err
}

// relevel moves the installed backends to opts.Level without rebuilding them,
// so open files and cached journals survive.
func (s *builtinSet) relevel(reg *core.Registry, opts *option.Options) error {
	if err := reg.Check(opts.Backend); err != nil {
		return err
	}

	level := opts.ParsedLevel()
	for _, backend := range s.backends {
		if leveler, ok := backend.(interface{ SetLevel(core.Level) }); ok {
			leveler.SetLevel(level)
		}
	}
	s.opts = opts.Clone()
	return switchGlobal(reg, opts)
}

func (s *builtinSet) sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for _, backend := range s.backends {
		if syncer, ok := backend.(interface{ Sync() error }); ok {
			if err := syncer.Sync(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// checkCandidate verifies that id will be usable once factories are
// registered. Ids outside factories are checked on reg as it stands.
func checkCandidate(reg *core.Registry, id string, factories map[string]*core.Factory) error {
	f, ok := factories[id]
	if !ok {
		return reg.Check(id)
	}
	if !f.IsSupported() {
		return errors.NewError(errors.UnsupportedBackend, id,
			fmt.Sprintf("the backend registered for [%s] is not supported", id), f.InitError())
	}
	return nil
}

func switchGlobal(reg *core.Registry, opts *option.Options) error {
	if opts.IsEnabled() {
		core.Open()
	} else {
		core.Close()
	}
	if !reg.SetCurrent(opts.Backend) {
		return errors.NewError(errors.UnsupportedBackend, opts.Backend,
			fmt.Sprintf("cannot switch the global logger to [%s]", opts.Backend), nil)
	}
	return nil
}

func closeBackends(backends map[string]core.Backend) {
	for _, backend := range backends {
		if closer, ok := backend.(io.Closer); ok {
			_ = closer.Close()
		}
	}
}

// Init reconfigures the default registry from opts. The built-in backends are
// replaced with ones built from opts, the kill switch follows opts.Enabled and
// the global Logger switches to opts.Backend. When only the level, the kill
// switch or the backend choice changed, the installed backends are kept and
// their level is adjusted in place.
//
// When opts.Backend cannot be used an UnsupportedBackend error is returned and
// the registry, the kill switch and the global Logger are left as they were.
func Init(opts *option.Options) error {
	if opts == nil {
		opts = option.DefaultOptions()
	}
	if err := opts.Validate(); err != nil {
		return err
	}
	return builtins.apply(defaultRegistry, opts)
}

// Sync flushes every built-in backend on the default registry.
func Sync() error {
	return builtins.sync()
}
