package core

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/kart-io/unilog/errors"
	"github.com/kart-io/unilog/telemetry"
)

// Factory wraps one Backend. It owns the backend's lazy capability detection
// and the cache of per-component journals, and converts every backend failure
// into the facade's error taxonomy.
type Factory struct {
	backend Backend
	name    string
	console bool

	// init gate: supported and initErr are written once under initMu, before
	// initDone is set; readers that observe initDone read them without locking.
	initMu    sync.Mutex
	initDone  atomic.Bool
	supported bool
	initErr   error

	mu       sync.RWMutex
	journals map[string]*Journal

	errorHandler *errors.ErrorHandler
	metrics      *telemetry.Metrics
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithErrorHandler sets the handler receiving recovered failures.
func WithErrorHandler(h *errors.ErrorHandler) FactoryOption {
	return func(f *Factory) {
		if h != nil {
			f.errorHandler = h
		}
	}
}

// WithMetrics sets the dispatch counters.
func WithMetrics(m *telemetry.Metrics) FactoryOption {
	return func(f *Factory) {
		if m != nil {
			f.metrics = m
		}
	}
}

// NewFactory wraps backend. It returns nil when backend is nil.
func NewFactory(backend Backend, opts ...FactoryOption) *Factory {
	if backend == nil {
		return nil
	}

	f := &Factory{
		backend:  backend,
		name:     backend.Name(),
		journals: make(map[string]*Journal),
	}
	if c, ok := backend.(ConsoleBackend); ok && c.Console() {
		f.console = true
		f.supported = true
		f.initDone.Store(true)
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.errorHandler == nil {
		f.errorHandler = errors.DefaultHandler()
	}
	if f.metrics == nil {
		f.metrics = telemetry.New(f.name)
	}
	return f
}

// Name returns the backend's display name.
func (f *Factory) Name() string { return f.name }

// IsConsole reports whether the backend is the always-supported console kind.
func (f *Factory) IsConsole() bool { return f.console }

// Backend returns the wrapped backend.
func (f *Factory) Backend() Backend { return f.backend }

// ErrorHandler returns the handler receiving this factory's recovered failures.
func (f *Factory) ErrorHandler() *errors.ErrorHandler { return f.errorHandler }

// IsSupported reports whether the backend is usable. The first call runs the
// backend's Init exactly once; every later call returns the stored result.
func (f *Factory) IsSupported() bool {
	if f.initDone.Load() {
		return f.supported
	}

	f.initMu.Lock()
	defer f.initMu.Unlock()

	// Double-check after acquiring the lock
	if !f.initDone.Load() {
		f.supported, f.initErr = f.runInit()
		f.initDone.Store(true)
	}
	return f.supported
}

// InitError returns why the backend is unsupported, or nil.
func (f *Factory) InitError() error {
	if !f.IsSupported() {
		return f.initErr
	}
	return nil
}

func (f *Factory) runInit() (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok, err = false, fmt.Errorf("init panicked: %v", r)
		}
		if err != nil {
			ok = false
		}
		if !ok {
			if err == nil {
				err = fmt.Errorf("backend reported itself unavailable")
			}
			f.report(errors.NewError(errors.UnsupportedBackend, f.name,
				fmt.Sprintf("the '%s' backend is not supported", f.name), err))
		}
	}()
	return f.backend.Init()
}

// Journal returns the cached journal for component, creating it on first use.
// Concurrent first calls for the same component create exactly one handle.
func (f *Factory) Journal(component string) (*Journal, error) {
	if !f.IsSupported() {
		return nil, errors.NewError(errors.UnsupportedBackend, f.name,
			fmt.Sprintf("the '%s' backend is not supported", f.name), f.initErr)
	}

	f.mu.RLock()
	j, ok := f.journals[component]
	f.mu.RUnlock()
	if ok {
		f.metrics.CacheHit()
		return j, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	// Another goroutine may have created it while we waited for the write lock
	if j, ok := f.journals[component]; ok {
		f.metrics.CacheHit()
		return j, nil
	}
	f.metrics.CacheMiss()

	handle, err := f.newHandle(component)
	if err != nil || handle == nil {
		if err == nil {
			err = fmt.Errorf("backend returned no handle")
		}
		return nil, errors.NewError(errors.CreationFailure, f.name,
			fmt.Sprintf("failed to create handle for component %q", component), err)
	}

	j = &Journal{factory: f, handle: handle, component: component}
	f.journals[component] = j
	return j, nil
}

// Len returns the number of cached journals.
func (f *Factory) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.journals)
}

func (f *Factory) newHandle(component string) (handle any, err error) {
	defer func() {
		if r := recover(); r != nil {
			handle, err = nil, fmt.Errorf("new handle panicked: %v", r)
		}
	}()
	return f.backend.NewHandle(component)
}

func (f *Factory) enabled(handle any, level Level) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok, err = false, fmt.Errorf("enabled check panicked: %v", r)
		}
	}()
	return f.backend.Enabled(handle, level)
}

func (f *Factory) emit(handle any, entry *Entry) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("emit panicked: %v", r)
		}
	}()
	return dispatch(f.backend, handle, entry)
}

func (f *Factory) report(err *errors.LoggerError) {
	f.metrics.Diagnostic(err.Type.String())
	f.errorHandler.HandleError(err)
}
