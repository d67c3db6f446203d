// Package reload re-applies the logger configuration when its file changes.
package reload

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/kart-io/unilog"
	"github.com/kart-io/unilog/option"
)

// DefaultKey is the configuration section holding the logger options.
const DefaultKey = "log"

// ApplyFunc installs a validated configuration.
type ApplyFunc func(opts *option.Options) error

// Watcher watches the file behind a viper instance and re-initializes the
// logger from the configured section on every change.
type Watcher struct {
	viper *viper.Viper
	key   string
	apply ApplyFunc

	mu       sync.Mutex
	watching bool

	reloads  atomic.Int64
	failures atomic.Int64
}

// NewWatcher creates a watcher for the key section of v. A nil apply installs
// the configuration with unilog.Init.
func NewWatcher(v *viper.Viper, key string, apply ApplyFunc) *Watcher {
	if key == "" {
		key = DefaultKey
	}
	if apply == nil {
		apply = unilog.Init
	}
	return &Watcher{viper: v, key: key, apply: apply}
}

// Load decodes the watched section on top of the defaults and validates it.
// A missing section yields the defaults.
func (w *Watcher) Load() (*option.Options, error) {
	opts := option.DefaultOptions()
	if w.viper.IsSet(w.key) {
		if err := w.viper.UnmarshalKey(w.key, opts); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config key '%s': %w", w.key, err)
		}
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

// Apply loads the current configuration and installs it.
func (w *Watcher) Apply() error {
	opts, err := w.Load()
	if err == nil {
		err = w.apply(opts)
	}
	if err != nil {
		w.failures.Add(1)
		return err
	}
	w.reloads.Add(1)
	return nil
}

// Start begins watching the configuration file. Calling it again has no effect.
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.watching {
		w.mu.Unlock()
		return
	}
	w.watching = true
	w.mu.Unlock()

	w.viper.OnConfigChange(w.onChange)
	w.viper.WatchConfig()

	unilog.Info("config watcher: watching %s", w.viper.ConfigFileUsed())
}

func (w *Watcher) onChange(e fsnotify.Event) {
	if !w.IsWatching() {
		return
	}
	unilog.Info("config file changed: %s", e.Name)
	if err := w.Apply(); err != nil {
		unilog.Error("config watcher: reload of '%s' failed", w.key, err)
		return
	}
	unilog.Info("config watcher: logger reconfigured from '%s'", w.key)
}

// Stop ignores further change events. viper offers no way to release the
// underlying file watch.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.watching = false
}

// IsWatching reports whether change events are being applied.
func (w *Watcher) IsWatching() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.watching
}

// Reloads returns the number of configurations applied successfully.
func (w *Watcher) Reloads() int64 { return w.reloads.Load() }

// Failures returns the number of rejected configurations.
func (w *Watcher) Failures() int64 { return w.failures.Load() }
