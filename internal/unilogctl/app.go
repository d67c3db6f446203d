// Package unilogctl implements the unilog command line tool.
package unilogctl

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/kart-io/unilog"
	"github.com/kart-io/unilog/internal/app"
)

const (
	appName        = "unilog"
	appDescription = `unilog - pluggable logging facade

Inspect the registered logging backends, write entries through any of them
and watch a configuration file to switch backends at runtime.

Examples:
  # List the registered backends and whether they can be used
  unilog backends

  # Write one entry through zap as JSON
  unilog emit warn "disk %s at %s" sda 91% --log.backend=zap --log.format=json

  # Follow config changes, writing a heartbeat entry every second
  unilog watch -c /etc/unilog/unilog.yaml --interval=1s

Configuration:
  Configuration can be provided via:
  - Command-line flags (highest priority)
  - Environment variables (prefix: UNILOG_)
  - Configuration file (YAML, options under the "log" key)
  - Default values (lowest priority)`
)

// NewApp creates the unilog application.
func NewApp() *app.App {
	opts := NewOptions()
	v := viper.New()
	return app.NewApp(
		app.WithName(appName),
		app.WithShortDescription("Pluggable logging facade"),
		app.WithDescription(appDescription),
		app.WithOptions(opts),
		app.WithViper(v),
		app.WithPrepareFunc(func([]string) error {
			return Prepare(opts)
		}),
		app.WithCommands(
			newBackendsCommand(),
			newEmitCommand(),
			newWatchCommand(opts, v),
		),
	)
}

// Prepare installs the configured logger.
func Prepare(opts *Options) error {
	if err := unilog.Init(opts.Log); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	unilog.Debug("logger initialized: backend=%s level=%s version=%s", opts.Log.Backend, opts.Log.Level, app.GetVersion())
	return nil
}
