// Package option holds the logger configuration shared by every backend.
package option

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/kart-io/unilog/core"
	"github.com/kart-io/unilog/errors"
)

// Supported output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
	FormatText    = "text"
)

// Options represents the complete logger configuration.
type Options struct {
	// Backend selects the global logger ("console", "slog", "zap", "zerolog", "logrus")
	Backend string `json:"backend" mapstructure:"backend" yaml:"backend"`

	// Enabled is the kill switch; nil means enabled
	Enabled *bool `json:"enabled" mapstructure:"enabled" yaml:"enabled"`

	// Level sets the minimum logging level
	Level string `json:"level" mapstructure:"level" yaml:"level"`

	// Format specifies output format ("json", "console" or "text")
	Format string `json:"format" mapstructure:"format" yaml:"format"`

	// OutputPaths specifies where logs should be written
	OutputPaths []string `json:"output_paths" mapstructure:"output_paths" yaml:"output_paths"`

	// Development mode enables stacktraces on errors and human-friendly encoders
	Development bool `json:"development" mapstructure:"development" yaml:"development"`

	// DisableCaller drops the caller location from entries
	DisableCaller bool `json:"disable_caller" mapstructure:"disable_caller" yaml:"disable_caller"`

	// NoColor disables colored level labels on the console backend
	NoColor bool `json:"no_color" mapstructure:"no_color" yaml:"no_color"`

	// Rotation configuration for file output
	Rotation *RotationOption `json:"rotation" mapstructure:"rotation" yaml:"rotation"`
}

// RotationOption contains log file rotation configuration.
// It only applies to file outputs, never to stdout or stderr.
type RotationOption struct {
	// MaxSize is the maximum size in megabytes of the log file before it gets rotated
	MaxSize int `json:"max_size" mapstructure:"max_size" yaml:"max_size"`

	// MaxAge is the maximum number of days to retain old log files
	MaxAge int `json:"max_age" mapstructure:"max_age" yaml:"max_age"`

	// MaxBackups is the maximum number of old log files to retain
	MaxBackups int `json:"max_backups" mapstructure:"max_backups" yaml:"max_backups"`

	// Compress determines if the rotated log files should be compressed using gzip
	Compress bool `json:"compress" mapstructure:"compress" yaml:"compress"`
}

// DefaultOptions returns a configuration with sensible defaults.
func DefaultOptions() *Options {
	return &Options{
		Backend:     core.ConsoleID,
		Level:       "INFO",
		Format:      FormatConsole,
		OutputPaths: []string{"stdout"},
		Rotation: &RotationOption{
			MaxSize:    100, // 100MB
			MaxAge:     15,  // 15 days
			MaxBackups: 30,
			Compress:   true,
		},
	}
}

// AddFlags adds flags for logger options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Backend, "log.backend", o.Backend, "Logging backend (console|slog|zap|zerolog|logrus)")
	fs.StringVar(&o.Level, "log.level", o.Level, "Log level (TRACE|DEBUG|INFO|WARN|ERROR)")
	fs.StringVar(&o.Format, "log.format", o.Format, "Log format (console|json|text)")
	fs.StringSliceVar(&o.OutputPaths, "log.output-paths", o.OutputPaths, "Output paths for logs")
	fs.BoolVar(&o.Development, "log.development", o.Development, "Enable development mode")
	fs.BoolVar(&o.DisableCaller, "log.disable-caller", o.DisableCaller, "Disable caller detection")
	fs.BoolVar(&o.NoColor, "log.no-color", o.NoColor, "Disable colored console output")

	// Rotation options (only applies to file outputs)
	if o.Rotation == nil {
		o.Rotation = &RotationOption{}
	}
	fs.IntVar(&o.Rotation.MaxSize, "log.rotation.max-size", o.Rotation.MaxSize, "Maximum size in MB of the log file before rotation")
	fs.IntVar(&o.Rotation.MaxAge, "log.rotation.max-age", o.Rotation.MaxAge, "Maximum number of days to retain old log files")
	fs.IntVar(&o.Rotation.MaxBackups, "log.rotation.max-backups", o.Rotation.MaxBackups, "Maximum number of old log files to retain")
	fs.BoolVar(&o.Rotation.Compress, "log.rotation.compress", o.Rotation.Compress, "Compress rotated log files using gzip")
}

// Validate checks the configuration for consistency and fills in defaults for
// empty fields.
func (o *Options) Validate() error {
	if o == nil {
		return configError("configuration cannot be nil", nil)
	}

	if o.Backend == "" {
		o.Backend = core.ConsoleID
	}
	o.Backend = strings.ToLower(strings.TrimSpace(o.Backend))

	if o.Level == "" {
		o.Level = "INFO"
	}
	if _, err := core.ParseLevel(o.Level); err != nil {
		return configError(fmt.Sprintf("invalid level %q", o.Level), err)
	}

	switch strings.ToLower(strings.TrimSpace(o.Format)) {
	case "":
		o.Format = FormatConsole
	case FormatConsole:
		o.Format = FormatConsole
	case FormatJSON:
		o.Format = FormatJSON
	case FormatText, "logfmt":
		o.Format = FormatText
	default:
		return configError(fmt.Sprintf("invalid format %q: must be console, json or text", o.Format), nil)
	}

	if len(o.OutputPaths) == 0 {
		o.OutputPaths = []string{"stdout"}
	}

	return o.validateRotation()
}

func (o *Options) validateRotation() error {
	r := o.Rotation
	if r == nil {
		return nil
	}

	if r.MaxSize < 0 {
		return configError(fmt.Sprintf("rotation max_size must be non-negative, got %d", r.MaxSize), nil)
	}
	if r.MaxAge < 0 {
		return configError(fmt.Sprintf("rotation max_age must be non-negative, got %d", r.MaxAge), nil)
	}
	if r.MaxBackups < 0 {
		return configError(fmt.Sprintf("rotation max_backups must be non-negative, got %d", r.MaxBackups), nil)
	}

	// Apply defaults ONLY if values are zero
	if r.MaxSize == 0 {
		r.MaxSize = 100
	}
	return nil
}

// ParsedLevel returns the configured level, or InfoLevel when it does not parse.
func (o *Options) ParsedLevel() core.Level {
	level, err := core.ParseLevel(o.Level)
	if err != nil {
		return core.InfoLevel
	}
	return level
}

// IsEnabled reports whether logging is switched on.
func (o *Options) IsEnabled() bool {
	return o.Enabled == nil || *o.Enabled
}

// SetEnabled sets the kill switch value.
func (o *Options) SetEnabled(enabled bool) *Options {
	o.Enabled = &enabled
	return o
}

// IsRotationEnabled reports whether file outputs are rotated.
func (o *Options) IsRotationEnabled() bool {
	return o.Rotation != nil && o.Rotation.MaxSize > 0
}

// Clone returns a deep copy of o.
func (o *Options) Clone() *Options {
	if o == nil {
		return nil
	}
	c := *o
	c.OutputPaths = append([]string(nil), o.OutputPaths...)
	if o.Enabled != nil {
		enabled := *o.Enabled
		c.Enabled = &enabled
	}
	if o.Rotation != nil {
		rotation := *o.Rotation
		c.Rotation = &rotation
	}
	return &c
}

// OnlyLevelDiffers reports whether o and other configure the same outputs,
// differing at most in Backend, Level and Enabled. Backends built from either
// can then be reconfigured in place with SetLevel.
func (o *Options) OnlyLevelDiffers(other *Options) bool {
	if o == nil || other == nil {
		return false
	}
	a, b := o.Clone(), other.Clone()
	for _, c := range []*Options{a, b} {
		c.Backend, c.Level, c.Enabled = "", "", nil
	}
	return reflect.DeepEqual(a, b)
}

// LoadFile reads a YAML configuration file on top of the defaults and validates it.
// The file may hold the options at top level or under a "log" section.
func LoadFile(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, configError(fmt.Sprintf("failed to read config file %s", path), err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration on top of the defaults and validates it.
func Parse(data []byte) (*Options, error) {
	var wrapped struct {
		Log *Options `yaml:"log"`
	}
	if err := yaml.Unmarshal(data, &wrapped); err != nil {
		return nil, configError("failed to parse YAML config", err)
	}

	opts := DefaultOptions()
	if wrapped.Log != nil {
		if err := decodeSection(data, opts); err != nil {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, opts); err != nil {
		return nil, configError("failed to parse YAML config", err)
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

func decodeSection(data []byte, opts *Options) error {
	wrapped := struct {
		Log *Options `yaml:"log"`
	}{Log: opts}
	if err := yaml.Unmarshal(data, &wrapped); err != nil {
		return configError("failed to parse YAML config", err)
	}
	return nil
}

func configError(msg string, cause error) *errors.LoggerError {
	return errors.NewError(errors.ConfigError, "option", msg, cause)
}
