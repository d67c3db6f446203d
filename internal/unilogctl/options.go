package unilogctl

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/unilog/option"
)

// Options contains everything the command line configures.
type Options struct {
	Log *option.Options `json:"log" mapstructure:"log"`

	// Interval between heartbeat entries written by the watch command
	Interval time.Duration `json:"interval" mapstructure:"interval"`
}

// NewOptions creates options with default values.
func NewOptions() *Options {
	return &Options{
		Log:      option.DefaultOptions(),
		Interval: 5 * time.Second,
	}
}

// AddFlags adds flags to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	o.Log.AddFlags(fs)
	fs.DurationVar(&o.Interval, "interval", o.Interval, "Interval between heartbeat entries in watch mode")
}

// Validate checks the options and fills in defaults.
func (o *Options) Validate() error {
	if o.Log == nil {
		o.Log = option.DefaultOptions()
	}
	if err := o.Log.Validate(); err != nil {
		return err
	}
	if o.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", o.Interval)
	}
	return nil
}
