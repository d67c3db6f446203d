package unilogctl

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kart-io/unilog"
	"github.com/kart-io/unilog/core"
	"github.com/kart-io/unilog/reload"
)

func newBackendsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List the registered logging backends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listBackends(cmd, unilog.Registry())
		},
	}
}

func listBackends(cmd *cobra.Command, reg *core.Registry) error {
	ok := color.New(color.FgGreen).SprintFunc()
	bad := color.New(color.FgRed).SprintFunc()
	current := reg.Current()

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tDETAIL")
	for _, id := range reg.IDs() {
		f, err := reg.Resolve(id)
		if err != nil {
			return err
		}
		marker := ""
		if id == current {
			marker = " *"
		}
		status, detail := ok("supported"), ""
		if initErr := f.InitError(); initErr != nil {
			status, detail = bad("unsupported"), initErr.Error()
		}
		fmt.Fprintf(tw, "%s%s\t%s\t%s\t%s\n", id, marker, f.Name(), status, detail)
	}
	return tw.Flush()
}

func newEmitCommand() *cobra.Command {
	var cause string
	cmd := &cobra.Command{
		Use:   "emit LEVEL TEMPLATE [ARG...]",
		Short: "Write one entry through the configured backend",
		Long: `Write one entry through the configured backend.

TEMPLATE uses printf verbs; every ARG is passed as a string, so use %s or %v.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			level, err := core.ParseLevel(args[0])
			if err != nil {
				return err
			}
			operands := make([]any, 0, len(args)-1)
			for _, a := range args[2:] {
				operands = append(operands, a)
			}
			if cause != "" {
				operands = append(operands, errors.New(cause))
			}
			unilog.Log(level, args[1], operands...)
			return unilog.Sync()
		},
	}
	cmd.Flags().StringVar(&cause, "cause", "", "Attach an error with this message to the entry")
	return cmd
}

func newWatchCommand(opts *Options, v *viper.Viper) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Write heartbeat entries and reconfigure the logger when the config file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if v.ConfigFileUsed() != "" {
				w := reload.NewWatcher(v, reload.DefaultKey, nil)
				w.Start()
				defer w.Stop()
			} else {
				unilog.Warn("no config file loaded, changes will not be picked up")
			}
			return heartbeat(ctx, opts.Interval, count)
		},
	}
	cmd.Flags().IntVar(&count, "count", 0, "Stop after this many heartbeats (0 runs until interrupted)")
	return cmd
}

// heartbeat logs through the global logger every interval until ctx is done
// or count entries were written.
func heartbeat(ctx context.Context, interval time.Duration, count int) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for n := 1; count <= 0 || n <= count; n++ {
		select {
		case <-ctx.Done():
			unilog.Info("watch stopped")
			return unilog.Sync()
		case <-ticker.C:
			unilog.Info("heartbeat %d via %s", n, unilog.Global().ID())
		}
	}
	return unilog.Sync()
}
