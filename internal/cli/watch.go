package cli

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/slashcmd/internal/catalog"
)

// WatchEvent is one reload reported by the watch command in JSON mode.
type WatchEvent struct {
	Commands []string `json:"commands"`
	Identity bool     `json:"identity"`
	Cycles   []string `json:"cycles,omitempty"`
}

type watchOptions struct {
	debounce time.Duration
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch [catalog-dir]",
		Short: "Reload a catalog whenever its files change",
		Long: `Watch a catalog directory and print the yield order after the initial
load and after every change to a .cue, .yaml or .yml file in it.

Runs until interrupted. Bursts of file events are collapsed into one
reload after the debounce period.`,
		Args:          catalogArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(rootOpts, opts, cmd, args)
		},
	}

	cmd.Flags().DurationVar(&opts.debounce, "debounce", 0, "quiet period before reloading (default from config)")

	return cmd
}

func runWatch(rootOpts *RootOptions, opts *watchOptions, cmd *cobra.Command, args []string) error {
	formatter := rootOpts.formatter(cmd)
	logger := rootOpts.Logger()

	dir, err := catalogDir(rootOpts, formatter, args)
	if err != nil {
		return err
	}

	debounce := opts.debounce
	if debounce <= 0 {
		cfg, err := rootOpts.Settings()
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeConfig, err.Error(), nil)
		}
		debounce = cfg.Debounce
	}

	watcher, err := catalog.NewWatcher(dir,
		catalog.WithDebounce(debounce),
		catalog.WithWatchLogger(logger),
	)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeWatch, err.Error(), nil)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return watcher.Run(ctx)
	})
	g.Go(func() error {
		return printReloads(ctx, formatter, watcher.Updates())
	})

	if err := g.Wait(); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeWatch, err.Error(), map[string]string{"dir": dir})
	}
	return nil
}

// printReloads writes one record per catalog until updates closes.
func printReloads(ctx context.Context, formatter *OutputFormatter, updates <-chan *catalog.Catalog) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case cat, ok := <-updates:
			if !ok {
				return nil
			}
			event := WatchEvent{
				Commands: cat.Names(),
				Identity: cat.Identity(),
				Cycles:   cat.Cycles(),
			}
			if formatter.JSON() {
				if err := formatter.Success(event); err != nil {
					return err
				}
				continue
			}
			formatter.Textf("reloaded %d commands: %s", len(event.Commands), strings.Join(event.Commands, ", "))
		}
	}
}
