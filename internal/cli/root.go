package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/slashcmd/internal/config"
	"github.com/roach88/slashcmd/internal/termenv"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	logger   *slog.Logger
	settings *config.Config

	// envOptions are appended to every termenv.Snapshot the CLI builds.
	envOptions []termenv.SnapshotOption
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the slashcmd CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "slashcmd",
		Short: "slashcmd - slash command catalogs for chat input",
		Long: `Load, order and validate slash command catalogs, and exercise the
chat input features built on them: completion, history and the terminal
environment snapshot.`,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			opts.logger = newLogger(cmd.ErrOrStderr(), opts.Verbose)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default ./"+config.FileName+")")

	cmd.AddCommand(NewSortCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewCompleteCommand(opts))
	cmd.AddCommand(NewWhichCommand(opts))
	cmd.AddCommand(NewEnvCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))

	return cmd
}

// newLogger writes text records to w: Debug and up when verbose, Warn and
// up otherwise.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Logger returns the logger set up by the root command, or a discarding
// logger when a subcommand runs on its own.
func (o *RootOptions) Logger() *slog.Logger {
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.logger
}

// Settings loads the config file once, relative to the working directory.
func (o *RootOptions) Settings() (config.Config, error) {
	if o.settings != nil {
		return *o.settings, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return config.Config{}, fmt.Errorf("get working directory: %w", err)
	}
	cfg, err := config.Load(wd, o.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	o.settings = &cfg
	return cfg, nil
}

// formatter builds the OutputFormatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
