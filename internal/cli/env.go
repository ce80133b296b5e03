package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/slashcmd/internal/termenv"
)

// EnvResult is the payload of the env command.
type EnvResult struct {
	Env map[string]string `json:"env"`
}

type envOptions struct {
	allow []string
}

// NewEnvCommand creates the env command.
func NewEnvCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &envOptions{}

	cmd := &cobra.Command{
		Use:   "env",
		Short: "Print the login environment a terminal would start with",
		Long: `Print the environment of the shell that launched slashcmd.

On Linux the process tree is walked in /proc to the first ancestor that is
not slashcmd and its environment is read. On macOS only an allowlist of
variables is kept; extend it with --allow or env_allowlist_extra in the
config file. Elsewhere the current environment is printed.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnv(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.allow, "allow", nil, "extra variable kept on macOS (repeatable)")

	return cmd
}

func runEnv(rootOpts *RootOptions, opts *envOptions, cmd *cobra.Command) error {
	formatter := rootOpts.formatter(cmd)

	snapshot, err := rootOpts.snapshot(formatter, opts.allow...)
	if err != nil {
		return err
	}
	env, err := snapshot.Env(cmd.Context())
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeEnv, err.Error(), nil)
	}

	if formatter.JSON() {
		return formatter.Success(EnvResult{Env: env})
	}
	for _, entry := range termenv.Environ(env) {
		formatter.Textf("%s", entry)
	}
	return nil
}

// snapshot builds a termenv.Snapshot with the configured allowlist.
func (o *RootOptions) snapshot(formatter *OutputFormatter, allow ...string) (*termenv.Snapshot, error) {
	cfg, err := o.Settings()
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeConfig, err.Error(), nil)
	}

	opts := []termenv.SnapshotOption{
		termenv.WithSnapshotLogger(o.Logger()),
		termenv.WithExtraAllowlist(cfg.EnvAllowlistExtra...),
		termenv.WithExtraAllowlist(allow...),
	}
	opts = append(opts, o.envOptions...)
	return termenv.NewSnapshot(opts...), nil
}
