package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/slashcmd/internal/termenv"
)

// WhichResult is the payload of the which command.
type WhichResult struct {
	Command string `json:"command"`
	Path    string `json:"path"`
}

type whichOptions struct {
	cwd   string
	paths []string
	login bool
}

// NewWhichCommand creates the which command.
func NewWhichCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &whichOptions{}

	cmd := &cobra.Command{
		Use:   "which <command>",
		Short: "Resolve a command to an executable path",
		Long: `Resolve a command the way a terminal launcher does.

Absolute commands are checked as given, commands with a directory part are
resolved against --cwd, and bare names are searched in --path entries or
in PATH. With --login, PATH comes from the login environment reported by
the env command instead of the current process.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhich(rootOpts, opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.cwd, "cwd", "", "working directory for relative lookups (default current)")
	cmd.Flags().StringArrayVar(&opts.paths, "path", nil, "search directory used instead of PATH (repeatable)")
	cmd.Flags().BoolVar(&opts.login, "login", false, "search the login environment's PATH")

	return cmd
}

func runWhich(rootOpts *RootOptions, opts *whichOptions, cmd *cobra.Command, command string) error {
	formatter := rootOpts.formatter(cmd)

	env := termenv.ParseEnviron(os.Environ())
	if opts.login {
		snapshot, err := rootOpts.snapshot(formatter)
		if err != nil {
			return err
		}
		if env, err = snapshot.Env(cmd.Context()); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeEnv, err.Error(), nil)
		}
	}

	path, ok := termenv.FindExecutable(command, opts.cwd, opts.paths, env)
	if !ok {
		return formatter.Fail(ExitFailure, ErrCodeNotResolved, "executable not found: "+command, nil)
	}

	if formatter.JSON() {
		return formatter.Success(WhichResult{Command: command, Path: path})
	}
	formatter.Textf("%s", path)
	return nil
}
