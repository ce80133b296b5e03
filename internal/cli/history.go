package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/slashcmd/internal/history"
)

// HistoryAddResult is the payload of history add.
type HistoryAddResult struct {
	Entry history.Entry `json:"entry"`
	Added bool          `json:"added"`
}

// HistoryListResult is the payload of history list.
type HistoryListResult struct {
	Session string          `json:"session"`
	Entries []history.Entry `json:"entries"`
}

// HistoryClearResult is the payload of history clear.
type HistoryClearResult struct {
	Session string `json:"session"`
	Removed int64  `json:"removed"`
}

type historyOptions struct {
	db      string
	session string
	limit   int
}

// NewHistoryCommand creates the history command and its subcommands.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &historyOptions{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage chat input history",
		Long: `Record, list and clear submitted chat input.

History is kept per session in a SQLite database. Submitting the same text
twice in a row records it once. --db and --session default to history_db
and session from the config file.`,
	}

	cmd.PersistentFlags().StringVar(&opts.db, "db", "", "history database path")
	cmd.PersistentFlags().StringVar(&opts.session, "session", "", "history session")

	addCmd := &cobra.Command{
		Use:           "add <text>",
		Short:         "Record submitted input",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryAdd(rootOpts, opts, cmd, args[0])
		},
	}

	listCmd := &cobra.Command{
		Use:           "list",
		Short:         "List input, newest first",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryList(rootOpts, opts, cmd)
		},
	}
	listCmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "maximum entries (0 for all)")

	clearCmd := &cobra.Command{
		Use:           "clear",
		Short:         "Delete the session's input",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryClear(rootOpts, opts, cmd)
		},
	}

	cmd.AddCommand(addCmd, listCmd, clearCmd)
	return cmd
}

// openHistory resolves --db and --session against the config and opens the
// store. The caller closes it.
func openHistory(rootOpts *RootOptions, opts *historyOptions, formatter *OutputFormatter) (*history.Store, string, error) {
	dbPath, session := opts.db, opts.session
	if dbPath == "" || session == "" {
		cfg, err := rootOpts.Settings()
		if err != nil {
			return nil, "", formatter.Fail(ExitCommandError, ErrCodeConfig, err.Error(), nil)
		}
		if dbPath == "" {
			dbPath = cfg.HistoryDB
		}
		if session == "" {
			session = cfg.Session
		}
	}

	store, err := history.Open(dbPath)
	if err != nil {
		return nil, "", formatter.Fail(ExitCommandError, ErrCodeHistory, err.Error(), map[string]string{"db": dbPath})
	}
	rootOpts.Logger().Debug("history opened", "db", dbPath, "session", session)
	return store, session, nil
}

func runHistoryAdd(rootOpts *RootOptions, opts *historyOptions, cmd *cobra.Command, text string) error {
	formatter := rootOpts.formatter(cmd)

	store, session, err := openHistory(rootOpts, opts, formatter)
	if err != nil {
		return err
	}
	defer store.Close()

	entry, added, err := store.Append(cmd.Context(), session, text)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeHistory, err.Error(), nil)
	}

	if formatter.JSON() {
		return formatter.Success(HistoryAddResult{Entry: entry, Added: added})
	}
	if added {
		formatter.Textf("added #%d to %s", entry.Seq, session)
	} else {
		formatter.Textf("unchanged: same as #%d in %s", entry.Seq, session)
	}
	return nil
}

func runHistoryList(rootOpts *RootOptions, opts *historyOptions, cmd *cobra.Command) error {
	formatter := rootOpts.formatter(cmd)

	store, session, err := openHistory(rootOpts, opts, formatter)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(cmd.Context(), session, opts.limit)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeHistory, err.Error(), nil)
	}

	if formatter.JSON() {
		return formatter.Success(HistoryListResult{Session: session, Entries: entries})
	}
	for _, e := range entries {
		formatter.Textf("%4d  %s", e.Seq, e.Text)
	}
	return nil
}

func runHistoryClear(rootOpts *RootOptions, opts *historyOptions, cmd *cobra.Command) error {
	formatter := rootOpts.formatter(cmd)

	store, session, err := openHistory(rootOpts, opts, formatter)
	if err != nil {
		return err
	}
	defer store.Close()

	removed, err := store.Clear(cmd.Context(), session)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeHistory, err.Error(), nil)
	}

	if formatter.JSON() {
		return formatter.Success(HistoryClearResult{Session: session, Removed: removed})
	}
	formatter.Textf("removed %d entries from %s", removed, session)
	return nil
}
