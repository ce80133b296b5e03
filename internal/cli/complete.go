package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/slashcmd/internal/catalog"
	"github.com/roach88/slashcmd/internal/chatinput"
)

// CompleteResult is the payload of the complete command.
type CompleteResult struct {
	Input  chatinput.ParsedInput `json:"input"`
	Cursor int                   `json:"cursor"`
	Items  []chatinput.Item      `json:"items"`
}

type completeOptions struct {
	cursor int
	vars   []string
}

// NewCompleteCommand creates the complete command.
func NewCompleteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &completeOptions{}

	cmd := &cobra.Command{
		Use:   "complete <catalog-dir> <text>",
		Short: "Show completions for chat input",
		Long: `Parse chat input and list the completions offered at the cursor.

A word starting with "/" completes slash commands in yield order, "@" at
the start of the input completes agents, and "#" completes the variables
given with --var. The cursor defaults to the end of the text.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runComplete(rootOpts, opts, cmd, args[0], args[1])
		},
	}

	cmd.Flags().IntVar(&opts.cursor, "cursor", -1, "byte offset of the cursor (default end of text)")
	cmd.Flags().StringArrayVar(&opts.vars, "var", nil, "variable name offered after # (repeatable)")

	return cmd
}

func runComplete(rootOpts *RootOptions, opts *completeOptions, cmd *cobra.Command, dir, text string) error {
	formatter := rootOpts.formatter(cmd)
	logger := rootOpts.Logger()

	result, loadErrs, err := loadCatalog(formatter, dir, catalog.LoadModeCollectAll)
	if err != nil {
		return err
	}
	for _, e := range loadErrs {
		logger.Warn("skipping definitions", "error", e)
	}
	cat := catalog.New(result.Definitions, logger)

	cursor := opts.cursor
	if cursor < 0 || cursor > len(text) {
		cursor = len(text)
	}

	items := chatinput.Complete(text, cursor, cat, opts.vars)
	if items == nil {
		items = []chatinput.Item{}
	}
	out := CompleteResult{
		Input:  chatinput.Parse(text),
		Cursor: cursor,
		Items:  items,
	}

	if formatter.JSON() {
		return formatter.Success(out)
	}

	if len(out.Items) == 0 {
		formatter.Textf("(no completions)")
		return nil
	}
	for _, item := range out.Items {
		if item.Detail != "" {
			formatter.Textf("%s - %s", item.Label, item.Detail)
			continue
		}
		formatter.Textf("%s", item.Label)
	}
	return nil
}
