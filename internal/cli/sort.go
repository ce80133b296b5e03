package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/slashcmd/internal/catalog"
)

// SortedCommand is one entry of the sort output.
type SortedCommand struct {
	Position    int      `json:"position"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	YieldsTo    []string `json:"yields_to,omitempty"`
	Agent       string   `json:"agent,omitempty"`
}

// SortResult is the payload of the sort command.
type SortResult struct {
	Commands []SortedCommand `json:"commands"`
	Identity bool            `json:"identity"`
	Cycles   []string        `json:"cycles,omitempty"`
}

// NewSortCommand creates the sort command.
func NewSortCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sort [catalog-dir]",
		Short: "Print a catalog in yield order",
		Long: `Load a command catalog and print it in the order a completion list
shows it: every command after the commands it yields to, otherwise in
declaration order.

Without an argument the catalog_dir from the config file is used.`,
		Args:          catalogArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSort(rootOpts, cmd, args)
		},
	}
}

func runSort(opts *RootOptions, cmd *cobra.Command, args []string) error {
	formatter := opts.formatter(cmd)
	logger := opts.Logger()

	dir, err := catalogDir(opts, formatter, args)
	if err != nil {
		return err
	}

	result, loadErrs, err := loadCatalog(formatter, dir, catalog.LoadModeCollectAll)
	if err != nil {
		return err
	}
	for _, e := range loadErrs {
		logger.Warn("skipping definitions", "error", e)
	}

	cat := catalog.New(result.Definitions, logger)
	out := SortResult{
		Commands: make([]SortedCommand, 0, cat.Len()),
		Identity: cat.Identity(),
		Cycles:   cat.Cycles(),
	}
	for i, d := range cat.Commands() {
		out.Commands = append(out.Commands, SortedCommand{
			Position:    i + 1,
			Name:        d.Name,
			Description: d.Description,
			YieldsTo:    d.YieldsTo,
			Agent:       d.Agent,
		})
	}

	if formatter.JSON() {
		return formatter.Success(out)
	}
	writeSortText(formatter, out)
	return nil
}

func writeSortText(f *OutputFormatter, out SortResult) {
	for _, c := range out.Commands {
		f.Textf("%d. /%s - %s", c.Position, c.Name, c.Description)
		if len(c.YieldsTo) > 0 {
			f.Textf("   yields to: %s", strings.Join(c.YieldsTo, ", "))
		}
		if c.Agent != "" {
			f.Textf("   agent: @%s", c.Agent)
		}
	}
	if out.Identity {
		f.Textf("(declaration order: no command declares yields_to)")
	}
	for _, name := range out.Cycles {
		f.Textf("warning: yield cycle broken at /%s", name)
	}
}
