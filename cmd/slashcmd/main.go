// Command slashcmd loads, orders and validates slash command catalogs.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/slashcmd/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()

	// Subcommands print their own failures; argument errors are silenced by
	// cobra and reported here.
	var exitErr *cli.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(cli.GetExitCode(err))
}
