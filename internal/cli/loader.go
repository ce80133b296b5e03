package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/roach88/slashcmd/internal/catalog"
)

// catalogDir returns the directory named in args, or the configured one.
func catalogDir(opts *RootOptions, formatter *OutputFormatter, args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	cfg, err := opts.Settings()
	if err != nil {
		return "", formatter.Fail(ExitCommandError, ErrCodeConfig, err.Error(), nil)
	}
	return cfg.CatalogDir, nil
}

// loadCatalog loads dir and turns a fatal load failure into an error
// response. Non-fatal errors are returned for the caller to report.
func loadCatalog(formatter *OutputFormatter, dir string, mode catalog.LoadMode) (*catalog.LoadResult, []error, error) {
	result, errs := catalog.Load(dir, mode)
	if result == nil {
		return nil, nil, failLoad(formatter, errs)
	}
	formatter.VerboseLog("Found %d definition file(s) in %s", result.FileCount(), dir)
	return result, errs, nil
}

// failLoad reports the first load error. Load errors are command errors.
func failLoad(formatter *OutputFormatter, errs []error) error {
	if len(errs) == 0 {
		return formatter.Fail(ExitCommandError, catalog.ErrCodeGeneric, "catalog could not be loaded", nil)
	}
	var loadErr *catalog.LoadError
	if errors.As(errs[0], &loadErr) {
		return formatter.Fail(ExitCommandError, loadErr.Code, loadErr.Message, nil)
	}
	return formatter.Fail(ExitCommandError, catalog.ErrCodeGeneric, errs[0].Error(), nil)
}

// catalogArgs accepts an optional catalog directory.
var catalogArgs = cobra.MaximumNArgs(1)
