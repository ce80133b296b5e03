package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/slashcmd/internal/catalog"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool                      `json:"valid"`
	Commands int                       `json:"commands"`
	Errors   []catalog.ValidationError `json:"errors,omitempty"`
	Warnings []catalog.ValidationError `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [catalog-dir]",
		Short: "Check a catalog for errors",
		Long: `Validate a command catalog without using it.

Reports malformed files, missing names and descriptions and duplicate
names as errors, and dangling, self-referencing or cyclic yields_to
entries as warnings. Warnings alone do not fail validation.`,
		Args:          catalogArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, cmd, args)
		},
	}
}

func runValidate(opts *RootOptions, cmd *cobra.Command, args []string) error {
	formatter := opts.formatter(cmd)

	dir, err := catalogDir(opts, formatter, args)
	if err != nil {
		return err
	}

	result, loadErrs, err := loadCatalog(formatter, dir, catalog.LoadModeCollectAll)
	if err != nil {
		return err
	}

	var all []catalog.ValidationError
	for _, e := range loadErrs {
		all = append(all, loadValidationError(e))
	}
	all = append(all, catalog.Validate(result.Definitions)...)

	out := ValidationResult{
		Valid:    !catalog.HasErrors(all),
		Commands: len(result.Definitions),
	}
	for _, v := range all {
		if v.Level == catalog.LevelError {
			out.Errors = append(out.Errors, v)
		} else {
			out.Warnings = append(out.Warnings, v)
		}
	}

	if !out.Valid {
		return outputValidationErrors(formatter, out)
	}
	return outputValidateSuccess(formatter, out)
}

// loadValidationError reports a non-fatal load error as an error-level
// validation entry.
func loadValidationError(err error) catalog.ValidationError {
	var loadErr *catalog.LoadError
	if errors.As(err, &loadErr) {
		return catalog.ValidationError{
			Field:   "load",
			Message: loadErr.Message,
			Code:    loadErr.Code,
			Level:   catalog.LevelError,
			Source:  loadErr.File,
			Line:    loadErr.Line,
		}
	}
	return catalog.ValidationError{
		Field:   "load",
		Message: err.Error(),
		Code:    catalog.ErrCodeGeneric,
		Level:   catalog.LevelError,
	}
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, out ValidationResult) error {
	if formatter.JSON() {
		return formatter.Success(out)
	}

	fmt.Fprintf(formatter.Writer, "✓ Catalog valid (%d commands)\n", out.Commands)
	writeIssues(formatter, out.Warnings)
	return nil
}

// outputValidationErrors outputs validation failures. Validation failures
// exit with ExitFailure.
func outputValidationErrors(formatter *OutputFormatter, out ValidationResult) error {
	failure := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(out.Errors)))

	if formatter.JSON() {
		response := CLIResponse{
			Status: "error",
			Data:   out,
			Error: &CLIError{
				Code:    out.Errors[0].Code,
				Message: out.Errors[0].Message,
			},
		}
		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
		return failure
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	writeIssues(formatter, out.Errors)
	writeIssues(formatter, out.Warnings)
	return failure
}

func writeIssues(formatter *OutputFormatter, issues []catalog.ValidationError) {
	for _, v := range issues {
		if v.Line > 0 {
			fmt.Fprintf(formatter.Writer, "  %s %s (line %d): %s\n", v.Level, v.Code, v.Line, v.Message)
			continue
		}
		fmt.Fprintf(formatter.Writer, "  %s %s: %s\n", v.Level, v.Code, v.Message)
	}
}
