package catalog

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/slashcmd/internal/precedence"
)

// Validation error codes (E100-E199)
const (
	ErrNameEmpty        = "E101" // name is required
	ErrNameInvalid      = "E102" // name has characters a slash token cannot carry
	ErrDescriptionEmpty = "E103" // description is required
	ErrDuplicateName    = "E104" // two definitions share a name
	ErrDanglingYield    = "E105" // yields_to names a command not in the catalog
	ErrSelfYield        = "E106" // command yields to itself
	ErrYieldCycle       = "E107" // yield references form a loop
	ErrAgentInvalid     = "E108" // agent has characters an @ token cannot carry
)

// Severity levels for ValidationError.
const (
	LevelError   = "error"
	LevelWarning = "warning"
)

// namePattern matches identifiers usable after "/" or "@" in chat input.
var namePattern = regexp.MustCompile(`^[A-Za-z][\w-]*$`)

// ValidationError describes one problem with a catalog.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Level   string `json:"level"`
	Source  string `json:"source,omitempty"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// HasErrors reports whether any entry is at error level. Warnings alone do
// not fail validation.
func HasErrors(errs []ValidationError) bool {
	for _, e := range errs {
		if e.Level == LevelError {
			return true
		}
	}
	return false
}

// Validate checks defs and returns every problem found, in definition order,
// followed by cycle warnings.
func Validate(defs []Definition) []ValidationError {
	var errs []ValidationError

	names := make(map[string]bool, len(defs))
	for _, d := range defs {
		names[d.Name] = true
	}

	seen := make(map[string]bool, len(defs))
	for i, d := range defs {
		at := func(field, code, level, msg string) {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("commands[%d].%s", i, field),
				Message: msg,
				Code:    code,
				Level:   level,
				Source:  d.Source,
				Line:    d.Line,
			})
		}

		switch {
		case strings.TrimSpace(d.Name) == "":
			at("name", ErrNameEmpty, LevelError, "name is required")
		case !namePattern.MatchString(d.Name):
			at("name", ErrNameInvalid, LevelError, fmt.Sprintf("invalid command name %q", d.Name))
		}

		if d.Name != "" {
			if seen[d.Name] {
				at("name", ErrDuplicateName, LevelError, fmt.Sprintf("duplicate command name: %q", d.Name))
			}
			seen[d.Name] = true
		}

		if strings.TrimSpace(d.Description) == "" {
			at("description", ErrDescriptionEmpty, LevelError, fmt.Sprintf("command %q needs a description", d.Name))
		}

		if d.Agent != "" && !namePattern.MatchString(d.Agent) {
			at("agent", ErrAgentInvalid, LevelError, fmt.Sprintf("invalid agent name %q", d.Agent))
		}

		for _, y := range d.YieldsTo {
			switch {
			case y == d.Name:
				at("yields_to", ErrSelfYield, LevelWarning, fmt.Sprintf("command %q yields to itself", d.Name))
			case !names[y]:
				at("yields_to", ErrDanglingYield, LevelWarning, fmt.Sprintf("command %q yields to unknown command %q", d.Name, y))
			}
		}
	}

	for _, w := range precedence.AnalyzeCycles(Commands(defs)) {
		if w.Level != "warning" {
			continue // self loops are already reported as E106
		}
		errs = append(errs, ValidationError{
			Field:   "yields_to",
			Message: w.Message,
			Code:    ErrYieldCycle,
			Level:   LevelWarning,
		})
	}

	return errs
}
