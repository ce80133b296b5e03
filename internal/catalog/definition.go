package catalog

import "github.com/roach88/slashcmd/internal/precedence"

// Definition is one slash command as declared in a catalog file.
type Definition struct {
	Name          string   `json:"name" yaml:"name"`
	Description   string   `json:"description" yaml:"description"`
	YieldsTo      []string `json:"yields_to,omitempty" yaml:"yields_to,omitempty"`
	Agent         string   `json:"agent,omitempty" yaml:"agent,omitempty"`
	SampleRequest string   `json:"sample_request,omitempty" yaml:"sample_request,omitempty"`
	When          string   `json:"when,omitempty" yaml:"when,omitempty"`

	// Source and Line locate the definition for diagnostics.
	Source string `json:"source,omitempty" yaml:"-"`
	Line   int    `json:"line,omitempty" yaml:"-"`
}

// Command converts the definition to the form precedence.Sort consumes.
func (d Definition) Command() precedence.Command {
	c := precedence.Command{Command: d.Name}
	for _, y := range d.YieldsTo {
		c.YieldsTo = append(c.YieldsTo, precedence.YieldRef{Command: y})
	}
	return c
}

// Commands converts defs in order.
func Commands(defs []Definition) []precedence.Command {
	out := make([]precedence.Command, len(defs))
	for i, d := range defs {
		out[i] = d.Command()
	}
	return out
}
