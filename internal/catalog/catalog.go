package catalog

import (
	"log/slog"
	"strings"

	"github.com/roach88/slashcmd/internal/precedence"
)

// Catalog is an immutable, yield-ordered view of a set of definitions.
// It is safe for concurrent use.
type Catalog struct {
	defs     []Definition
	byName   map[string]int
	identity bool
	cycles   []string
}

// New sorts defs with precedence.Sort and indexes the result. Cycle warnings
// go to logger; nil uses slog.Default.
func New(defs []Definition, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}

	result := precedence.Sort(Commands(defs), precedence.WithLogger(logger))

	sorted := make([]Definition, len(result.Order))
	byName := make(map[string]int, len(result.Order))
	for i, pos := range result.Order {
		sorted[i] = defs[pos]
		if _, ok := byName[sorted[i].Name]; !ok {
			byName[sorted[i].Name] = i
		}
	}

	return &Catalog{
		defs:     sorted,
		byName:   byName,
		identity: result.Identity,
		cycles:   result.Cycles,
	}
}

// Len returns the number of definitions.
func (c *Catalog) Len() int { return len(c.defs) }

// Commands returns a copy of the definitions in yield order.
func (c *Catalog) Commands() []Definition {
	out := make([]Definition, len(c.defs))
	copy(out, c.defs)
	return out
}

// Names returns the command names in yield order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.defs))
	for i, d := range c.defs {
		names[i] = d.Name
	}
	return names
}

// Identity reports whether sorting left the declaration order untouched
// because nothing declared yields_to.
func (c *Catalog) Identity() bool { return c.identity }

// Cycles returns the commands whose incoming yield edge was dropped.
func (c *Catalog) Cycles() []string {
	return append([]string(nil), c.cycles...)
}

// Lookup returns the first definition named name.
func (c *Catalog) Lookup(name string) (Definition, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Definition{}, false
	}
	return c.defs[i], true
}

// Match returns the definitions whose name starts with prefix, ignoring
// case, in yield order. An empty prefix matches everything.
func (c *Catalog) Match(prefix string) []Definition {
	prefix = strings.ToLower(prefix)
	var out []Definition
	for _, d := range c.defs {
		if strings.HasPrefix(strings.ToLower(d.Name), prefix) {
			out = append(out, d)
		}
	}
	return out
}

// Agents returns the distinct agent names referenced by definitions, in
// order of first appearance.
func (c *Catalog) Agents() []string {
	seen := make(map[string]bool)
	var agents []string
	for _, d := range c.defs {
		if d.Agent == "" || seen[d.Agent] {
			continue
		}
		seen[d.Agent] = true
		agents = append(agents, d.Agent)
	}
	return agents
}

// ForAgent returns the commands bound to agent, in yield order. Commands
// without an agent belong to every agent.
func (c *Catalog) ForAgent(agent string) []Definition {
	var out []Definition
	for _, d := range c.defs {
		if d.Agent == "" || d.Agent == agent {
			out = append(out, d)
		}
	}
	return out
}
