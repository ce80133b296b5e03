package precedence

// YieldRef names a command that the owning command is listed after.
type YieldRef struct {
	Command string `json:"command"`
}

// Command is the unit being ordered. Command must be unique within a single
// Sort call; duplicates are tolerated but their relative order is undefined.
type Command struct {
	Command  string     `json:"command"`
	YieldsTo []YieldRef `json:"yields_to,omitempty"`
}

// Result is the outcome of Sort.
type Result struct {
	// Commands is a newly allocated permutation of the input.
	Commands []Command `json:"commands"`

	// Order holds, for each element of Commands, its position in the input.
	Order []int `json:"order"`

	// Identity is true when no input command declared a yield reference and
	// Commands is the input order verbatim.
	Identity bool `json:"identity"`

	// Cycles lists, in detection order, the commands whose incoming edge was
	// dropped to break a cycle.
	Cycles []string `json:"cycles,omitempty"`
}

// Names returns the identifiers of r.Commands in order.
func (r Result) Names() []string {
	names := make([]string, len(r.Commands))
	for i, c := range r.Commands {
		names[i] = c.Command
	}
	return names
}

// CycleWarning describes one loop found by AnalyzeCycles.
type CycleWarning struct {
	Path    []string `json:"path"`    // e.g. ["fix", "explain", "fix"]
	Message string   `json:"message"`
	Level   string   `json:"level"` // "warning" or "info"
}
