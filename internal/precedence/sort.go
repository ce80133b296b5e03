package precedence

import (
	"io"
	"log/slog"
)

// Option configures a Sort call.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the sink for cycle warnings. A nil logger discards them.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		}
		o.logger = logger
	}
}

// Node visit states for the traversal.
const (
	unvisited uint8 = iota
	active
	done
)

// frame is one level of the explicit traversal stack: the command being
// visited and the index of the next dependency to look at.
type frame struct {
	node int
	next int
}

// Sort returns commands ordered so that every command appears after the
// commands it yields to. Unconstrained commands keep their input order.
//
// The input slice is never modified. When no command declares a yield
// reference the result is a copy of the input with Identity set.
//
// Cycles are broken by ignoring the edge that closes them; the command
// found already on the active path is logged and recorded in Result.Cycles.
// Sort never fails and always returns a permutation of its input.
func Sort(commands []Command, opts ...Option) Result {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	if !hasYields(commands) {
		out := make([]Command, len(commands))
		copy(out, commands)
		order := make([]int, len(commands))
		for i := range order {
			order[i] = i
		}
		return Result{Commands: out, Order: order, Identity: true}
	}

	follows := resolveFollows(commands)
	state := make([]uint8, len(commands))
	out := make([]Command, 0, len(commands))
	order := make([]int, 0, len(commands))
	var cycles []string
	stack := make([]frame, 0, 8)

	for i := range commands {
		if state[i] != unvisited {
			continue
		}
		state[i] = active
		stack = append(stack, frame{node: i})

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			deps := follows[top.node]
			if top.next < len(deps) {
				dep := deps[top.next]
				top.next++
				switch state[dep] {
				case unvisited:
					state[dep] = active
					stack = append(stack, frame{node: dep})
				case active:
					id := commands[dep].Command
					o.logger.Warn("yield cycle detected",
						"command", id,
						"yielding", commands[top.node].Command,
					)
					cycles = append(cycles, id)
				}
				continue
			}

			state[top.node] = done
			out = append(out, commands[top.node])
			order = append(order, top.node)
			stack = stack[:len(stack)-1]
		}
	}

	return Result{Commands: out, Order: order, Cycles: cycles}
}

func hasYields(commands []Command) bool {
	for _, c := range commands {
		if len(c.YieldsTo) > 0 {
			return true
		}
	}
	return false
}

// resolveFollows maps each input position to the positions it must follow.
// A reference resolves to every occurrence of the named command. Dangling
// references and references to the command's own position are dropped.
func resolveFollows(commands []Command) [][]int {
	positions := indexByName(commands)
	follows := make([][]int, len(commands))
	for i, c := range commands {
		for _, ref := range c.YieldsTo {
			for _, j := range positions[ref.Command] {
				if j != i {
					follows[i] = append(follows[i], j)
				}
			}
		}
	}
	return follows
}

func indexByName(commands []Command) map[string][]int {
	positions := make(map[string][]int, len(commands))
	for i, c := range commands {
		positions[c.Command] = append(positions[c.Command], i)
	}
	return positions
}
