package precedence

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// AnalyzeCycles reports the loops in the yield graph of commands.
//
// The graph has an edge C → D for every yield reference from C to a command
// D that is present in the input. Strongly connected components are found
// with Tarjan's algorithm:
//   - components with more than one command are reported at level "warning"
//   - a command that yields to itself is reported at level "info", since
//     Sort ignores self references silently
//
// Warnings are returned in the input order of each component's first member.
// An acyclic input returns an empty list.
func AnalyzeCycles(commands []Command) []CycleWarning {
	if len(commands) == 0 {
		return []CycleWarning{}
	}

	graph, order := buildYieldGraph(commands)
	rank := make(map[string]int, len(order))
	for i, id := range order {
		rank[id] = i
	}

	var warnings []CycleWarning
	for _, scc := range tarjanSCC(graph, order) {
		if len(scc) == 1 && !hasSelfLoop(scc[0], graph) {
			continue
		}
		sort.Slice(scc, func(i, j int) bool { return rank[scc[i]] < rank[scc[j]] })
		warnings = append(warnings, sccToWarning(scc, graph))
	}

	sort.SliceStable(warnings, func(i, j int) bool {
		return rank[warnings[i].Path[0]] < rank[warnings[j].Path[0]]
	})
	if warnings == nil {
		return []CycleWarning{}
	}
	return warnings
}

// yieldGraph maps a command to the commands it yields to.
type yieldGraph map[string][]string

// buildYieldGraph returns the graph and the distinct identifiers in first
// occurrence order. Edges to absent commands are dropped.
func buildYieldGraph(commands []Command) (yieldGraph, []string) {
	present := make(map[string]bool, len(commands))
	var order []string
	for _, c := range commands {
		if !present[c.Command] {
			present[c.Command] = true
			order = append(order, c.Command)
		}
	}

	graph := make(yieldGraph, len(order))
	for _, c := range commands {
		if graph[c.Command] == nil {
			graph[c.Command] = []string{}
		}
		for _, ref := range c.YieldsTo {
			if present[ref.Command] {
				graph[c.Command] = append(graph[c.Command], ref.Command)
			}
		}
	}
	return graph, order
}

func hasSelfLoop(node string, graph yieldGraph) bool {
	for _, neighbor := range graph[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components, visiting roots in order so
// the result is deterministic.
func tarjanSCC(graph yieldGraph, order []string) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, node := range order {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

func sccToWarning(scc []string, graph yieldGraph) CycleWarning {
	if len(scc) == 1 {
		id := scc[0]
		return CycleWarning{
			Path:    []string{id, id},
			Message: fmt.Sprintf("command yields to itself: %s → %s", id, id),
			Level:   "info",
		}
	}

	path := reconstructCyclePath(scc, graph)
	return CycleWarning{
		Path:    path,
		Message: fmt.Sprintf("yield cycle: %s", strings.Join(path, " → ")),
		Level:   "warning",
	}
}

// reconstructCyclePath returns the shortest loop through the component's
// first member, found breadth-first over edges inside the component.
// Neighbors are expanded in declaration order so the result is stable.
func reconstructCyclePath(scc []string, graph yieldGraph) []string {
	members := make(map[string]bool, len(scc))
	for _, node := range scc {
		members[node] = true
	}

	start := scc[0]
	parent := map[string]string{start: ""}
	queue := []string{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, neighbor := range graph[current] {
			if !members[neighbor] || neighbor == current {
				continue
			}
			if neighbor == start {
				var path []string
				for n := current; n != ""; n = parent[n] {
					path = append(path, n)
				}
				slices.Reverse(path)
				return append(path, start)
			}
			if _, seen := parent[neighbor]; !seen {
				parent[neighbor] = current
				queue = append(queue, neighbor)
			}
		}
	}

	// Unreachable for a strongly connected component of two or more members.
	return []string{start, start}
}
