package precedence

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cmd(name string, yields ...string) Command {
	c := Command{Command: name}
	for _, y := range yields {
		c.YieldsTo = append(c.YieldsTo, YieldRef{Command: y})
	}
	return c
}

func quiet() Option {
	return WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSort_NoYieldsIsIdentity(t *testing.T) {
	input := []Command{cmd("explain"), cmd("fix"), cmd("tests")}

	result := Sort(input, quiet())

	assert.True(t, result.Identity)
	assert.Equal(t, []string{"explain", "fix", "tests"}, result.Names())
	assert.Empty(t, result.Cycles)

	// The result is a copy, not the caller's slice.
	result.Commands[0].Command = "changed"
	assert.Equal(t, "explain", input[0].Command)
}

func TestSort_Empty(t *testing.T) {
	result := Sort(nil, quiet())
	assert.True(t, result.Identity)
	assert.Empty(t, result.Commands)
}

func TestSort_YieldAfterEarlierCommand(t *testing.T) {
	input := []Command{cmd("a"), cmd("b", "a"), cmd("c")}

	result := Sort(input, quiet())

	assert.False(t, result.Identity)
	assert.Equal(t, []string{"a", "b", "c"}, result.Names())
}

func TestSort_DanglingReferenceIgnored(t *testing.T) {
	input := []Command{cmd("x", "z"), cmd("y")}

	result := Sort(input, quiet())

	assert.False(t, result.Identity, "a declared reference disables the fast path")
	assert.Equal(t, []string{"x", "y"}, result.Names())
	assert.Empty(t, result.Cycles)
}

func TestSort_MovesCommandAfterTarget(t *testing.T) {
	input := []Command{cmd("b", "a"), cmd("a"), cmd("c")}

	result := Sort(input, quiet())

	assert.Equal(t, []string{"a", "b", "c"}, result.Names())
}

func TestSort_Chain(t *testing.T) {
	input := []Command{cmd("c", "b"), cmd("b", "a"), cmd("a")}

	result := Sort(input, quiet())

	assert.Equal(t, []string{"a", "b", "c"}, result.Names())
}

func TestSort_Diamond(t *testing.T) {
	input := []Command{cmd("d", "b", "c"), cmd("b", "a"), cmd("c", "a"), cmd("a")}

	result := Sort(input, quiet())

	assert.Equal(t, []string{"a", "b", "c", "d"}, result.Names())
}

func TestSort_TwoCycleTerminates(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	input := []Command{cmd("A", "B"), cmd("B", "A")}

	result := Sort(input, WithLogger(logger))

	assert.Equal(t, []string{"B", "A"}, result.Names())
	assert.Equal(t, []string{"A"}, result.Cycles)
	assert.Contains(t, buf.String(), "yield cycle detected")
	assert.Contains(t, buf.String(), "command=A")
}

func TestSort_ThreeCycleTerminates(t *testing.T) {
	input := []Command{cmd("a", "c"), cmd("b", "a"), cmd("c", "b")}

	result := Sort(input, quiet())

	assert.Equal(t, []string{"b", "c", "a"}, result.Names())
	assert.Equal(t, []string{"a"}, result.Cycles)
}

func TestSort_SelfReferenceIgnored(t *testing.T) {
	input := []Command{cmd("a", "a"), cmd("b")}

	result := Sort(input, quiet())

	assert.Equal(t, []string{"a", "b"}, result.Names())
	assert.Empty(t, result.Cycles)
}

func TestSort_DuplicatesPreserved(t *testing.T) {
	input := []Command{cmd("a"), cmd("b", "a"), cmd("a")}

	result := Sort(input, quiet())

	require.Len(t, result.Commands, 3)
	assert.Equal(t, []string{"a", "a", "b"}, result.Names())
}

func TestSort_DoesNotMutateInput(t *testing.T) {
	input := []Command{cmd("c", "b"), cmd("b", "a"), cmd("a")}
	before := make([]Command, len(input))
	for i, c := range input {
		before[i] = Command{Command: c.Command, YieldsTo: append([]YieldRef(nil), c.YieldsTo...)}
	}

	Sort(input, quiet())

	if diff := cmp.Diff(before, input); diff != "" {
		t.Errorf("input mutated (-before +after):\n%s", diff)
	}
}

func TestSort_NilLoggerDiscards(t *testing.T) {
	result := Sort([]Command{cmd("a", "b"), cmd("b", "a")}, WithLogger(nil))
	assert.Len(t, result.Commands, 2)
}

// randomAcyclic builds n commands where each command only yields to commands
// of lower rank, so the yield graph has no cycles.
func randomAcyclic(r *rand.Rand, n int) []Command {
	commands := make([]Command, n)
	for i := range commands {
		commands[i] = Command{Command: fmt.Sprintf("c%02d", i)}
		for j := 0; j < i; j++ {
			if r.Intn(4) == 0 {
				commands[i].YieldsTo = append(commands[i].YieldsTo, YieldRef{Command: fmt.Sprintf("c%02d", j)})
			}
		}
		if r.Intn(5) == 0 {
			commands[i].YieldsTo = append(commands[i].YieldsTo, YieldRef{Command: "missing"})
		}
	}
	r.Shuffle(n, func(i, j int) { commands[i], commands[j] = commands[j], commands[i] })
	return commands
}

func TestSort_PermutationAndOrderingProperties(t *testing.T) {
	r := rand.New(rand.NewSource(7))

	for round := 0; round < 50; round++ {
		input := randomAcyclic(r, 1+r.Intn(20))

		result := Sort(input, quiet())

		require.Len(t, result.Commands, len(input))
		assert.ElementsMatch(t, Result{Commands: input}.Names(), result.Names())
		assert.Empty(t, result.Cycles)

		pos := make(map[string]int, len(result.Commands))
		for i, c := range result.Commands {
			pos[c.Command] = i
		}
		for _, c := range input {
			for _, ref := range c.YieldsTo {
				target, ok := pos[ref.Command]
				if !ok {
					continue
				}
				assert.Less(t, target, pos[c.Command], "%s must follow %s", c.Command, ref.Command)
			}
		}
	}
}

func TestSort_StableForUnconstrained(t *testing.T) {
	input := []Command{cmd("p"), cmd("q"), cmd("r", "s"), cmd("s"), cmd("t")}

	result := Sort(input, quiet())

	assert.Equal(t, []string{"p", "q", "s", "r", "t"}, result.Names())
}

func TestSort_ConcurrentCalls(t *testing.T) {
	input := []Command{cmd("d", "b", "c"), cmd("b", "a"), cmd("c", "a"), cmd("a")}
	want := []string{"a", "b", "c", "d"}

	var wg sync.WaitGroup
	errs := make(chan string, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := Sort(input, quiet()).Names()
			if diff := cmp.Diff(want, got); diff != "" {
				errs <- diff
			}
		}()
	}
	wg.Wait()
	close(errs)

	for diff := range errs {
		t.Errorf("concurrent sort mismatch:\n%s", diff)
	}
}

func TestSort_LargeChainDoesNotRecurse(t *testing.T) {
	const n = 100000
	input := make([]Command, n)
	for i := 0; i < n; i++ {
		input[i] = Command{Command: fmt.Sprintf("n%d", i)}
		if i+1 < n {
			input[i].YieldsTo = []YieldRef{{Command: fmt.Sprintf("n%d", i+1)}}
		}
	}

	result := Sort(input, quiet())

	require.Len(t, result.Commands, n)
	assert.Equal(t, fmt.Sprintf("n%d", n-1), result.Commands[0].Command)
	assert.Equal(t, "n0", result.Commands[n-1].Command)
}

func TestSort_OrderMapsToInputPositions(t *testing.T) {
	input := []Command{cmd("b", "a"), cmd("a"), cmd("c")}

	result := Sort(input, quiet())

	assert.Equal(t, []int{1, 0, 2}, result.Order)
	for i, pos := range result.Order {
		assert.Equal(t, input[pos].Command, result.Commands[i].Command)
	}

	identity := Sort([]Command{cmd("x"), cmd("y")}, quiet())
	assert.Equal(t, []int{0, 1}, identity.Order)
}
