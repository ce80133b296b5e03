package precedence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeCycles_Empty(t *testing.T) {
	assert.Empty(t, AnalyzeCycles(nil))
}

func TestAnalyzeCycles_DAG(t *testing.T) {
	commands := []Command{cmd("d", "b", "c"), cmd("b", "a"), cmd("c", "a"), cmd("a")}
	assert.Empty(t, AnalyzeCycles(commands))
}

func TestAnalyzeCycles_DanglingIgnored(t *testing.T) {
	commands := []Command{cmd("a", "ghost"), cmd("b")}
	assert.Empty(t, AnalyzeCycles(commands))
}

func TestAnalyzeCycles_SelfLoop(t *testing.T) {
	warnings := AnalyzeCycles([]Command{cmd("retry", "retry")})

	require.Len(t, warnings, 1)
	assert.Equal(t, []string{"retry", "retry"}, warnings[0].Path)
	assert.Equal(t, "info", warnings[0].Level)
	assert.Contains(t, warnings[0].Message, "yields to itself")
}

func TestAnalyzeCycles_TwoCycle(t *testing.T) {
	warnings := AnalyzeCycles([]Command{cmd("a", "b"), cmd("b", "a"), cmd("c")})

	require.Len(t, warnings, 1)
	assert.Equal(t, []string{"a", "b", "a"}, warnings[0].Path)
	assert.Equal(t, "warning", warnings[0].Level)
	assert.Equal(t, "yield cycle: a → b → a", warnings[0].Message)
}

func TestAnalyzeCycles_ThreeCycle(t *testing.T) {
	warnings := AnalyzeCycles([]Command{cmd("a", "c"), cmd("b", "a"), cmd("c", "b")})

	require.Len(t, warnings, 1)
	assert.Equal(t, []string{"a", "c", "b", "a"}, warnings[0].Path)
}

func TestAnalyzeCycles_PathClosesWhenFirstNeighborDetours(t *testing.T) {
	// b reaches c first, but c only leads back to b.
	warnings := AnalyzeCycles([]Command{cmd("a", "b"), cmd("b", "c", "a"), cmd("c", "b")})

	require.Len(t, warnings, 1)
	path := warnings[0].Path
	assert.Equal(t, path[0], path[len(path)-1])
	assert.Equal(t, []string{"a", "b", "a"}, path)
	assert.Equal(t, "yield cycle: a → b → a", warnings[0].Message)
}

func TestAnalyzeCycles_PathIsShortestLoopThroughFirstMember(t *testing.T) {
	commands := []Command{
		cmd("a", "b", "d"),
		cmd("b", "c"),
		cmd("c", "a"),
		cmd("d", "a"),
	}

	warnings := AnalyzeCycles(commands)

	require.Len(t, warnings, 1)
	assert.Equal(t, []string{"a", "d", "a"}, warnings[0].Path)
}

func TestAnalyzeCycles_MultipleCyclesInInputOrder(t *testing.T) {
	commands := []Command{
		cmd("x", "y"),
		cmd("a", "b"),
		cmd("b", "a"),
		cmd("y", "x"),
	}

	warnings := AnalyzeCycles(commands)

	require.Len(t, warnings, 2)
	assert.Equal(t, "x", warnings[0].Path[0])
	assert.Equal(t, "a", warnings[1].Path[0])
}

func TestAnalyzeCycles_AgreesWithSort(t *testing.T) {
	commands := []Command{cmd("a", "b"), cmd("b", "a")}

	warnings := AnalyzeCycles(commands)
	result := Sort(commands, quiet())

	require.Len(t, warnings, 1)
	require.Len(t, result.Cycles, 1)
	assert.Contains(t, warnings[0].Path, result.Cycles[0])
}
