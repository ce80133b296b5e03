package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestValidate_Clean(t *testing.T) {
	defs := []Definition{
		{Name: "explain", Description: "Explain code"},
		{Name: "fix", Description: "Fix code", YieldsTo: []string{"explain"}},
	}
	assert.Empty(t, Validate(defs))
}

func TestValidate_NameRules(t *testing.T) {
	defs := []Definition{
		{Name: "", Description: "no name"},
		{Name: "9lives", Description: "starts with a digit"},
		{Name: "has space", Description: "space"},
		{Name: "ok-name_2", Description: "fine"},
	}

	errs := Validate(defs)

	assert.Equal(t, []string{ErrNameEmpty, ErrNameInvalid, ErrNameInvalid}, codes(errs))
	assert.Equal(t, "commands[1].name", errs[1].Field)
	assert.True(t, HasErrors(errs))
}

func TestValidate_DuplicateAndDescription(t *testing.T) {
	defs := []Definition{
		{Name: "fix", Description: "first", Line: 3, Source: "a.yaml"},
		{Name: "fix", Description: "  ", Line: 7, Source: "a.yaml"},
	}

	errs := Validate(defs)

	require.Len(t, errs, 2)
	assert.Equal(t, ErrDuplicateName, errs[0].Code)
	assert.Equal(t, 7, errs[0].Line)
	assert.Equal(t, ErrDescriptionEmpty, errs[1].Code)
}

func TestValidate_YieldWarningsDoNotFail(t *testing.T) {
	defs := []Definition{
		{Name: "a", Description: "a", YieldsTo: []string{"a", "ghost"}},
	}

	errs := Validate(defs)

	assert.Equal(t, []string{ErrSelfYield, ErrDanglingYield}, codes(errs))
	assert.False(t, HasErrors(errs))
}

func TestValidate_CycleWarning(t *testing.T) {
	defs := []Definition{
		{Name: "a", Description: "a", YieldsTo: []string{"b"}},
		{Name: "b", Description: "b", YieldsTo: []string{"a"}},
	}

	errs := Validate(defs)

	require.Len(t, errs, 1)
	assert.Equal(t, ErrYieldCycle, errs[0].Code)
	assert.Equal(t, LevelWarning, errs[0].Level)
	assert.Equal(t, "yield cycle: a → b → a", errs[0].Message)
}

func TestValidate_AgentName(t *testing.T) {
	errs := Validate([]Definition{{Name: "a", Description: "a", Agent: "@bad"}})
	assert.Equal(t, []string{ErrAgentInvalid}, codes(errs))
}

func TestValidationErrorString(t *testing.T) {
	e := ValidationError{Field: "commands[0].name", Message: "name is required", Code: ErrNameEmpty}
	assert.Equal(t, "[E101] commands[0].name: name is required", e.Error())

	e.Line = 4
	assert.Equal(t, "[E101] line 4: commands[0].name: name is required", e.Error())
}
