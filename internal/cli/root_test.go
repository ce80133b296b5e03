package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "slashcmd", cmd.Use)
	assert.Contains(t, cmd.Long, "slash command catalogs")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"sort"}, {"validate"}, {"complete"}, {"which"}, {"env"}, {"watch"},
		{"history", "add"}, {"history", "list"}, {"history", "clear"},
	}

	for _, path := range commands {
		t.Run(path[len(path)-1], func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err, "command %v should exist", path)
			assert.Equal(t, path[len(path)-1], subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}

func TestSubcommandFlags(t *testing.T) {
	cmd := NewRootCommand()

	tests := []struct {
		path []string
		flag string
		def  string
	}{
		{[]string{"complete"}, "cursor", "-1"},
		{[]string{"complete"}, "var", "[]"},
		{[]string{"which"}, "cwd", ""},
		{[]string{"which"}, "login", "false"},
		{[]string{"env"}, "allow", "[]"},
		{[]string{"watch"}, "debounce", "0s"},
		{[]string{"history", "list"}, "limit", "0"},
	}

	for _, tt := range tests {
		sub, _, err := cmd.Find(tt.path)
		require.NoError(t, err)
		flag := sub.Flags().Lookup(tt.flag)
		require.NotNil(t, flag, "%v --%s", tt.path, tt.flag)
		assert.Equal(t, tt.def, flag.DefValue, "%v --%s", tt.path, tt.flag)
	}

	history, _, err := cmd.Find([]string{"history"})
	require.NoError(t, err)
	assert.NotNil(t, history.PersistentFlags().Lookup("db"))
	assert.NotNil(t, history.PersistentFlags().Lookup("session"))
}

func TestFormatValidation(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	cmd := NewRootCommand()
	_, err := execute(t, cmd, "--format", "invalid", "sort", "testdata/catalog")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestVerboseLogsToStderr(t *testing.T) {
	cmd := NewRootCommand()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs([]string{"--verbose", "sort", "testdata/cycle"})

	require.NoError(t, cmd.Execute())

	assert.Contains(t, errOut.String(), "Found 1 definition file(s)")
	assert.Contains(t, errOut.String(), "level=WARN msg=\"yield cycle detected\"")
	assert.NotContains(t, out.String(), "level=")
}

func TestConfigFlag(t *testing.T) {
	dir := t.TempDir()
	abs, err := filepath.Abs("testdata/catalog")
	require.NoError(t, err)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("catalog_dir: "+abs+"\n"), 0o644))

	out, err := execute(t, NewRootCommand(), "--config", path, "sort")

	require.NoError(t, err)
	assert.Contains(t, out, "1. /explain")
}

func TestConfigFlagMissingFile(t *testing.T) {
	out, err := execute(t, NewRootCommand(), "--config", filepath.Join(t.TempDir(), "nope.yaml"), "sort")

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E010]")
}
