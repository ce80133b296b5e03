package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryRoundTrip(t *testing.T) {
	opts := newTestOptions(t, "text")
	db := filepath.Join(t.TempDir(), "history.db")

	run := func(args ...string) string {
		t.Helper()
		out, err := execute(t, NewHistoryCommand(opts), append(args, "--db", db)...)
		require.NoError(t, err)
		return out
	}

	assert.Equal(t, "added #1 to default\n", run("add", "/explain this"))
	assert.Equal(t, "unchanged: same as #1 in default\n", run("add", "/explain this "))
	assert.Equal(t, "added #2 to default\n", run("add", "/fix it"))
	assert.Equal(t, "added #1 to other\n", run("add", "hello", "--session", "other"))

	assert.Equal(t, "   2  /fix it\n   1  /explain this\n", run("list"))
	assert.Equal(t, "   2  /fix it\n", run("list", "--limit", "1"))

	assert.Equal(t, "removed 2 entries from default\n", run("clear"))
	assert.Equal(t, "", run("list"))
	assert.Equal(t, "   1  hello\n", run("list", "--session", "other"))
}

func TestHistoryJSON(t *testing.T) {
	opts := newTestOptions(t, "json")
	opts.settings.HistoryDB = filepath.Join(t.TempDir(), "history.db")
	opts.settings.Session = "review"

	out, err := execute(t, NewHistoryCommand(opts), "add", "#file:main.go explain")
	require.NoError(t, err)

	var added struct {
		Status string           `json:"status"`
		Data   HistoryAddResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &added))
	assert.Equal(t, "ok", added.Status)
	assert.True(t, added.Data.Added)
	assert.Equal(t, "review", added.Data.Entry.Session)
	assert.Equal(t, int64(1), added.Data.Entry.Seq)
	assert.Len(t, added.Data.Entry.ID, 36)

	out, err = execute(t, NewHistoryCommand(opts), "list")
	require.NoError(t, err)

	var listed struct {
		Data HistoryListResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	assert.Equal(t, "review", listed.Data.Session)
	require.Len(t, listed.Data.Entries, 1)
	assert.Equal(t, added.Data.Entry.ID, listed.Data.Entries[0].ID)
}

func TestHistoryAddBlank(t *testing.T) {
	opts := newTestOptions(t, "text")

	out, err := execute(t, NewHistoryCommand(opts), "add", "   ", "--db", filepath.Join(t.TempDir(), "h.db"))

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E201]")
}

func TestHistoryOpenFailure(t *testing.T) {
	opts := newTestOptions(t, "text")
	db := filepath.Join(t.TempDir(), "missing", "dir", "h.db")

	out, err := execute(t, NewHistoryCommand(opts), "list", "--db", db)

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E201]")
}
