package cli

import (
	"bytes"
	"sync"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/spf13/cobra"

	"github.com/roach88/slashcmd/internal/config"
)

// newTestOptions returns root options with default settings rooted in a
// temp dir, so no .slashcmd.yaml from the working directory is read.
func newTestOptions(t *testing.T, format string) *RootOptions {
	t.Helper()
	cfg := config.Default(t.TempDir())
	return &RootOptions{Format: format, settings: &cfg}
}

// execute runs cmd with args and returns what it wrote to stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// assertGolden compares got against testdata/golden/<name>.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/cli -update
func assertGolden(t *testing.T, name, got string) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(got))
}

// syncBuffer is a bytes.Buffer safe for a writer and a polling reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
