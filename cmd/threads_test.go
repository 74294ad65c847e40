package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/annolab/margin/cli"
	"github.com/annolab/margin/pkg/storage"
	"github.com/annolab/margin/pkg/threadstore"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestConfig writes a margin.yml pointing the store at dir and returns
// the config path and store path.
func writeTestConfig(t *testing.T) (string, string) {
	t.Helper()

	dir := t.TempDir()
	storePath := filepath.Join(dir, "comments.json")
	cfgPath := filepath.Join(dir, "margin.yml")

	cfg := fmt.Sprintf("version: \"1.0\"\nsettings:\n  store_path: %s\n  backend: file\n", storePath)
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0644))
	return cfgPath, storePath
}

// seedStore creates a thread and returns its id.
func seedStore(t *testing.T, storePath, target string) string {
	t.Helper()

	store, err := threadstore.Open(storage.NewFile(), storePath)
	require.NoError(t, err)
	defer store.Close()

	creator, err := store.EnsurePerson("Ada Lovelace", "")
	require.NoError(t, err)
	id, err := store.CreateThread(target, "seeded thread", creator)
	require.NoError(t, err)
	store.Sync()
	return id
}

func newTestRoot(sub *cobra.Command) *cobra.Command {
	root := cli.NewStandardCommand("margin", "test root")
	root.AddCommand(sub)
	root.SilenceUsage = true
	return root
}

func TestThreadsResolveCommand(t *testing.T) {
	cfgPath, storePath := writeTestConfig(t)
	id := seedStore(t, storePath, "notebook.ipynb")

	root := newTestRoot(NewThreadsCmd())
	root.SetArgs([]string{"threads", "resolve", "notebook.ipynb", id, "--config", cfgPath})
	require.NoError(t, root.Execute())

	store, err := threadstore.Open(storage.NewFile(), storePath)
	require.NoError(t, err)
	defer store.Close()

	threads := store.ThreadsByTarget("notebook.ipynb")
	require.Len(t, threads, 1)
	assert.True(t, threads[0].Resolved)
}

func TestThreadsResolveUnknownThread(t *testing.T) {
	cfgPath, storePath := writeTestConfig(t)
	seedStore(t, storePath, "notebook.ipynb")

	root := newTestRoot(NewThreadsCmd())
	root.SilenceErrors = true
	root.SetArgs([]string{"threads", "resolve", "notebook.ipynb", "anno/99", "--config", cfgPath})
	assert.Error(t, root.Execute())
}

func TestThreadsListCommand(t *testing.T) {
	cfgPath, storePath := writeTestConfig(t)
	seedStore(t, storePath, "notebooks/analysis.ipynb")
	seedStore(t, storePath, "scratch.ipynb")

	root := newTestRoot(NewThreadsCmd())
	root.SetArgs([]string{"threads", "list", "--target", "notebooks/*", "--sort", "date", "--config", cfgPath})
	require.NoError(t, root.Execute())
}

func TestThreadsListRejectsBadSortKey(t *testing.T) {
	cfgPath, _ := writeTestConfig(t)

	root := newTestRoot(NewThreadsCmd())
	root.SilenceErrors = true
	root.SetArgs([]string{"threads", "list", "--sort", "upvotes", "--config", cfgPath})
	assert.Error(t, root.Execute())
}

func TestTargetsCommand(t *testing.T) {
	cfgPath, storePath := writeTestConfig(t)
	seedStore(t, storePath, "a.ipynb")

	root := newTestRoot(NewTargetsCmd())
	root.SetArgs([]string{"targets", "--config", cfgPath})
	require.NoError(t, root.Execute())
}
