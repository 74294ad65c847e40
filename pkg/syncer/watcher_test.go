package syncer

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/annolab/margin/pkg/models"
	"github.com/annolab/margin/pkg/receiver"
	"github.com/annolab/margin/pkg/state"
	"github.com/annolab/margin/pkg/storage"
	"github.com/annolab/margin/pkg/threadstore"
	"github.com/annolab/margin/pkg/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreWatcherReloadsOnExternalWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "comments.json")

	threads, err := threadstore.Open(storage.NewFile(), path)
	require.NoError(t, err)
	t.Cleanup(threads.Close)
	threads.Sync()

	st := state.New(models.SortLatest)
	r := receiver.New(threads, st, users.NewStatic(map[string]users.Identity{
		"ada": {Name: "Ada Lovelace"},
	}))
	require.NoError(t, r.SetUserInfo(context.Background(), "ada"))
	r.SetTarget("notebook.ipynb")
	// Flush the person write before anything external happens, so the
	// engine has no save in flight that could land on top of it.
	threads.Sync()

	w, err := NewStoreWatcher(threads, r, path, 20*time.Millisecond)
	require.NoError(t, err)
	w.Start()
	t.Cleanup(func() { w.Close() })

	// Simulate another process writing the document: atomic replace, the
	// same way the file backend saves.
	doc := models.NewStoreDocument()
	doc.Comments["notebook.ipynb"] = []models.Thread{
		{
			ID:    "anno/1",
			Total: 1,
			Body: []models.Comment{
				{Value: "external", Created: time.Now().UTC(), Creator: models.Person{ID: "p1", Name: "Bob"}},
			},
		},
	}
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	tmp := path + ".tmp"
	require.NoError(t, os.WriteFile(tmp, data, 0644))
	require.NoError(t, os.Rename(tmp, path))

	ok := waitFor(t, 2*time.Second, func() bool {
		return len(st.Get().Response) == 1
	})
	assert.True(t, ok, "external write should reload the store and refresh state")
	if len(st.Get().Response) == 1 {
		assert.Equal(t, "anno/1", st.Get().Response[0].ID)
	}
}

func TestStoreWatcherDebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "comments.json")

	threads, err := threadstore.Open(storage.NewFile(), path)
	require.NoError(t, err)
	t.Cleanup(threads.Close)
	threads.Sync()

	st := state.New(models.SortLatest)
	r := receiver.New(threads, st, users.NewStatic(nil))
	r.SetTarget("notebook.ipynb")

	w, err := NewStoreWatcher(threads, r, path, 50*time.Millisecond)
	require.NoError(t, err)
	w.Start()
	t.Cleanup(func() { w.Close() })

	doc := models.NewStoreDocument()
	doc.Comments["notebook.ipynb"] = []models.Thread{
		{ID: "anno/1", Total: 1, Body: []models.Comment{{Value: "v", Created: time.Now().UTC()}}},
	}
	data, err := json.Marshal(doc)
	require.NoError(t, err)

	// Rapid rewrites within the debounce window settle into one reload
	// with the final contents.
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, data, 0644))
		time.Sleep(5 * time.Millisecond)
	}

	ok := waitFor(t, 2*time.Second, func() bool {
		return len(threads.ThreadsByTarget("notebook.ipynb")) == 1
	})
	assert.True(t, ok)
}

func TestStoreWatcherIgnoresOwnFlushes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "comments.json")

	threads, err := threadstore.Open(storage.NewFile(), path)
	require.NoError(t, err)
	t.Cleanup(threads.Close)
	threads.Sync()

	st := state.New(models.SortLatest)
	r := receiver.New(threads, st, users.NewStatic(nil))
	r.SetTarget("notebook.ipynb")

	w, err := NewStoreWatcher(threads, r, path, 20*time.Millisecond)
	require.NoError(t, err)
	w.Start()
	t.Cleanup(func() { w.Close() })

	// A write through the store raises a file event too, but it is the
	// engine's own flush: the watcher must not reload or refresh for it.
	// With no poller running, any Response appearing here could only come
	// from the watcher.
	creator, err := threads.EnsurePerson("Ada Lovelace", "")
	require.NoError(t, err)
	_, err = threads.CreateThread("notebook.ipynb", "own write", creator)
	require.NoError(t, err)
	threads.Sync()

	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, st.Get().Response)

	// A genuinely external change is still picked up afterwards.
	doc := threads.Document()
	doc.Comments["notebook.ipynb"][0].Body[0].Value = "changed outside"
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	tmp := path + ".tmp"
	require.NoError(t, os.WriteFile(tmp, data, 0644))
	require.NoError(t, os.Rename(tmp, path))

	ok := waitFor(t, 2*time.Second, func() bool {
		sess := st.Get()
		return len(sess.Response) == 1 && sess.Response[0].Body[0].Value == "changed outside"
	})
	assert.True(t, ok, "external edit should still reload and refresh")
}

func TestStoreWatcherCloseIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "comments.json")

	threads, err := threadstore.Open(storage.NewFile(), path)
	require.NoError(t, err)
	t.Cleanup(threads.Close)

	st := state.New(models.SortLatest)
	r := receiver.New(threads, st, users.NewStatic(nil))

	w, err := NewStoreWatcher(threads, r, path, 20*time.Millisecond)
	require.NoError(t, err)
	w.Start()

	require.NoError(t, w.Close())
	w.Close()
}
