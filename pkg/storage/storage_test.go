package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileBackend(t *testing.T) {
	backend := NewFile()
	path := filepath.Join(t.TempDir(), ".margin", "comments.json")

	// Missing file is a distinguishable not-found, not a failure.
	_, err := backend.Load(path)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	// First save creates parent directories.
	require.NoError(t, backend.Save(path, []byte(`{"comments":{}}`)))

	data, err := backend.Load(path)
	require.NoError(t, err)
	assert.Equal(t, `{"comments":{}}`, string(data))

	// Save replaces, never appends.
	require.NoError(t, backend.Save(path, []byte(`{}`)))
	data, err = backend.Load(path)
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSQLiteBackend(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "margin.db")
	backend, err := OpenSQLite(dbPath)
	require.NoError(t, err)
	defer backend.Close()

	_, err = backend.Load("comments.json")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	require.NoError(t, backend.Save("comments.json", []byte(`{"persons":{}}`)))

	data, err := backend.Load("comments.json")
	require.NoError(t, err)
	assert.Equal(t, `{"persons":{}}`, string(data))

	// Upsert overwrites in place.
	require.NoError(t, backend.Save("comments.json", []byte(`{}`)))
	data, err = backend.Load("comments.json")
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))

	// Keys are independent documents.
	require.NoError(t, backend.Save("other.json", []byte(`[]`)))
	data, err = backend.Load("comments.json")
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))
}

func TestMemoryBackend(t *testing.T) {
	backend := NewMemory()

	_, err := backend.Load("doc")
	assert.True(t, IsNotFound(err))

	require.NoError(t, backend.Save("doc", []byte("x")))
	data, err := backend.Load("doc")
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))

	backend.FailSaves = true
	err = backend.Save("doc", []byte("y"))
	require.Error(t, err)
	assert.False(t, IsNotFound(err))

	// Failed save must not clobber the stored document.
	data, err = backend.Load("doc")
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}
