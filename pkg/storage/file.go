package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/annolab/margin/errors"
)

// File stores documents as plain files. Saves go through a temp file and
// rename so a crashed write never leaves a truncated document behind.
type File struct{}

// NewFile creates a file-backed storage backend.
func NewFile() *File {
	return &File{}
}

// Load reads the file at path.
func (f *File) Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(path)
		}
		return nil, errors.PersistenceFailed(err, path)
	}
	return data, nil
}

// Save atomically replaces the file at path, creating parent directories on
// first write.
func (f *File) Save(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.PersistenceFailed(err, path)
	}

	tmp, err := os.CreateTemp(dir, fmt.Sprintf(".%s-*", filepath.Base(path)))
	if err != nil {
		return errors.PersistenceFailed(err, path)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errors.PersistenceFailed(err, path)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return errors.PersistenceFailed(err, path)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return errors.PersistenceFailed(err, path)
	}
	return nil
}

// Close implements Backend. File handles are not held between calls.
func (f *File) Close() error {
	return nil
}
