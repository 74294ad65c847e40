// Package storage provides the pluggable blob store that backs the thread
// store's durable document.
package storage

import "github.com/annolab/margin/errors"

// Backend persists opaque documents under string keys. Load must return a
// NOT_FOUND error for unknown keys so callers can bootstrap an empty
// document; IsNotFound distinguishes that case from real failures.
type Backend interface {
	// Load returns the document stored under path.
	Load(path string) ([]byte, error)
	// Save durably replaces the document stored under path.
	Save(path string, content []byte) error
	// Close releases backend resources.
	Close() error
}

// IsNotFound reports whether err marks a missing document.
func IsNotFound(err error) bool {
	return errors.Is(err, errors.ErrCodeNotFound)
}

func notFound(path string) error {
	return errors.New(errors.ErrCodeNotFound, "no document at "+path).
		WithDetail("path", path)
}
