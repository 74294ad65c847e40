package storage

import (
	"fmt"
	"sync"

	"github.com/annolab/margin/errors"
)

// Memory is a map-backed Backend for tests and throwaway sessions.
type Memory struct {
	mu   sync.Mutex
	docs map[string][]byte

	// FailSaves makes every Save return a persistence error when set.
	// Tests use it to exercise the fire-and-forget failure path.
	FailSaves bool
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{docs: make(map[string][]byte)}
}

// Load returns the document stored under path.
func (m *Memory) Load(path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.docs[path]
	if !ok {
		return nil, notFound(path)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

// Save stores the document under path.
func (m *Memory) Save(path string, content []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSaves {
		return errors.PersistenceFailed(fmt.Errorf("saves disabled"), path)
	}
	cp := make([]byte, len(content))
	copy(cp, content)
	m.docs[path] = cp
	return nil
}

// Close implements Backend.
func (m *Memory) Close() error {
	return nil
}

// SaveCount returns how many documents are stored. Test helper.
func (m *Memory) SaveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs)
}
