// Package memory provides a map-backed storage.Slots. Nothing survives a
// restart; it is meant for tests and throwaway sessions.
package memory

import (
	"bytes"
	"context"
	"sync"

	"github.com/aanand-mishra/student-records/internal/storage"
)

// Memory is an in-process storage.Slots.
type Memory struct {
	mu    sync.Mutex
	slots map[string][]byte

	// FailPut, when set, is returned by every Put and Swap before
	// anything is stored. Tests use it to simulate a full or unavailable backend.
	FailPut error
}

// New returns an empty Memory.
func New() *Memory {
	return &Memory{slots: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.slots[key]
	if !ok {
		return nil, storage.ErrSlotEmpty
	}
	return append([]byte(nil), v...), nil
}

func (m *Memory) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailPut != nil {
		return m.FailPut
	}
	m.slots[key] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) Swap(_ context.Context, key string, old, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailPut != nil {
		return m.FailPut
	}
	cur, ok := m.slots[key]
	if ok != (old != nil) || !bytes.Equal(cur, old) {
		return storage.ErrConflict
	}
	m.slots[key] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) Close() error { return nil }
