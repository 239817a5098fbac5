package utils

import (
	"context"
	"sync"

	"done/models"
)

// MemorySlot is a Slot kept in memory. It stores encoded bytes so Load
// behaves like a real storage round-trip. LoadErr and SaveErr, when set,
// are returned instead of touching the stored value.
type MemorySlot struct {
	mu    sync.Mutex
	data  []byte
	saves int

	LoadErr error
	SaveErr error
}

// NewMemorySlot returns an empty slot.
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{}
}

// Load implements Slot.
func (m *MemorySlot) Load(ctx context.Context) (models.TaskList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return models.TaskList{}, m.LoadErr
	}
	if m.data == nil {
		return models.TaskList{}, ErrNotFound
	}
	return Decode(m.data)
}

// Save implements Slot.
func (m *MemorySlot) Save(ctx context.Context, list models.TaskList) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	data, err := Encode(list)
	if err != nil {
		return err
	}
	m.data = data
	m.saves++
	return nil
}

// Bytes returns a copy of the stored value, or nil if nothing is stored.
func (m *MemorySlot) Bytes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil
	}
	return append([]byte(nil), m.data...)
}

// SetBytes replaces the stored value as-is.
func (m *MemorySlot) SetBytes(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
}

// Saves returns how many successful saves have happened.
func (m *MemorySlot) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
