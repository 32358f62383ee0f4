package session

import (
	"context"
	"sync"
)

// Store is the persistence sink for session state.
//
// Save replaces whatever was stored before. Load reports ok=false when nothing
// has been stored yet. Implementations must be safe for concurrent use.
type Store interface {
	Save(ctx context.Context, s State) error
	Load(ctx context.Context) (State, bool, error)
	Clear(ctx context.Context) error
}

// MemoryStore keeps the encoded state in process memory. It is the default
// store and the one used by tests.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
	// saves counts successful Save calls.
	saves int
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save implements [Store].
func (m *MemoryStore) Save(_ context.Context, s State) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data = data
	m.saves++
	m.mu.Unlock()
	return nil
}

// Load implements [Store].
func (m *MemoryStore) Load(_ context.Context) (State, bool, error) {
	m.mu.Lock()
	data := m.data
	m.mu.Unlock()
	if data == nil {
		return State{}, false, nil
	}
	s, err := Decode(data)
	if err != nil {
		return State{}, false, err
	}
	return s, true, nil
}

// Clear implements [Store].
func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	m.data = nil
	m.mu.Unlock()
	return nil
}

// Saves returns how many times Save succeeded.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
