package repositories

import (
	"context"
	"sync"
)

// MockStateStorage is an in-memory implementation of StateStorage.
type MockStateStorage struct {
	slots map[string]string
	mu    sync.RWMutex
}

// NewMockStateStorage creates a new instance of MockStateStorage.
func NewMockStateStorage() *MockStateStorage {
	return &MockStateStorage{
		slots: make(map[string]string),
	}
}

// Get retrieves the value stored under key.
func (s *MockStateStorage) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.slots[key]
	return value, ok, nil
}

// Set writes value under key.
func (s *MockStateStorage) Set(_ context.Context, key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.slots[key] = value
	return nil
}

// Delete removes the slot under key.
func (s *MockStateStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.slots, key)
	return nil
}
