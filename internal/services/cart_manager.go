package services

import (
	"context"
	"sync"

	"bozor/internal/repositories"
)

// CartManager hands out one CartService per owner, constructing and
// hydrating each at most once per process.
type CartManager struct {
	storage repositories.StateStorage

	mu    sync.Mutex
	carts map[string]*CartService
}

// NewCartManager creates a new CartManager backed by the given storage.
func NewCartManager(storage repositories.StateStorage) *CartManager {
	return &CartManager{
		storage: storage,
		carts:   make(map[string]*CartService),
	}
}

// For returns the owner's cart, hydrating it from durable storage on first
// access.
func (m *CartManager) For(ctx context.Context, ownerID string) *CartService {
	m.mu.Lock()
	defer m.mu.Unlock()

	cart, ok := m.carts[ownerID]
	if !ok {
		cart = NewCartService(ctx, ownerID, m.storage)
		m.carts[ownerID] = cart
	}
	return cart
}
