package services

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"bozor/internal/models"
	"bozor/internal/repositories"
)

// CartService owns one customer's cart: an in-memory collection of line
// items mirrored into a durable key-value slot on every mutation. All cart
// access goes through this API; nothing else touches the slot directly.
//
// Invariant: at most one entry per product ID, and every entry has a
// positive quantity.
type CartService struct {
	slotKey string
	storage repositories.StateStorage

	mu    sync.Mutex
	items []models.CartItem
}

// NewCartService creates a cart bound to the owner's durable slot and
// hydrates it once. A missing slot starts empty; a corrupt slot value is
// logged and treated as empty, never surfaced.
func NewCartService(ctx context.Context, ownerID string, storage repositories.StateStorage) *CartService {
	s := &CartService{
		slotKey: "cart:" + ownerID,
		storage: storage,
	}
	s.hydrate(ctx)
	return s
}

// hydrate loads the persisted collection. Called exactly once, from the
// constructor.
func (s *CartService) hydrate(ctx context.Context) {
	value, ok, err := s.storage.Get(ctx, s.slotKey)
	if err != nil {
		log.Printf("Failed to load cart slot %s, starting empty: %v", s.slotKey, err)
		return
	}
	if !ok {
		return
	}

	var items []models.CartItem
	if err := json.Unmarshal([]byte(value), &items); err != nil {
		log.Printf("Corrupt cart slot %s, starting empty: %v", s.slotKey, err)
		return
	}
	s.items = items
}

// persist mirrors the full collection into the durable slot. A failed write
// is logged and the in-memory state stands; this loss window is accepted.
// Caller must hold s.mu.
func (s *CartService) persist(ctx context.Context) {
	value, err := json.Marshal(s.items)
	if err != nil {
		log.Printf("Failed to serialize cart for slot %s: %v", s.slotKey, err)
		return
	}
	if err := s.storage.Set(ctx, s.slotKey, string(value)); err != nil {
		log.Printf("Failed to persist cart slot %s: %v", s.slotKey, err)
	}
}

// AddToCart merges a product into the cart: an existing entry for the same
// product ID gets its quantity incremented, otherwise a new entry is
// appended. A product without an ID is ignored, logged and not surfaced to
// the customer.
func (s *CartService) AddToCart(ctx context.Context, product models.ProductSnapshot, quantity int) {
	if product.ID == "" {
		log.Printf("Ignoring add-to-cart for product without an ID (%q)", product.Name)
		return
	}
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].Product.ID == product.ID {
			s.items[i].Quantity += quantity
			s.persist(ctx)
			return
		}
	}
	s.items = append(s.items, models.CartItem{Product: product, Quantity: quantity})
	s.persist(ctx)
}

// RemoveFromCart deletes the entry for the given product ID. Removing an
// absent product is a no-op.
func (s *CartService) RemoveFromCart(ctx context.Context, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(ctx, productID)
}

// removeLocked deletes and persists without taking the lock.
func (s *CartService) removeLocked(ctx context.Context, productID string) {
	for i := range s.items {
		if s.items[i].Product.ID == productID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.persist(ctx)
			return
		}
	}
}

// UpdateQuantity overwrites the entry's quantity unconditionally. A
// quantity of zero or less removes the entry. No clamping to stock or
// minimum order quantity happens here; that is the caller's job.
func (s *CartService) UpdateQuantity(ctx context.Context, productID string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.removeLocked(ctx, productID)
		return
	}
	for i := range s.items {
		if s.items[i].Product.ID == productID {
			s.items[i].Quantity = quantity
			s.persist(ctx)
			return
		}
	}
}

// ClearCart empties the collection. Called by the checkout flow only after
// a server-confirmed order creation.
func (s *CartService) ClearCart(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.persist(ctx)
}

// Items returns a copy of the current line items.
func (s *CartService) Items() []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]models.CartItem, len(s.items))
	copy(items, s.items)
	return items
}

// Total sums (wholesale ?? retail) * quantity over all entries.
func (s *CartService) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total float64
	for _, item := range s.items {
		total += item.Subtotal()
	}
	return total
}

// Count sums quantities across entries, not the number of distinct items.
func (s *CartService) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}
