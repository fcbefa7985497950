package repositories

import "context"

// StateStorage defines the interface for the durable key-value slots that
// hold string-serialized client state (the cart slot in particular).
type StateStorage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
