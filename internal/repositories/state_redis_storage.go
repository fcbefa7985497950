package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStateStorage is a Redis implementation of StateStorage. Slots are
// stored without expiry; the cart slot must survive until the owner clears it.
type RedisStateStorage struct {
	client *redis.Client
}

// NewRedisStateStorage creates a new instance of RedisStateStorage.
func NewRedisStateStorage(client *redis.Client) *RedisStateStorage {
	return &RedisStateStorage{
		client: client,
	}
}

// Get retrieves the value stored under key.
func (s *RedisStateStorage) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s failed: %w", key, err)
	}
	return value, true, nil
}

// Set writes value under key, overwriting any existing slot.
func (s *RedisStateStorage) Set(ctx context.Context, key string, value string) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s failed: %w", key, err)
	}
	return nil
}

// Delete removes the slot under key. Deleting an absent slot is not an error.
func (s *RedisStateStorage) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete %s failed: %w", key, err)
	}
	return nil
}
