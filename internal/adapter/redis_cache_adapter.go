package adapter

import (
	"context"
	"errors"
	"time"

	"wikiquiz/internal/domain"

	"github.com/redis/go-redis/v9"
)

// RedisCacheAdapter implements the domain.Cache port using go-redis.
type RedisCacheAdapter struct {
	client *redis.Client
}

// NewRedisCacheAdapter creates a new RedisCacheAdapter.
func NewRedisCacheAdapter(client *redis.Client) domain.Cache {
	return &RedisCacheAdapter{client: client}
}

// Get retrieves an item from the cache. Returns domain.ErrCacheMiss when
// the key does not exist.
func (a *RedisCacheAdapter) Get(ctx context.Context, key string) (string, error) {
	val, err := a.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrCacheMiss
		}
		return "", err
	}
	return val, nil
}

// Set adds an item to the cache with the given expiration.
func (a *RedisCacheAdapter) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	return a.client.Set(ctx, key, value, expiration).Err()
}

// Delete removes an item from the cache.
func (a *RedisCacheAdapter) Delete(ctx context.Context, key string) error {
	return a.client.Del(ctx, key).Err()
}

// Ping checks the health of the cache service.
func (a *RedisCacheAdapter) Ping(ctx context.Context) error {
	return a.client.Ping(ctx).Err()
}
