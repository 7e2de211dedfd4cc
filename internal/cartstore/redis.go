package cartstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisMirror keeps cart blobs in Redis, for deployments where the cart
// should survive a process restart on another node. Carts are mirrors of
// shopper intent, not orders, so no TTL discipline beyond Redis defaults
// is applied.
type RedisMirror struct {
	client *redis.Client
}

func NewRedisMirror(client *redis.Client) *RedisMirror {
	return &RedisMirror{client: client}
}

func (m *RedisMirror) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := m.client.Get(ctx, mirrorKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMirrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return data, nil
}

func (m *RedisMirror) Set(ctx context.Context, key string, data []byte) error {
	if err := m.client.Set(ctx, mirrorKey(key), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func mirrorKey(key string) string {
	return fmt.Sprintf("cart:%s", key)
}
