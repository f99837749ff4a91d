package redisclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// JSONCache keeps one JSON document under a fixed key with a TTL.
type JSONCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewJSONCache(client *redis.Client, key string, ttl time.Duration) *JSONCache {
	return &JSONCache{
		client: client,
		key:    key,
		ttl:    ttl,
	}
}

// Load decodes the cached document into dst. A missing key is a miss, not an error.
func (c *JSONCache) Load(ctx context.Context, dst any) (bool, error) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s: %w", c.key, err)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		// A corrupt entry is dropped so the next read repopulates it.
		_ = c.client.Del(ctx, c.key).Err()
		return false, fmt.Errorf("decode %s: %w", c.key, err)
	}
	return true, nil
}

func (c *JSONCache) Store(ctx context.Context, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.key, err)
	}
	if err := c.client.Set(ctx, c.key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", c.key, err)
	}
	return nil
}

func (c *JSONCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("del %s: %w", c.key, err)
	}
	return nil
}
