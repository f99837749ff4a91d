package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// cacheOptions suit a connection that only backs the optional catalog
// cache: a slow or missing Redis must fall through to Postgres quickly.
func cacheOptions(addr, username, password string) *redis.Options {
	return &redis.Options{
		Addr:            addr,
		Username:        username,
		Password:        password,
		DB:              0,
		DialTimeout:     2 * time.Second,
		ReadTimeout:     500 * time.Millisecond,
		WriteTimeout:    500 * time.Millisecond,
		PoolTimeout:     time.Second,
		MaxRetries:      1,
		PoolSize:        4,
		MinIdleConns:    1,
		ConnMaxIdleTime: 5 * time.Minute,
	}
}

// NewRedisClient connects to the catalog cache and pings it once.
func NewRedisClient(ctx context.Context, addr, username, password string) (*redis.Client, error) {
	rdb := redis.NewClient(cacheOptions(addr, username, password))

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}

	return rdb, nil
}
