// Package cache provides Redis-backed caching for revenue summaries,
// tenant resolutions and rate limit state.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client tuning. Reads on the dashboard path must fail fast: a slow
// cache is served around, not waited on.
const (
	poolSize        = 12
	minIdleConns    = 2
	dialTimeout     = 2 * time.Second
	readTimeout     = 500 * time.Millisecond
	writeTimeout    = 500 * time.Millisecond
	connMaxIdleTime = 5 * time.Minute
)

// Cache wraps a Redis client.
type Cache struct {
	client *redis.Client
}

// New connects a Cache to Redis and verifies the connection.
func New(ctx context.Context, redisURL string) (*Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse Redis URL: %w", err)
	}

	opt.PoolSize = poolSize
	opt.MinIdleConns = minIdleConns
	opt.DialTimeout = dialTimeout
	opt.ReadTimeout = readTimeout
	opt.WriteTimeout = writeTimeout
	opt.ConnMaxIdleTime = connMaxIdleTime

	client := redis.NewClient(opt)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping Redis: %w", err)
	}

	return &Cache{client: client}, nil
}

// Ping checks Redis connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Client returns the underlying Redis client for test setup.
// Application code goes through Cache methods.
func (c *Cache) Client() *redis.Client {
	return c.client
}
