package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/propertyflow/propertyflow/internal/model"
)

// Cache key prefixes and TTLs.
const (
	revenueKeyPrefix = "revenue:"

	// DefaultRevenueTTL is the TTL for cached revenue summaries when the
	// caller does not supply one.
	DefaultRevenueTTL = 5 * time.Minute
)

// Common cache errors.
var (
	ErrCacheMiss = errors.New("cache miss")
)

// revenueKey builds the cache key for a revenue summary. The tenant is
// part of the key, never a post-filter: entries computed for one tenant
// can never satisfy a lookup for another, even on colliding property IDs.
// The tenant is length-prefixed so an ID containing the delimiter cannot
// shift bytes into the property part and alias another pair.
func revenueKey(propertyID, tenantID string) string {
	return fmt.Sprintf("%s%d:%s:%s", revenueKeyPrefix, len(tenantID), tenantID, propertyID)
}

// GetRevenueSummary retrieves a cached revenue summary.
// Returns ErrCacheMiss if absent, expired, or unreadable.
func (c *Cache) GetRevenueSummary(ctx context.Context, propertyID, tenantID string) (*model.RevenueSummary, error) {
	key := revenueKey(propertyID, tenantID)

	result, err := c.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall failed: %w", err)
	}

	if len(result) == 0 {
		return nil, ErrCacheMiss
	}

	cached := &model.CachedRevenueSummary{
		Total:      result["total"],
		Currency:   result["currency"],
		Count:      result["count"],
		ComputedAt: result["computed_at"],
	}

	summary, ok := cached.ToSummary(propertyID, tenantID)
	if !ok {
		// Corrupted entry - drop it and treat as a miss.
		c.client.Del(ctx, key)
		return nil, ErrCacheMiss
	}

	return summary, nil
}

// SetRevenueSummary stores a revenue summary with a fresh TTL,
// replacing any stale entry for the same key.
func (c *Cache) SetRevenueSummary(ctx context.Context, summary *model.RevenueSummary, ttl time.Duration) error {
	key := revenueKey(summary.PropertyID, summary.TenantID)
	cached := summary.ToCached()

	if ttl <= 0 {
		ttl = DefaultRevenueTTL
	}

	fields := map[string]any{
		"total":       cached.Total,
		"currency":    cached.Currency,
		"count":       cached.Count,
		"computed_at": cached.ComputedAt,
	}

	pipe := c.client.Pipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, ttl)

	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to cache revenue summary: %w", err)
	}

	return nil
}

// DeleteRevenueSummary removes a cached summary, forcing the next read
// to recompute. Called on reservation writes for that property/tenant.
func (c *Cache) DeleteRevenueSummary(ctx context.Context, propertyID, tenantID string) error {
	key := revenueKey(propertyID, tenantID)

	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete revenue summary from cache: %w", err)
	}

	return nil
}
