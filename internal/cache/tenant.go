package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/propertyflow/propertyflow/internal/model"
)

const (
	// tenantCachePrefix is the Redis key prefix for resolved tenants.
	tenantCachePrefix = "tenant:user:"
	// tenantCacheTTL is the time-to-live for cached resolutions.
	tenantCacheTTL = 5 * time.Minute
)

// CachedTenantResolution represents a resolved tenant stored in Redis.
type CachedTenantResolution struct {
	TenantID string `json:"tenant_id"`
	Source   string `json:"source"`
}

// GetResolvedTenant retrieves a cached tenant resolution for a user.
// Returns empty values on a miss; a miss is not an error.
func (c *Cache) GetResolvedTenant(ctx context.Context, userID string) (string, model.TenantSource) {
	key := tenantCachePrefix + userID

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return "", ""
	}

	var cached CachedTenantResolution
	if err := json.Unmarshal(data, &cached); err != nil {
		// Corrupted cache entry - treat as miss
		return "", ""
	}

	return cached.TenantID, model.TenantSource(cached.Source)
}

// SetResolvedTenant caches a tenant resolution for a user. Only real
// resolutions should be cached; the default fallback is recomputed per
// request so it stays visible in logs and metrics.
func (c *Cache) SetResolvedTenant(ctx context.Context, userID, tenantID string, source model.TenantSource) error {
	key := tenantCachePrefix + userID

	data, err := json.Marshal(CachedTenantResolution{
		TenantID: tenantID,
		Source:   string(source),
	})
	if err != nil {
		return fmt.Errorf("marshal tenant resolution: %w", err)
	}

	return c.client.Set(ctx, key, data, tenantCacheTTL).Err()
}

// DeleteResolvedTenant removes a cached resolution.
// Used when a user's tenant assignment changes.
func (c *Cache) DeleteResolvedTenant(ctx context.Context, userID string) error {
	key := tenantCachePrefix + userID
	return c.client.Del(ctx, key).Err()
}
