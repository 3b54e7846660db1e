//go:build integration

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/propertyflow/propertyflow/internal/model"
	"github.com/propertyflow/propertyflow/internal/testutil"
)

// ============================================================================
// Revenue Cache Integration Tests
// ============================================================================

func TestIntegrationRevenueCache_RoundTrip(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	summary := newTestSummary("prop-1", "tenant-a", "1234.56", 3)
	if err := c.SetRevenueSummary(ctx, summary, time.Minute); err != nil {
		t.Fatalf("SetRevenueSummary failed: %v", err)
	}

	got, err := c.GetRevenueSummary(ctx, "prop-1", "tenant-a")
	if err != nil {
		t.Fatalf("GetRevenueSummary failed: %v", err)
	}

	if !got.TotalRevenue.Equal(summary.TotalRevenue) {
		t.Errorf("total = %s, want %s", got.TotalRevenue, summary.TotalRevenue)
	}
	if got.ReservationCount != 3 {
		t.Errorf("count = %d, want 3", got.ReservationCount)
	}
	if got.Currency != "USD" {
		t.Errorf("currency = %q, want USD", got.Currency)
	}
	if !got.ComputedAt.Equal(summary.ComputedAt) {
		t.Errorf("computed_at = %v, want %v", got.ComputedAt, summary.ComputedAt)
	}
}

func TestIntegrationRevenueCache_MissWhenAbsent(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	_, err := c.GetRevenueSummary(ctx, "prop-unknown", "tenant-a")
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("err = %v, want ErrCacheMiss", err)
	}
}

func TestIntegrationRevenueCache_TenantScoped(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	summary := newTestSummary("prop-1", "tenant-a", "100.00", 1)
	if err := c.SetRevenueSummary(ctx, summary, time.Minute); err != nil {
		t.Fatalf("SetRevenueSummary failed: %v", err)
	}

	// The same property ID under another tenant is a miss, never a hit.
	_, err := c.GetRevenueSummary(ctx, "prop-1", "tenant-b")
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("err = %v, want ErrCacheMiss", err)
	}
}

func TestIntegrationRevenueCache_DeleteForcesMiss(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	summary := newTestSummary("prop-1", "tenant-a", "100.00", 1)
	if err := c.SetRevenueSummary(ctx, summary, time.Minute); err != nil {
		t.Fatalf("SetRevenueSummary failed: %v", err)
	}

	if err := c.DeleteRevenueSummary(ctx, "prop-1", "tenant-a"); err != nil {
		t.Fatalf("DeleteRevenueSummary failed: %v", err)
	}

	_, err := c.GetRevenueSummary(ctx, "prop-1", "tenant-a")
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("err = %v, want ErrCacheMiss", err)
	}
}

func TestIntegrationRevenueCache_TTLApplied(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	summary := newTestSummary("prop-1", "tenant-a", "100.00", 1)
	if err := c.SetRevenueSummary(ctx, summary, 2*time.Minute); err != nil {
		t.Fatalf("SetRevenueSummary failed: %v", err)
	}

	ttl, err := c.Client().TTL(ctx, revenueKey("prop-1", "tenant-a")).Result()
	if err != nil {
		t.Fatalf("TTL failed: %v", err)
	}
	if ttl <= 0 || ttl > 2*time.Minute {
		t.Errorf("ttl = %v, want within (0, 2m]", ttl)
	}
}

func TestIntegrationRevenueCache_CorruptedEntrySelfHeals(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	key := revenueKey("prop-1", "tenant-a")
	if err := c.Client().HSet(ctx, key, "total", "not-a-decimal", "count", "x").Err(); err != nil {
		t.Fatalf("plant corrupted entry: %v", err)
	}

	_, err := c.GetRevenueSummary(ctx, "prop-1", "tenant-a")
	if !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("err = %v, want ErrCacheMiss", err)
	}

	// The unreadable entry is dropped, not left to poison later reads.
	exists, err := c.Client().Exists(ctx, key).Result()
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists != 0 {
		t.Error("corrupted entry should be deleted after the failed read")
	}
}

// ============================================================================
// Resolved Tenant Cache Integration Tests
// ============================================================================

func TestIntegrationTenantCache_RoundTrip(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	if err := c.SetResolvedTenant(ctx, "user-1", "tenant-b", model.TenantSourceLegacy); err != nil {
		t.Fatalf("SetResolvedTenant failed: %v", err)
	}

	tenantID, source := c.GetResolvedTenant(ctx, "user-1")
	if tenantID != "tenant-b" {
		t.Errorf("tenant = %q, want tenant-b", tenantID)
	}
	if source != model.TenantSourceLegacy {
		t.Errorf("source = %q, want %q", source, model.TenantSourceLegacy)
	}

	if err := c.DeleteResolvedTenant(ctx, "user-1"); err != nil {
		t.Fatalf("DeleteResolvedTenant failed: %v", err)
	}
	if tenantID, _ := c.GetResolvedTenant(ctx, "user-1"); tenantID != "" {
		t.Errorf("tenant after delete = %q, want empty", tenantID)
	}
}

// ============================================================================
// Tenant Rate Limit Integration Tests
// ============================================================================

func TestIntegrationCheckTenantRateLimit_BurstExhaustion(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	// Slow refill so the bucket cannot recover tokens mid-test.
	const (
		ratePerMinute = 6
		burst         = 3
	)

	for i := 0; i < burst; i++ {
		result, err := c.CheckTenantRateLimit(ctx, "tenant-a", ratePerMinute, burst)
		if err != nil {
			t.Fatalf("check %d failed: %v", i, err)
		}
		if !result.Allowed {
			t.Fatalf("check %d denied, want allowed within burst", i)
		}
	}

	result, err := c.CheckTenantRateLimit(ctx, "tenant-a", ratePerMinute, burst)
	if err != nil {
		t.Fatalf("check past burst failed: %v", err)
	}
	if result.Allowed {
		t.Error("check past burst allowed, want denied")
	}
	if result.RetryAfter <= 0 {
		t.Errorf("retry after = %v, want positive", result.RetryAfter)
	}

	// Another tenant has its own bucket.
	other, err := c.CheckTenantRateLimit(ctx, "tenant-b", ratePerMinute, burst)
	if err != nil {
		t.Fatalf("other tenant check failed: %v", err)
	}
	if !other.Allowed {
		t.Error("other tenant denied, want allowed")
	}
}

// ============================================================================
// Test Environment Setup
// ============================================================================

func newCacheTestEnv(t *testing.T) (context.Context, *Cache) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	redisURL := testutil.RequireEnv(t, "REDIS_URL")

	c, err := New(ctx, redisURL)
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	t.Cleanup(func() {
		_ = c.Close()
	})

	if err := testutil.FlushRedis(ctx, c.Client()); err != nil {
		t.Fatalf("flush redis: %v", err)
	}

	return ctx, c
}

func newTestSummary(propertyID, tenantID, total string, count int64) *model.RevenueSummary {
	return &model.RevenueSummary{
		PropertyID:       propertyID,
		TenantID:         tenantID,
		TotalRevenue:     decimal.RequireFromString(total),
		Currency:         "USD",
		ReservationCount: count,
		ComputedAt:       time.Now().UTC().Truncate(time.Second),
	}
}
