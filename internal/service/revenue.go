// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/propertyflow/propertyflow/internal/cache"
	"github.com/propertyflow/propertyflow/internal/metrics"
	"github.com/propertyflow/propertyflow/internal/model"
	"github.com/propertyflow/propertyflow/internal/repository"
)

// Service errors.
var (
	ErrPropertyNotFound  = errors.New("property not found")
	ErrCurrencyMismatch  = errors.New("reservations disagree on currency")
	ErrTimeout           = errors.New("reservation store timed out")
	ErrInvalidPropertyID = errors.New("property ID must not be empty")
	ErrInvalidTenantID   = errors.New("tenant ID must not be empty")
)

// ReservationStore abstracts the reservation store.
type ReservationStore interface {
	GetProperty(ctx context.Context, propertyID, tenantID string) (*model.Property, error)
	ListReservations(ctx context.Context, propertyID, tenantID string) ([]*model.Reservation, error)
	CreateReservation(ctx context.Context, res *model.Reservation) error
}

// SummaryCache abstracts cached revenue summary storage.
// The Redis cache implements it; tests use an in-memory fake.
type SummaryCache interface {
	GetRevenueSummary(ctx context.Context, propertyID, tenantID string) (*model.RevenueSummary, error)
	SetRevenueSummary(ctx context.Context, summary *model.RevenueSummary, ttl time.Duration) error
	DeleteRevenueSummary(ctx context.Context, propertyID, tenantID string) error
}

// RevenueService aggregates reservation revenue per (property, tenant),
// serving from cache when a fresh entry exists.
type RevenueService struct {
	store        ReservationStore
	cache        SummaryCache
	cacheTTL     time.Duration
	storeTimeout time.Duration
	flight       singleflight.Group
	logger       *slog.Logger
	metrics      metrics.Recorder
}

// NewRevenueService creates a new RevenueService.
func NewRevenueService(store ReservationStore, summaryCache SummaryCache, cacheTTL, storeTimeout time.Duration, logger *slog.Logger, recorder metrics.Recorder) *RevenueService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cacheTTL <= 0 {
		cacheTTL = cache.DefaultRevenueTTL
	}
	if storeTimeout <= 0 {
		storeTimeout = 3 * time.Second
	}
	return &RevenueService{
		store:        store,
		cache:        summaryCache,
		cacheTTL:     cacheTTL,
		storeTimeout: storeTimeout,
		logger:       logger,
		metrics:      recorder,
	}
}

// GetRevenueSummary returns the revenue summary for a (property, tenant)
// pair, from cache when valid, recomputing otherwise. Concurrent misses
// for the same key coalesce into a single recomputation; callers wait
// for its result rather than each hitting the store.
func (s *RevenueService) GetRevenueSummary(ctx context.Context, propertyID, tenantID string) (*model.RevenueSummary, error) {
	if propertyID == "" {
		return nil, ErrInvalidPropertyID
	}
	if tenantID == "" {
		return nil, ErrInvalidTenantID
	}

	cached, err := s.cache.GetRevenueSummary(ctx, propertyID, tenantID)
	if err == nil {
		s.metrics.IncRevenueCacheHit()
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		// Cache trouble is not fatal for reads; recompute instead.
		s.logger.Warn("revenue cache read failed",
			slog.String("property_id", propertyID),
			slog.String("tenant_id", tenantID),
			slog.String("error", err.Error()),
		)
	}
	s.metrics.IncRevenueCacheMiss()

	// Coalescing is per (tenant, property) pair, never across tenants;
	// the tenant is length-prefixed so an ID containing the delimiter
	// cannot share a flight with another pair. Recomputation runs
	// detached from the caller's cancellation so a cancelled request
	// still populates the cache for waiting and subsequent callers.
	key := fmt.Sprintf("%d:%s:%s", len(tenantID), tenantID, propertyID)
	v, err, _ := s.flight.Do(key, func() (any, error) {
		return s.recompute(context.WithoutCancel(ctx), propertyID, tenantID)
	})
	if err != nil {
		return nil, err
	}

	return v.(*model.RevenueSummary), nil
}

// InvalidateRevenueSummary drops the cached summary for a key, forcing
// the next read to recompute. Called after reservation writes.
func (s *RevenueService) InvalidateRevenueSummary(ctx context.Context, propertyID, tenantID string) error {
	if err := s.cache.DeleteRevenueSummary(ctx, propertyID, tenantID); err != nil {
		return fmt.Errorf("invalidate revenue summary: %w", err)
	}
	s.metrics.IncRevenueCacheInvalidated()
	return nil
}

// recompute aggregates reservations for the key and refreshes the cache.
func (s *RevenueService) recompute(ctx context.Context, propertyID, tenantID string) (*model.RevenueSummary, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveRevenueComputeDuration(time.Since(start))
	}()
	s.metrics.IncRevenueRecompute()

	property, err := s.getProperty(ctx, propertyID, tenantID)
	if err != nil {
		return nil, err
	}

	reservations, err := s.listReservations(ctx, propertyID, tenantID)
	if err != nil {
		return nil, err
	}

	// Exact decimal arithmetic: amounts are summed as decimals so
	// repeated additions carry no cumulative rounding error.
	total := decimal.Zero
	currency := property.Currency
	for i, res := range reservations {
		if i == 0 {
			currency = res.Currency
		} else if res.Currency != currency {
			return nil, fmt.Errorf("property %s: %q vs %q: %w", propertyID, currency, res.Currency, ErrCurrencyMismatch)
		}
		total = total.Add(res.Amount)
	}

	summary := &model.RevenueSummary{
		PropertyID:       propertyID,
		TenantID:         tenantID,
		TotalRevenue:     total,
		Currency:         currency,
		ReservationCount: int64(len(reservations)),
		ComputedAt:       time.Now().UTC(),
	}

	if err := s.cache.SetRevenueSummary(ctx, summary, s.cacheTTL); err != nil {
		// Serve the fresh result anyway; the next read recomputes.
		s.logger.Warn("revenue cache write failed",
			slog.String("property_id", propertyID),
			slog.String("tenant_id", tenantID),
			slog.String("error", err.Error()),
		)
	}

	return summary, nil
}

// getProperty reads the property under the store timeout.
func (s *RevenueService) getProperty(ctx context.Context, propertyID, tenantID string) (*model.Property, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	property, err := s.store.GetProperty(storeCtx, propertyID, tenantID)
	if err != nil {
		if errors.Is(err, repository.ErrPropertyNotFound) {
			return nil, fmt.Errorf("property %s for tenant %s: %w", propertyID, tenantID, ErrPropertyNotFound)
		}
		return nil, wrapStoreErr("get property", err)
	}

	return property, nil
}

// listReservations reads reservations under the store timeout.
func (s *RevenueService) listReservations(ctx context.Context, propertyID, tenantID string) ([]*model.Reservation, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	reservations, err := s.store.ListReservations(storeCtx, propertyID, tenantID)
	if err != nil {
		return nil, wrapStoreErr("list reservations", err)
	}

	return reservations, nil
}

// wrapStoreErr surfaces store deadline hits as ErrTimeout.
func wrapStoreErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, ErrTimeout)
	}
	return fmt.Errorf("%s: %w", op, err)
}
