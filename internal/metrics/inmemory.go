package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	TenantResolvedBySource    map[string]uint64
	TenantFallbacks           uint64
	RevenueCacheHits          uint64
	RevenueCacheMisses        uint64
	RevenueRecomputes         uint64
	RevenueCacheInvalidations uint64
	RevenueComputeCount       uint64
	RevenueComputeTotalNs     int64
	ReservationsCreated       uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	mu                        sync.Mutex
	tenantResolvedBySource    map[string]uint64
	tenantFallbacks           uint64
	revenueCacheHits          uint64
	revenueCacheMisses        uint64
	revenueRecomputes         uint64
	revenueCacheInvalidations uint64
	revenueComputeCount       uint64
	revenueComputeTotalNs     int64
	reservationsCreated       uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		tenantResolvedBySource: make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	bySource := make(map[string]uint64, len(m.tenantResolvedBySource))
	for k, v := range m.tenantResolvedBySource {
		bySource[k] = v
	}
	m.mu.Unlock()

	return Snapshot{
		TenantResolvedBySource:    bySource,
		TenantFallbacks:           atomic.LoadUint64(&m.tenantFallbacks),
		RevenueCacheHits:          atomic.LoadUint64(&m.revenueCacheHits),
		RevenueCacheMisses:        atomic.LoadUint64(&m.revenueCacheMisses),
		RevenueRecomputes:         atomic.LoadUint64(&m.revenueRecomputes),
		RevenueCacheInvalidations: atomic.LoadUint64(&m.revenueCacheInvalidations),
		RevenueComputeCount:       atomic.LoadUint64(&m.revenueComputeCount),
		RevenueComputeTotalNs:     atomic.LoadInt64(&m.revenueComputeTotalNs),
		ReservationsCreated:       atomic.LoadUint64(&m.reservationsCreated),
	}
}

// IncTenantResolved increments the per-source resolution counter.
func (m *InMemoryRecorder) IncTenantResolved(source string) {
	m.mu.Lock()
	m.tenantResolvedBySource[source]++
	m.mu.Unlock()
}

// IncTenantFallback increments the default-tenant fallback counter.
func (m *InMemoryRecorder) IncTenantFallback() {
	atomic.AddUint64(&m.tenantFallbacks, 1)
}

// IncRevenueCacheHit increments the cache hit counter.
func (m *InMemoryRecorder) IncRevenueCacheHit() {
	atomic.AddUint64(&m.revenueCacheHits, 1)
}

// IncRevenueCacheMiss increments the cache miss counter.
func (m *InMemoryRecorder) IncRevenueCacheMiss() {
	atomic.AddUint64(&m.revenueCacheMisses, 1)
}

// IncRevenueRecompute increments the aggregation counter.
func (m *InMemoryRecorder) IncRevenueRecompute() {
	atomic.AddUint64(&m.revenueRecomputes, 1)
}

// IncRevenueCacheInvalidated increments the invalidation counter.
func (m *InMemoryRecorder) IncRevenueCacheInvalidated() {
	atomic.AddUint64(&m.revenueCacheInvalidations, 1)
}

// ObserveRevenueComputeDuration records an aggregation duration.
func (m *InMemoryRecorder) ObserveRevenueComputeDuration(duration time.Duration) {
	atomic.AddUint64(&m.revenueComputeCount, 1)
	atomic.AddInt64(&m.revenueComputeTotalNs, duration.Nanoseconds())
}

// IncReservationCreated increments the reservation counter.
func (m *InMemoryRecorder) IncReservationCreated() {
	atomic.AddUint64(&m.reservationsCreated, 1)
}
