// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Tenant resolution metrics.
	// source is one of "claims", "profile", "legacy_mapping", "default".
	IncTenantResolved(source string)
	// IncTenantFallback counts requests served under the default tenant
	// because the principal carried no resolved tenant.
	IncTenantFallback()

	// Revenue cache metrics
	IncRevenueCacheHit()
	IncRevenueCacheMiss()
	IncRevenueRecompute()
	IncRevenueCacheInvalidated()
	ObserveRevenueComputeDuration(duration time.Duration)

	// Reservation metrics
	IncReservationCreated()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
