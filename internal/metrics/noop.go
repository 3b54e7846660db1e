package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncTenantResolved is a no-op.
func (n *NoopRecorder) IncTenantResolved(source string) {}

// IncTenantFallback is a no-op.
func (n *NoopRecorder) IncTenantFallback() {}

// IncRevenueCacheHit is a no-op.
func (n *NoopRecorder) IncRevenueCacheHit() {}

// IncRevenueCacheMiss is a no-op.
func (n *NoopRecorder) IncRevenueCacheMiss() {}

// IncRevenueRecompute is a no-op.
func (n *NoopRecorder) IncRevenueRecompute() {}

// IncRevenueCacheInvalidated is a no-op.
func (n *NoopRecorder) IncRevenueCacheInvalidated() {}

// ObserveRevenueComputeDuration is a no-op.
func (n *NoopRecorder) ObserveRevenueComputeDuration(duration time.Duration) {}

// IncReservationCreated is a no-op.
func (n *NoopRecorder) IncReservationCreated() {}
