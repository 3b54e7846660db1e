package model

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// RevenueSummary is the aggregated reservation revenue for one
// (propertyID, tenantID) pair. Summaries for different tenants never
// share data even when property IDs collide.
type RevenueSummary struct {
	PropertyID       string          `json:"property_id"`
	TenantID         string          `json:"tenant_id"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	Currency         string          `json:"currency"`
	ReservationCount int64           `json:"reservation_count"`
	ComputedAt       time.Time       `json:"computed_at"`
}

// CachedRevenueSummary represents a summary stored in a Redis hash.
// Uses string types for Redis hash compatibility; the total is stored
// as its exact decimal string, never a float.
type CachedRevenueSummary struct {
	Total      string `redis:"total"`
	Currency   string `redis:"currency"`
	Count      string `redis:"count"`
	ComputedAt string `redis:"computed_at"` // Unix timestamp
}

// ToSummary converts a cached entry back to the domain model.
// Returns false if the stored total is not a valid decimal.
func (c *CachedRevenueSummary) ToSummary(propertyID, tenantID string) (*RevenueSummary, bool) {
	total, err := decimal.NewFromString(c.Total)
	if err != nil {
		return nil, false
	}

	count, err := strconv.ParseInt(c.Count, 10, 64)
	if err != nil || count < 0 {
		return nil, false
	}

	summary := &RevenueSummary{
		PropertyID:       propertyID,
		TenantID:         tenantID,
		TotalRevenue:     total,
		Currency:         c.Currency,
		ReservationCount: count,
	}

	if ts, err := strconv.ParseInt(c.ComputedAt, 10, 64); err == nil {
		summary.ComputedAt = time.Unix(ts, 0).UTC()
	}

	return summary, true
}

// ToCached converts the summary to its Redis hash representation.
func (s *RevenueSummary) ToCached() *CachedRevenueSummary {
	return &CachedRevenueSummary{
		Total:      s.TotalRevenue.String(),
		Currency:   s.Currency,
		Count:      strconv.FormatInt(s.ReservationCount, 10),
		ComputedAt: strconv.FormatInt(s.ComputedAt.Unix(), 10),
	}
}
