// Package dto defines request and response payloads for the HTTP API.
package dto

import (
	"github.com/propertyflow/propertyflow/internal/model"
)

// ErrorResponse is the standard error payload.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// DashboardSummaryResponse is the dashboard summary payload.
// TotalRevenue is serialized as an exact decimal string, never as a
// floating-point JSON number.
type DashboardSummaryResponse struct {
	PropertyID       string `json:"property_id"`
	TotalRevenue     string `json:"total_revenue"`
	Currency         string `json:"currency"`
	ReservationCount int64  `json:"reservation_count"`
}

// ToDashboardSummaryResponse maps a revenue summary to its API shape.
// The tenant ID is deliberately not exposed.
func ToDashboardSummaryResponse(s *model.RevenueSummary) DashboardSummaryResponse {
	return DashboardSummaryResponse{
		PropertyID:       s.PropertyID,
		TotalRevenue:     s.TotalRevenue.String(),
		Currency:         s.Currency,
		ReservationCount: s.ReservationCount,
	}
}
