package service

import (
	"context"
	"log/slog"

	"github.com/propertyflow/propertyflow/internal/metrics"
	"github.com/propertyflow/propertyflow/internal/model"
)

// DashboardService produces tenant-scoped dashboard summaries.
type DashboardService struct {
	revenue       *RevenueService
	defaultTenant string
	logger        *slog.Logger
	metrics       metrics.Recorder
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(revenue *RevenueService, defaultTenant string, logger *slog.Logger, recorder metrics.Recorder) *DashboardService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		revenue:       revenue,
		defaultTenant: defaultTenant,
		logger:        logger,
		metrics:       recorder,
	}
}

// GetSummary returns the revenue summary for a property as seen by the
// given principal. A principal without a tenant is served under the
// configured default tenant, but never silently: the fallback is logged
// and counted so it stays distinguishable from a genuine resolution.
func (s *DashboardService) GetSummary(ctx context.Context, principal *model.Principal, propertyID string) (*model.RevenueSummary, error) {
	tenantID := principal.TenantID
	if tenantID == "" || principal.TenantSource == model.TenantSourceDefault {
		s.logger.Warn("dashboard request served under default tenant",
			slog.String("user_id", principal.UserID),
			slog.String("property_id", propertyID),
		)
		s.metrics.IncTenantFallback()
		if tenantID == "" {
			tenantID = s.defaultTenant
		}
	}

	return s.revenue.GetRevenueSummary(ctx, propertyID, tenantID)
}
