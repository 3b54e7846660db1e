package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/propertyflow/propertyflow/internal/handler/dto"
	"github.com/propertyflow/propertyflow/internal/service"
)

// AdminHandler handles operator-only endpoints. Routes using it must
// sit behind the admin key middleware.
type AdminHandler struct {
	revenue *service.RevenueService
	logger  *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(revenue *service.RevenueService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		revenue: revenue,
		logger:  logger,
	}
}

type invalidateCacheRequest struct {
	PropertyID string `json:"property_id"`
	TenantID   string `json:"tenant_id"`
}

// InvalidateCache handles POST /api/v1/admin/cache/invalidate.
// It drops the cached revenue summary for an explicit (tenant, property)
// pair so the next dashboard read recomputes from the store.
func (h *AdminHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	var req invalidateCacheRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if req.PropertyID == "" || req.TenantID == "" {
		h.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "property_id and tenant_id are required")
		return
	}

	if err := h.revenue.InvalidateRevenueSummary(r.Context(), req.PropertyID, req.TenantID); err != nil {
		h.logger.Error("cache invalidation failed",
			"property_id", req.PropertyID,
			"tenant_id", req.TenantID,
			"error", err,
		)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Cache invalidation failed")
		return
	}

	h.logger.Info("revenue cache invalidated",
		"property_id", req.PropertyID,
		"tenant_id", req.TenantID,
	)

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "invalidated",
	})
}

// writeError writes an error response.
func (h *AdminHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
