package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/propertyflow/propertyflow/internal/auth"
	"github.com/propertyflow/propertyflow/internal/handler/dto"
	"github.com/propertyflow/propertyflow/internal/service"
)

// DashboardHandler handles HTTP requests for dashboard summaries.
type DashboardHandler struct {
	svc    *service.DashboardService
	logger *slog.Logger
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(svc *service.DashboardService, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		svc:    svc,
		logger: logger,
	}
}

// Summary handles GET /api/v1/dashboard/summary?property_id=...
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	propertyID := r.URL.Query().Get("property_id")
	if propertyID == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_PROPERTY_ID", "property_id is required")
		return
	}

	principal := auth.MustPrincipalFromContext(r.Context())

	summary, err := h.svc.GetSummary(r.Context(), principal, propertyID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToDashboardSummaryResponse(summary))
}

// handleServiceError maps service errors to HTTP responses.
func (h *DashboardHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrPropertyNotFound):
		h.writeError(w, http.StatusNotFound, "PROPERTY_NOT_FOUND", "Property not found")
	case errors.Is(err, service.ErrCurrencyMismatch):
		h.writeError(w, http.StatusConflict, "CURRENCY_MISMATCH", "Reservations for this property carry mixed currencies")
	case errors.Is(err, service.ErrTimeout):
		h.writeError(w, http.StatusGatewayTimeout, "UPSTREAM_TIMEOUT", "Reservation store timed out")
	case errors.Is(err, service.ErrInvalidPropertyID), errors.Is(err, service.ErrInvalidTenantID):
		h.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request parameters")
	default:
		h.logger.Error("internal_error", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// writeError writes an error response.
func (h *DashboardHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
