package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/propertyflow/propertyflow/internal/auth"
	"github.com/propertyflow/propertyflow/internal/handler/dto"
	"github.com/propertyflow/propertyflow/internal/service"
)

// ReservationHandler handles HTTP requests for reservations.
type ReservationHandler struct {
	svc    *service.ReservationService
	logger *slog.Logger
}

// NewReservationHandler creates a new ReservationHandler.
func NewReservationHandler(svc *service.ReservationService, logger *slog.Logger) *ReservationHandler {
	return &ReservationHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /api/v1/reservations.
// The reservation is always written under the principal's tenant;
// the tenant can never be chosen by the request body.
func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be a decimal string")
		return
	}

	principal := auth.MustPrincipalFromContext(r.Context())

	input := service.CreateReservationInput{
		PropertyID: req.PropertyID,
		TenantID:   principal.TenantID,
		GuestEmail: req.GuestEmail,
		Amount:     amount,
		Currency:   req.Currency,
		CheckIn:    req.CheckIn,
		CheckOut:   req.CheckOut,
	}

	reservation, err := h.svc.CreateReservation(r.Context(), input)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("reservation_created",
		"reservation_id", reservation.ID,
		"property_id", reservation.PropertyID,
		"tenant_id", reservation.TenantID,
	)

	writeJSON(w, http.StatusCreated, dto.ToReservationResponse(reservation))
}

// handleServiceError maps service errors to HTTP responses.
func (h *ReservationHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrPropertyNotFound):
		h.writeError(w, http.StatusNotFound, "PROPERTY_NOT_FOUND", "Property not found")
	case errors.Is(err, service.ErrInvalidAmount):
		h.writeError(w, http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be a positive decimal")
	case errors.Is(err, service.ErrInvalidCurrency):
		h.writeError(w, http.StatusBadRequest, "INVALID_CURRENCY", "Currency must be a 3-letter ISO code")
	case errors.Is(err, service.ErrInvalidStay):
		h.writeError(w, http.StatusUnprocessableEntity, "INVALID_STAY", "check_out must be after check_in")
	case errors.Is(err, service.ErrInvalidPropertyID):
		h.writeError(w, http.StatusBadRequest, "MISSING_PROPERTY_ID", "property_id is required")
	case errors.Is(err, service.ErrTimeout):
		h.writeError(w, http.StatusGatewayTimeout, "UPSTREAM_TIMEOUT", "Reservation store timed out")
	default:
		h.logger.Error("internal_error", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// writeError writes an error response.
func (h *ReservationHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
