package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	"github.com/propertyflow/propertyflow/internal/metrics"
	"github.com/propertyflow/propertyflow/internal/model"
	"github.com/propertyflow/propertyflow/internal/repository"
)

// Reservation validation errors.
var (
	ErrInvalidAmount   = errors.New("amount must be a positive decimal")
	ErrInvalidCurrency = errors.New("currency must be a 3-letter ISO code")
	ErrInvalidStay     = errors.New("check_out must be after check_in")
)

// Currency validation regex: 3 uppercase letters.
var currencyRegex = regexp.MustCompile(`^[A-Z]{3}$`)

// ReservationService handles reservation writes and keeps the revenue
// cache consistent with them.
type ReservationService struct {
	store        ReservationStore
	revenue      *RevenueService
	storeTimeout time.Duration
	logger       *slog.Logger
	metrics      metrics.Recorder
}

// NewReservationService creates a new ReservationService.
func NewReservationService(store ReservationStore, revenue *RevenueService, storeTimeout time.Duration, logger *slog.Logger, recorder metrics.Recorder) *ReservationService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if storeTimeout <= 0 {
		storeTimeout = 3 * time.Second
	}
	return &ReservationService{
		store:        store,
		revenue:      revenue,
		storeTimeout: storeTimeout,
		logger:       logger,
		metrics:      recorder,
	}
}

// CreateReservationInput defines input for creating a reservation.
type CreateReservationInput struct {
	PropertyID string
	TenantID   string
	GuestEmail string
	Amount     decimal.Decimal
	Currency   string
	CheckIn    time.Time
	CheckOut   time.Time
}

// CreateReservation records a reservation for the tenant's property and
// invalidates the matching revenue summary so the next dashboard read
// reflects it.
func (s *ReservationService) CreateReservation(ctx context.Context, input CreateReservationInput) (*model.Reservation, error) {
	if input.PropertyID == "" {
		return nil, ErrInvalidPropertyID
	}
	if input.TenantID == "" {
		return nil, ErrInvalidTenantID
	}
	if !input.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if !currencyRegex.MatchString(input.Currency) {
		return nil, ErrInvalidCurrency
	}
	if !input.CheckOut.After(input.CheckIn) {
		return nil, ErrInvalidStay
	}

	// The property must exist for this tenant before anything is written.
	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	_, err := s.store.GetProperty(storeCtx, input.PropertyID, input.TenantID)
	cancel()
	if err != nil {
		if errors.Is(err, repository.ErrPropertyNotFound) {
			return nil, fmt.Errorf("property %s for tenant %s: %w", input.PropertyID, input.TenantID, ErrPropertyNotFound)
		}
		return nil, wrapStoreErr("get property", err)
	}

	reservation := &model.Reservation{
		ID:         ulid.Make().String(),
		PropertyID: input.PropertyID,
		TenantID:   input.TenantID,
		GuestEmail: input.GuestEmail,
		Amount:     input.Amount,
		Currency:   input.Currency,
		Status:     model.ReservationStatusConfirmed,
		CheckIn:    input.CheckIn,
		CheckOut:   input.CheckOut,
		CreatedAt:  time.Now().UTC(),
	}

	storeCtx, cancel = context.WithTimeout(ctx, s.storeTimeout)
	err = s.store.CreateReservation(storeCtx, reservation)
	cancel()
	if err != nil {
		return nil, wrapStoreErr("create reservation", err)
	}

	s.metrics.IncReservationCreated()

	// Stale totals self-heal via TTL expiry if the invalidation fails.
	if err := s.revenue.InvalidateRevenueSummary(ctx, input.PropertyID, input.TenantID); err != nil {
		s.logger.Warn("revenue cache invalidation failed",
			slog.String("property_id", input.PropertyID),
			slog.String("tenant_id", input.TenantID),
			slog.String("error", err.Error()),
		)
	}

	return reservation, nil
}
