package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReservationStatus represents the lifecycle state of a reservation.
type ReservationStatus string

const (
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
)

// Reservation represents a booking for a property. Amount is an exact
// decimal; monetary values never pass through binary floats.
type Reservation struct {
	ID         string            `json:"id"`
	PropertyID string            `json:"property_id"`
	TenantID   string            `json:"tenant_id"`
	GuestEmail string            `json:"guest_email"`
	Amount     decimal.Decimal   `json:"amount"`
	Currency   string            `json:"currency"`
	Status     ReservationStatus `json:"status"`
	CheckIn    time.Time         `json:"check_in"`
	CheckOut   time.Time         `json:"check_out"`
	CreatedAt  time.Time         `json:"created_at"`
}
