package dto

import (
	"time"

	"github.com/propertyflow/propertyflow/internal/model"
)

// CreateReservationRequest is the payload for creating a reservation.
// Amount is a decimal string so exact values survive transport.
type CreateReservationRequest struct {
	PropertyID string    `json:"property_id"`
	GuestEmail string    `json:"guest_email"`
	Amount     string    `json:"amount"`
	Currency   string    `json:"currency"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
}

// ReservationResponse is the reservation payload returned on creation.
type ReservationResponse struct {
	ID         string    `json:"id"`
	PropertyID string    `json:"property_id"`
	GuestEmail string    `json:"guest_email"`
	Amount     string    `json:"amount"`
	Currency   string    `json:"currency"`
	Status     string    `json:"status"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
	CreatedAt  time.Time `json:"created_at"`
}

// ToReservationResponse maps a reservation to its API shape.
func ToReservationResponse(r *model.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:         r.ID,
		PropertyID: r.PropertyID,
		GuestEmail: r.GuestEmail,
		Amount:     r.Amount.String(),
		Currency:   r.Currency,
		Status:     string(r.Status),
		CheckIn:    r.CheckIn,
		CheckOut:   r.CheckOut,
		CreatedAt:  r.CreatedAt,
	}
}
