package repository

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/propertyflow/propertyflow/internal/model"
)

// CreateReservation inserts a new reservation.
func (r *Repository) CreateReservation(ctx context.Context, res *model.Reservation) error {
	query := `
		INSERT INTO reservations (id, property_id, tenant_id, guest_email, amount, currency, status, check_in, check_out, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		res.ID,
		res.PropertyID,
		res.TenantID,
		res.GuestEmail,
		res.Amount.String(),
		res.Currency,
		res.Status,
		res.CheckIn,
		res.CheckOut,
		res.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create reservation: %w", err)
	}

	return nil
}

// ListReservations returns all confirmed reservations for a
// (propertyID, tenantID) pair. Amounts are read as their exact numeric
// text representation and parsed into decimals; they never pass through
// binary floats.
func (r *Repository) ListReservations(ctx context.Context, propertyID, tenantID string) ([]*model.Reservation, error) {
	query := `
		SELECT id, property_id, tenant_id, guest_email, amount::text, currency, status, check_in, check_out, created_at
		FROM reservations
		WHERE property_id = $1 AND tenant_id = $2 AND status = 'confirmed'
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, propertyID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	defer rows.Close()

	var reservations []*model.Reservation
	for rows.Next() {
		var res model.Reservation
		var amount string

		err := rows.Scan(
			&res.ID,
			&res.PropertyID,
			&res.TenantID,
			&res.GuestEmail,
			&amount,
			&res.Currency,
			&res.Status,
			&res.CheckIn,
			&res.CheckOut,
			&res.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}

		res.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("failed to parse reservation amount %q: %w", amount, err)
		}

		reservations = append(reservations, &res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reservations: %w", err)
	}

	return reservations, nil
}
