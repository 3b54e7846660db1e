package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/propertyflow/propertyflow/internal/model"
)

// Common errors for property repository operations.
var (
	ErrPropertyNotFound = errors.New("property not found")
)

// GetProperty retrieves a property scoped to a tenant. Property IDs are
// not globally unique; the tenant is always part of the lookup so one
// tenant can never observe another tenant's properties.
func (r *Repository) GetProperty(ctx context.Context, propertyID, tenantID string) (*model.Property, error) {
	query := `
		SELECT id, tenant_id, name, currency, created_at
		FROM properties
		WHERE id = $1 AND tenant_id = $2
	`

	var property model.Property
	err := r.pool.QueryRow(ctx, query, propertyID, tenantID).Scan(
		&property.ID,
		&property.TenantID,
		&property.Name,
		&property.Currency,
		&property.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPropertyNotFound
		}
		return nil, fmt.Errorf("failed to get property: %w", err)
	}

	return &property, nil
}
