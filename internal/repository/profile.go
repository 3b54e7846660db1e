package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/propertyflow/propertyflow/internal/model"
)

// Common errors for profile repository operations.
var (
	ErrProfileNotFound = errors.New("user profile not found")
)

// GetProfile retrieves a user profile by user ID.
func (r *Repository) GetProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	query := `
		SELECT id, email, COALESCE(tenant_id, ''), COALESCE(metadata, '{}'::jsonb), created_at, updated_at
		FROM user_profiles
		WHERE id = $1
	`

	var profile model.UserProfile
	var rawMetadata []byte
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&profile.ID,
		&profile.Email,
		&profile.TenantID,
		&rawMetadata,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	if err := json.Unmarshal(rawMetadata, &profile.Metadata); err != nil {
		return nil, fmt.Errorf("failed to decode profile metadata: %w", err)
	}

	return &profile, nil
}

// UpdateTenantMetadata persists a tenant ID onto a user profile in a
// single conditional UPDATE. The statement only matches when the stored
// value differs, so repeated writes of the same tenant are no-ops and
// concurrent identical writes are last-write-wins on the same value.
func (r *Repository) UpdateTenantMetadata(ctx context.Context, userID, tenantID string) error {
	query := `
		UPDATE user_profiles
		SET tenant_id = $2,
		    metadata = jsonb_set(COALESCE(metadata, '{}'::jsonb), '{tenant_id}', to_jsonb($2::text), true),
		    updated_at = now()
		WHERE id = $1
		  AND tenant_id IS DISTINCT FROM $2
	`

	tag, err := r.pool.Exec(ctx, query, userID, tenantID)
	if err != nil {
		return fmt.Errorf("failed to update tenant metadata: %w", err)
	}

	if tag.RowsAffected() > 0 {
		return nil
	}

	// Zero rows means either the value was already set (no-op) or the
	// profile does not exist. Only the latter is an error.
	var exists bool
	err = r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM user_profiles WHERE id = $1)`, userID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to verify profile existence: %w", err)
	}
	if !exists {
		return ErrProfileNotFound
	}

	return nil
}
