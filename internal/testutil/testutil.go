// Package testutil provides shared helpers for integration tests.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/propertyflow/propertyflow/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 420421

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetCoreSchema drops and recreates the application schema for tests.
func ResetCoreSchema(ctx context.Context, pool *pgxpool.Pool) error {
	root, err := ProjectRoot()
	if err != nil {
		return err
	}

	downPath := filepath.Join(root, "migrations", "000001_core.down.sql")
	upPath := filepath.Join(root, "migrations", "000001_core.up.sql")

	downSQL, err := os.ReadFile(downPath)
	if err != nil {
		return fmt.Errorf("read down migration: %w", err)
	}
	if _, err := pool.Exec(ctx, string(downSQL)); err != nil {
		return fmt.Errorf("apply down migration: %w", err)
	}

	upSQL, err := os.ReadFile(upPath)
	if err != nil {
		return fmt.Errorf("read up migration: %w", err)
	}
	if _, err := pool.Exec(ctx, string(upSQL)); err != nil {
		return fmt.Errorf("apply up migration: %w", err)
	}

	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestProfile creates a user profile with sensible defaults.
func NewTestProfile(t testing.TB, userID, email string) *model.UserProfile {
	t.Helper()
	now := time.Now().UTC()
	return &model.UserProfile{
		ID:        userID,
		Email:     email,
		Metadata:  map[string]any{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewTestProperty creates a property with sensible defaults.
func NewTestProperty(t testing.TB, propertyID, tenantID string) *model.Property {
	t.Helper()
	return &model.Property{
		ID:        propertyID,
		TenantID:  tenantID,
		Name:      "Test Property " + propertyID,
		Currency:  "USD",
		CreatedAt: time.Now().UTC(),
	}
}

// NewTestReservation creates a confirmed reservation with sensible defaults.
func NewTestReservation(t testing.TB, propertyID, tenantID, amount string) *model.Reservation {
	t.Helper()
	amt, err := decimal.NewFromString(amount)
	if err != nil {
		t.Fatalf("invalid test amount %q: %v", amount, err)
	}
	now := time.Now().UTC()
	return &model.Reservation{
		ID:         UniqueID("res"),
		PropertyID: propertyID,
		TenantID:   tenantID,
		GuestEmail: "guest@example.com",
		Amount:     amt,
		Currency:   "USD",
		Status:     model.ReservationStatusConfirmed,
		CheckIn:    now.AddDate(0, 0, 7),
		CheckOut:   now.AddDate(0, 0, 10),
		CreatedAt:  now,
	}
}

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// SeedProfile inserts a user profile row for test arrangement. An empty
// TenantID is stored as NULL, matching profiles created before tenant
// assignment.
func SeedProfile(ctx context.Context, pool *pgxpool.Pool, profile *model.UserProfile) error {
	meta, err := json.Marshal(profile.Metadata)
	if err != nil {
		return fmt.Errorf("marshal profile metadata: %w", err)
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO user_profiles (id, email, tenant_id, metadata, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6)
	`, profile.ID, profile.Email, profile.TenantID, meta, profile.CreatedAt, profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("seed profile: %w", err)
	}
	return nil
}

// SeedProperty inserts a property row for test arrangement.
func SeedProperty(ctx context.Context, pool *pgxpool.Pool, property *model.Property) error {
	_, err := pool.Exec(ctx, `
		INSERT INTO properties (id, tenant_id, name, currency, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, property.ID, property.TenantID, property.Name, property.Currency, property.CreatedAt)
	if err != nil {
		return fmt.Errorf("seed property: %w", err)
	}
	return nil
}
