// Package repository provides PostgreSQL access to profiles, properties
// and reservations.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool sizing; revenue recomputation fans out short read queries, so a
// few spare idle connections are kept warm.
const (
	maxPoolConns      = 16
	minPoolConns      = 2
	connectTimeout    = 5 * time.Second
	healthCheckPeriod = 30 * time.Second
)

// Repository provides access to the reservation store.
type Repository struct {
	pool *pgxpool.Pool
}

// New connects a Repository to the database and verifies the connection.
func New(ctx context.Context, databaseURL string) (*Repository, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	cfg.MaxConns = maxPoolConns
	cfg.MinConns = minPoolConns
	cfg.ConnConfig.ConnectTimeout = connectTimeout
	cfg.HealthCheckPeriod = healthCheckPeriod

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Repository{pool: pool}, nil
}

// Ping checks database connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool.
func (r *Repository) Close() {
	r.pool.Close()
}

// Pool returns the underlying connection pool for test setup.
// Application code goes through Repository methods.
func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}
