// Package repository implements the user, post and vote stores over
// PostgreSQL, plus the embedded schema migrations.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// connectTimeout bounds the initial ping when the pool is created.
const connectTimeout = 10 * time.Second

// PoolConfig sizes the connection pool. Zero fields keep pgxpool defaults.
type PoolConfig struct {
	MaxConns        int32
	MinConns        int32
	MaxConnIdleTime time.Duration
}

// Repository provides database access methods.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a Repository and verifies the database answers.
func New(ctx context.Context, databaseURL string, pc PoolConfig) (*Repository, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	if pc.MaxConns > 0 {
		config.MaxConns = pc.MaxConns
	}
	if pc.MinConns > 0 {
		config.MinConns = min(pc.MinConns, config.MaxConns)
	}
	if pc.MaxConnIdleTime > 0 {
		config.MaxConnIdleTime = pc.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{pool: pool}, nil
}

// Ping checks database connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close waits for acquired connections to be released and closes the pool.
func (r *Repository) Close() {
	r.pool.Close()
}
