package db

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool creates a fresh connection pool from DATABASE_URL.
// Callers own the returned pool and must Close it.
func NewPool(ctx context.Context) (*pgxpool.Pool, error) {
	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to parse DATABASE_URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return pool, nil
}

var (
	defaultOnce sync.Once
	defaultPool *pgxpool.Pool
	defaultErr  error
)

// DefaultPool returns the process-wide shared pool, initializing it on the
// first call. Concurrent callers never double-initialize; later calls return
// the same handle (or the original initialization error).
func DefaultPool(ctx context.Context) (*pgxpool.Pool, error) {
	defaultOnce.Do(func() {
		defaultPool, defaultErr = NewPool(ctx)
	})
	return defaultPool, defaultErr
}
