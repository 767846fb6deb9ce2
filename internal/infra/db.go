package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"mockupgen/internal/sqlinline"
)

// NewDBPool initializes a pgx connection pool sized for the api and worker processes.
func NewDBPool(ctx context.Context, cfg *Config) (*pgxpool.Pool, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := cfg.RequireDatabase(); err != nil {
		return nil, err
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	// Each concurrent mockup run holds at most one connection at a time.
	maxConns := int32(cfg.WorkerConcurrency + 4)
	if maxConns < 5 {
		maxConns = 5
	}
	poolCfg.MaxConns = maxConns
	poolCfg.MinConns = 1
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// EnsureSchema creates the job and credential tables when missing.
func EnsureSchema(ctx context.Context, sql SQLExecutor) error {
	if _, err := sql.Exec(ctx, sqlinline.QEnsureSchema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
