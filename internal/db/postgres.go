package db

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	defaultMaxConns = 8
	defaultMinConns = 1
)

// PoolConfig tunes the shared pool. Zero fields keep the defaults.
type PoolConfig struct {
	ApplicationName string
	MaxConns        int32
	MinConns        int32
	// StatementTimeout is sent as the session statement_timeout; 0 leaves
	// the server default.
	StatementTimeout time.Duration
}

// ConnectPostgres opens the shared pool handed to every repository.
func ConnectPostgres(ctx context.Context, dsn string, pc PoolConfig) (*pgxpool.Pool, error) {
	cfg, err := poolConfig(dsn, pc)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return pool, nil
}

// poolConfig parses dsn and applies pc. An application_name already given
// by the DSN or PGAPPNAME is kept.
func poolConfig(dsn string, pc PoolConfig) (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	maxConns, minConns := pc.MaxConns, pc.MinConns
	if maxConns <= 0 {
		maxConns = defaultMaxConns
	}
	if minConns <= 0 {
		minConns = defaultMinConns
	}
	if minConns > maxConns {
		return nil, fmt.Errorf("postgres pool: min conns %d exceeds max conns %d", minConns, maxConns)
	}
	if _, set := cfg.ConnConfig.RuntimeParams["application_name"]; !set && pc.ApplicationName != "" {
		cfg.ConnConfig.RuntimeParams["application_name"] = pc.ApplicationName
	}
	if pc.StatementTimeout > 0 {
		cfg.ConnConfig.RuntimeParams["statement_timeout"] = strconv.FormatInt(pc.StatementTimeout.Milliseconds(), 10)
	}

	cfg.MaxConns = maxConns
	cfg.MinConns = minConns
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnLifetimeJitter = time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.HealthCheckPeriod = time.Minute

	return cfg, nil
}
