package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Client wraps a pgx connection pool for reuse across repositories
type Client struct {
	pool *pgxpool.Pool
}

// Config holds Postgres connection configuration
type Config struct {
	DSN      string
	MaxConns int
	// SimpleProtocol is required behind transaction-mode poolers such as PgBouncer
	SimpleProtocol bool
}

// NewClient creates a pool and verifies it can reach the server
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres: dsn is required")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse dsn: %w", err)
	}

	maxConns := cfg.MaxConns
	if maxConns <= 0 {
		maxConns = 2
	}
	poolCfg.MaxConns = int32(maxConns)
	if cfg.SimpleProtocol {
		poolCfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: verify connectivity: %w", err)
	}

	return &Client{pool: pool}, nil
}

// Pool returns the underlying pool for repository use
func (c *Client) Pool() *pgxpool.Pool {
	return c.pool
}

// Close releases every pooled connection
func (c *Client) Close() {
	if c.pool != nil {
		c.pool.Close()
	}
}
