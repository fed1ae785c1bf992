package db

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"

	"mnemo/internal/config"
	"mnemo/internal/logging"
)

const (
	minConns       = 2
	maxConns       = 20
	acquireTimeout = 10 * time.Second
)

// Manager owns the process-wide connection pool. The pool is created lazily
// under a mutex and health-checked on reuse instead of carrying
// connection-reset logic.
type Manager struct {
	cfg    *config.Config
	logger logging.Logger

	mu   sync.Mutex
	pool *pgxpool.Pool
}

// NewManager creates a pool manager. No connection is made until Pool or
// WaitForPool is called.
func NewManager(cfg *config.Config, logger logging.Logger) *Manager {
	return &Manager{cfg: cfg, logger: logging.OrNop(logger)}
}

// Pool returns a live pool, creating it on first use. A pool that fails the
// health check is discarded and rebuilt.
func (m *Manager) Pool(ctx context.Context) (*pgxpool.Pool, error) {
	if err := m.cfg.ValidateDB(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pool != nil && m.isAlive(ctx, m.pool) {
		return m.pool, nil
	}
	if m.pool != nil {
		m.logger.Warn("DB pool failed health check, rebuilding")
		m.pool.Close()
		m.pool = nil
	}

	poolCfg, err := pgxpool.ParseConfig(m.cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	poolCfg.MinConns = minConns
	poolCfg.MaxConns = maxConns
	poolCfg.ConnConfig.ConnectTimeout = acquireTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create database pool: %w", err)
	}
	if !m.isAlive(ctx, pool) {
		pool.Close()
		return nil, fmt.Errorf("new database pool failed health check")
	}

	m.logger.Info("New DB pool established (min=%d max=%d)", minConns, maxConns)
	m.pool = pool
	return m.pool, nil
}

// WaitForPool retries pool creation with exponential backoff and jitter:
// 5 attempts, 1s initial, x2 growth, 30s cap, 10% randomization.
func (m *Manager) WaitForPool(ctx context.Context) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = time.Second
	policy.Multiplier = 2
	policy.MaxInterval = 30 * time.Second
	policy.RandomizationFactor = 0.1
	policy.MaxElapsedTime = 0

	attempt := 0
	operation := func() error {
		attempt++
		p, err := m.Pool(ctx)
		if err != nil {
			m.logger.Warn("DB pool attempt %d failed: %v", attempt, err)
			return err
		}
		pool = p
		return nil
	}

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, 4), ctx))
	if err != nil {
		return nil, fmt.Errorf("DB pool creation failed after retries: %w", err)
	}
	return pool, nil
}

// Close shuts down the pool if one exists.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pool != nil {
		m.pool.Close()
		m.pool = nil
		m.logger.Info("DB pool closed")
	}
}

func (m *Manager) isAlive(ctx context.Context, pool *pgxpool.Pool) bool {
	checkCtx, cancel := context.WithTimeout(ctx, acquireTimeout)
	defer cancel()
	if _, err := pool.Exec(checkCtx, "SELECT 1"); err != nil {
		m.logger.Warn("Pool health check failed: %v", err)
		return false
	}
	return true
}
