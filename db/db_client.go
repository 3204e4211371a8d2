// Package db owns the PostgreSQL connection pool and the embedded schema
// migrations. Queries live in internal/store/postgres.
package db

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/formcraft/formcraft-backend/config"
	"github.com/formcraft/formcraft-backend/logger"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DatabaseClient creates the pool with retries and hands it out thread-safely.
type DatabaseClient struct {
	pool       *pgxpool.Pool
	config     *pgxpool.Config
	mu         sync.RWMutex
	maxRetries int
	retryDelay time.Duration
}

// NewDatabaseClient returns a client for the given pool configuration. Call
// Connect before GetPool.
func NewDatabaseClient(cfg *pgxpool.Config) *DatabaseClient {
	return &DatabaseClient{
		config:     cfg,
		maxRetries: 5,
		retryDelay: time.Second,
	}
}

// PoolConfig builds a pgxpool configuration from application config.
func PoolConfig(cfg *config.DatabaseConfig) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	if cfg.MaxConnections > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConnections)
	}
	poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime()
	poolCfg.HealthCheckPeriod = 30 * time.Second
	return poolCfg, nil
}

// Connect opens the pool and pings it, backing off between attempts.
func (dc *DatabaseClient) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	if dc.pool != nil {
		return dc.pool, nil
	}
	if dc.config == nil {
		return nil, fmt.Errorf("database configuration not available")
	}

	log := logger.GetLogger()
	delay := dc.retryDelay
	var lastErr error
	for attempt := 1; attempt <= dc.maxRetries; attempt++ {
		pool, err := pgxpool.NewWithConfig(ctx, dc.config)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				dc.pool = pool
				log.Infow("Connected to database", "attempt", attempt)
				return pool, nil
			}
			pool.Close()
		}
		lastErr = err
		log.Warnw("Database connection attempt failed", "attempt", attempt, "error", err)

		if attempt == dc.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("database connect aborted: %w", ctx.Err())
		case <-time.After(delay):
		}
		delay = delay * 3 / 2
	}
	return nil, fmt.Errorf("failed to connect after %d attempts: %w", dc.maxRetries, lastErr)
}

// GetPool returns the connected pool, or nil before Connect succeeds.
func (dc *DatabaseClient) GetPool() *pgxpool.Pool {
	dc.mu.RLock()
	defer dc.mu.RUnlock()
	return dc.pool
}

// Close releases the pool.
func (dc *DatabaseClient) Close() {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	if dc.pool != nil {
		dc.pool.Close()
		dc.pool = nil
	}
}
