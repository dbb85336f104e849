// Package postgres provides the PostgreSQL relational store provider backed
// by a pgxpool connection pool, with migration support.
package postgres

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/stokehq/stoke/pkg/logging"
	"github.com/stokehq/stoke/pkg/provider"
	"github.com/stokehq/stoke/pkg/retry"
)

var _ provider.Provider[*pgxpool.Conn] = (*Provider)(nil)

// Provider owns a pgxpool for one PostgreSQL database. It implements
// provider.Provider[*pgxpool.Conn].
type Provider struct {
	mu          sync.Mutex
	credentials Credentials
	retryCfg    *retry.Config
	logger      *zap.Logger

	pool *pgxpool.Pool
}

// Option configures a Provider before Connect.
type Option func(*Provider)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Provider) { p.logger = logger }
}

// WithRetryConfig sets the backoff used for pool construction and the
// connect-time ping.
func WithRetryConfig(cfg *retry.Config) Option {
	return func(p *Provider) { p.retryCfg = cfg }
}

// NewProvider creates a disconnected provider for the given credentials.
func NewProvider(credentials Credentials, opts ...Option) *Provider {
	p := &Provider{
		credentials: credentials.withDefaults(),
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Connect builds the pool and verifies connectivity. Calling Connect on a
// connected provider is a no-op.
func (p *Provider) Connect(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pool != nil {
		return nil
	}

	poolConfig, err := pgxpool.ParseConfig(p.credentials.URL())
	if err != nil {
		return fmt.Errorf("parsing postgres URL: %w", err)
	}
	poolConfig.MaxConns = p.credentials.MaxPoolSize
	poolConfig.MinConns = p.credentials.MinPoolSize
	poolConfig.MaxConnLifetime = maxConnLifetime
	poolConfig.MaxConnIdleTime = maxConnIdleTime

	pool, err := retry.DoWithResult(ctx, p.retryCfg, func() (*pgxpool.Pool, error) {
		return pgxpool.NewWithConfig(ctx, poolConfig)
	})
	if err != nil {
		return fmt.Errorf("creating postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		p.logger.Error("postgres ping failed", zap.String("error", logging.SanitizeError(err)))
		return fmt.Errorf("pinging postgres at %s:%d: %w", p.credentials.Host, p.credentials.Port, err)
	}

	p.pool = pool
	p.logger.Info("postgres connection established",
		zap.String("host", p.credentials.Host),
		zap.Int("port", p.credentials.Port),
		zap.String("database", p.credentials.Database),
		zap.Int32("max_pool_size", p.credentials.MaxPoolSize),
	)
	return nil
}

// Disconnect closes the pool. Safe to call on a never-connected or
// already-closed provider.
func (p *Provider) Disconnect(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pool == nil {
		return nil
	}
	p.pool.Close()
	p.pool = nil
	p.logger.Info("postgres connection closed")
	return nil
}

// Conn borrows one connection from the pool. The caller returns it with
// Release.
func (p *Provider) Conn(ctx context.Context) (*pgxpool.Conn, error) {
	p.mu.Lock()
	pool := p.pool
	p.mu.Unlock()
	if pool == nil {
		return nil, fmt.Errorf("postgres provider is not connected")
	}
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("borrowing postgres connection: %w", err)
	}
	return conn, nil
}

// Pool returns the underlying pool, or nil while disconnected.
func (p *Provider) Pool() *pgxpool.Pool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pool
}
