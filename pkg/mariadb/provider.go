// Package mariadb provides the relational store provider: a database/sql
// pool over the MySQL wire protocol, plus a line-oriented schema script
// loader.
package mariadb

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/stokehq/stoke/pkg/logging"
	"github.com/stokehq/stoke/pkg/provider"
	"github.com/stokehq/stoke/pkg/retry"
)

var _ provider.Provider[*sql.Conn] = (*Provider)(nil)

// Provider owns a database/sql pool for one MariaDB database. It implements
// provider.Provider[*sql.Conn].
type Provider struct {
	mu          sync.Mutex
	credentials Credentials
	retryCfg    *retry.Config
	logger      *zap.Logger

	db *sql.DB
}

// Option configures a Provider before Connect.
type Option func(*Provider)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Provider) { p.logger = logger }
}

// WithRetryConfig sets the backoff used for the connect-time ping.
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

// Connect opens the pool, applies its sizing and verifies connectivity.
// Calling Connect on a connected provider is a no-op.
func (p *Provider) Connect(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db != nil {
		return nil
	}

	dsn := p.credentials.DSN()
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("opening mariadb pool: %w", err)
	}

	db.SetMaxOpenConns(p.credentials.MaxPoolSize)
	db.SetMaxIdleConns(p.credentials.MinPoolSize)
	db.SetConnMaxIdleTime(maxConnIdleTime)
	db.SetConnMaxLifetime(maxConnLifetime)

	err = retry.Do(ctx, p.retryCfg, func() error {
		return db.PingContext(ctx)
	})
	if err != nil {
		if closeErr := db.Close(); closeErr != nil {
			p.logger.Warn("failed to close mariadb pool after ping failure",
				zap.String("error", logging.SanitizeError(closeErr)))
		}
		return fmt.Errorf("pinging mariadb at %s:%d: %w", p.credentials.Host, p.credentials.Port, err)
	}

	p.db = db
	p.logger.Info("mariadb connection established",
		zap.String("host", p.credentials.Host),
		zap.Int("port", p.credentials.Port),
		zap.String("database", p.credentials.Database),
		zap.Int("max_pool_size", p.credentials.MaxPoolSize),
	)
	return nil
}

// Disconnect closes the pool. Safe to call on a never-connected or
// already-closed provider.
func (p *Provider) Disconnect(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	if err != nil {
		return fmt.Errorf("closing mariadb pool: %w", err)
	}
	p.logger.Info("mariadb connection closed")
	return nil
}

// Conn borrows one connection from the pool. The caller returns it with
// Close.
func (p *Provider) Conn(ctx context.Context) (*sql.Conn, error) {
	p.mu.Lock()
	db := p.db
	p.mu.Unlock()
	if db == nil {
		return nil, fmt.Errorf("mariadb provider is not connected")
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("borrowing mariadb connection: %w", err)
	}
	return conn, nil
}

// DB returns the underlying pool, or nil while disconnected.
func (p *Provider) DB() *sql.DB {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.db
}
