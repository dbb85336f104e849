// Package redisdb provides the key-value store provider: lifecycle over a
// go-redis client, a borrow/return/discard pool of dedicated connections,
// typed string helpers and MULTI/EXEC/DISCARD transactions driven by the
// generic executor.
package redisdb

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/stokehq/stoke/pkg/executor"
	"github.com/stokehq/stoke/pkg/provider"
	"github.com/stokehq/stoke/pkg/retry"
)

var _ provider.Provider[*Resource] = (*Provider)(nil)

// Provider owns the Redis client, its connection pool and a dedicated
// pub/sub connection. It implements provider.Provider[*Resource].
type Provider struct {
	mu          sync.Mutex
	credentials Credentials
	opts        *redis.Options
	retryCfg    *retry.Config
	logger      *zap.Logger

	client *redis.Client
	pool   *connPool
	pubsub *redis.PubSub
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

// WithOptions overrides the driver options derived from the credentials.
// Must be applied before Connect.
func WithOptions(opts *redis.Options) Option {
	return func(p *Provider) { p.opts = opts }
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
	p.pool = newConnPool(p.logger)
	return p
}

// Connect builds the client, verifies connectivity and opens the pool and
// the pub/sub connection. Calling Connect on a connected provider is a no-op.
func (p *Provider) Connect(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		return nil
	}

	opt := p.opts
	if opt == nil {
		opt = p.credentials.options()
	}

	client := redis.NewClient(opt)
	err := retry.Do(ctx, p.retryCfg, func() error {
		return client.Ping(ctx).Err()
	})
	if err != nil {
		if closeErr := client.Close(); closeErr != nil {
			p.logger.Warn("failed to close redis client after ping failure", zap.Error(closeErr))
		}
		return fmt.Errorf("pinging redis at %s: %w", opt.Addr, err)
	}

	p.client = client
	p.pool.attach(client)
	p.pubsub = client.Subscribe(ctx)

	p.logger.Info("redis connection established",
		zap.String("addr", opt.Addr),
		zap.Int("db", opt.DB),
		zap.Int("pool_size", opt.PoolSize),
	)
	return nil
}

// Disconnect closes the pub/sub connection, the pool and the client. Safe to
// call on a never-connected or already-closed provider.
func (p *Provider) Disconnect(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client == nil {
		return nil
	}

	if p.pubsub != nil {
		if err := p.pubsub.Close(); err != nil {
			p.logger.Warn("failed to close pub/sub connection", zap.Error(err))
		}
		p.pubsub = nil
	}

	p.pool.close()
	err := p.client.Close()
	p.client = nil
	if err != nil {
		return fmt.Errorf("closing redis client: %w", err)
	}
	p.logger.Info("redis connection closed")
	return nil
}

// Conn borrows one dedicated connection from the pool. Callers give it back
// through Pool().Return (or Discard); the executors do this automatically.
func (p *Provider) Conn(ctx context.Context) (*Resource, error) {
	return p.pool.Borrow(ctx)
}

// Pool exposes the borrow/return/discard surface consumed by the executors.
// Valid for the provider's whole lifetime; borrowing fails while the
// provider is disconnected.
func (p *Provider) Pool() executor.Pool[*Resource] {
	return p.pool
}

// Client returns the underlying driver client, or nil while disconnected.
func (p *Provider) Client() *redis.Client {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.client
}

// Publish sends a message on a pub/sub channel.
func (p *Provider) Publish(ctx context.Context, channel string, message any) error {
	p.mu.Lock()
	client := p.client
	p.mu.Unlock()
	if client == nil {
		return executor.ErrPoolClosed
	}
	return client.Publish(ctx, channel, message).Err()
}

// Subscribe adds channels to the provider's pub/sub connection and waits for
// the server to confirm each subscription. Without the confirmation a message
// published right after subscribing can be lost; the driver's own Subscribe
// returns as soon as the command is written.
func (p *Provider) Subscribe(ctx context.Context, channels ...string) error {
	p.mu.Lock()
	ps := p.pubsub
	p.mu.Unlock()
	if ps == nil {
		return executor.ErrPoolClosed
	}

	if err := ps.Subscribe(ctx, channels...); err != nil {
		return fmt.Errorf("subscribing to channels: %w", err)
	}

	confirmed := 0
	for confirmed < len(channels) {
		reply, err := ps.Receive(ctx)
		if err != nil {
			return fmt.Errorf("awaiting subscription confirmation: %w", err)
		}
		if _, ok := reply.(*redis.Subscription); ok {
			confirmed++
		}
	}
	return nil
}

// PubSub returns the provider's dedicated pub/sub connection, or nil while
// disconnected. Add channels through Subscribe, which waits for server
// confirmation; the connection is closed by Disconnect.
func (p *Provider) PubSub() *redis.PubSub {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pubsub
}
