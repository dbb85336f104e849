package redisdb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/stokehq/stoke/pkg/executor"
)

// Resource is one dedicated Redis connection borrowed from the provider's
// pool. It is owned by exactly one in-flight operation at a time and speaks
// the MULTI/EXEC/DISCARD protocol for the transaction coordinator.
type Resource struct {
	conn   *redis.Conn
	broken bool
}

// Do sends an arbitrary command and returns its reply.
func (r *Resource) Do(ctx context.Context, args ...any) (any, error) {
	cmd := redis.NewCmd(ctx, args...)
	_ = r.conn.Process(ctx, cmd)
	v, err := cmd.Result()
	r.observe(err)
	return v, err
}

// observe flags the connection as broken on transport-level failures.
// Server reply errors (including redis.Nil) leave the connection usable.
func (r *Resource) observe(err error) {
	if err == nil || errors.Is(err, redis.Nil) {
		return
	}
	var replyErr redis.Error
	if errors.As(err, &replyErr) {
		return
	}
	r.broken = true
}

// Usable reports whether the connection survived its last operation. The
// pool discards resources that report false instead of returning them.
func (r *Resource) Usable() bool { return !r.broken }

// Begin issues MULTI, opening the queuing phase.
func (r *Resource) Begin(ctx context.Context) error {
	_, err := r.Do(ctx, "multi")
	if err != nil {
		return fmt.Errorf("multi: %w", err)
	}
	return nil
}

// Commit issues EXEC and returns the per-command replies. A nil EXEC reply
// means the store refused the transaction without an error; that surfaces as
// an aborted CommitResult, not a failure.
func (r *Resource) Commit(ctx context.Context) (executor.CommitResult, error) {
	v, err := r.Do(ctx, "exec")
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return executor.CommitResult{Aborted: true}, nil
		}
		return executor.CommitResult{}, fmt.Errorf("exec: %w", err)
	}
	replies, _ := v.([]any)
	return executor.CommitResult{Replies: replies}, nil
}

// Abort issues DISCARD, dropping all queued commands.
func (r *Resource) Abort(ctx context.Context) error {
	_, err := r.Do(ctx, "discard")
	if err != nil {
		return fmt.Errorf("discard: %w", err)
	}
	return nil
}

// queue sends one command during the queuing phase and verifies the store
// buffered it.
func (r *Resource) queue(ctx context.Context, args ...any) error {
	v, err := r.Do(ctx, args...)
	if err != nil {
		return err
	}
	if s, ok := v.(string); !ok || !strings.EqualFold(s, "QUEUED") {
		return fmt.Errorf("unexpected reply while queuing: %v", v)
	}
	return nil
}

// connPool adapts go-redis dedicated connections to the executor's
// borrow/return/discard surface. go-redis owns the physical pooling
// (sizing, idle and lifetime expiry); this adapter adds a ping-on-borrow
// health check and logging of release failures.
type connPool struct {
	mu     sync.Mutex
	client *redis.Client
	closed bool
	logger *zap.Logger
}

func newConnPool(logger *zap.Logger) *connPool {
	return &connPool{closed: true, logger: logger}
}

// attach points the pool at a connected client and opens it for borrowing.
func (p *connPool) attach(client *redis.Client) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.client = client
	p.closed = false
}

func (p *connPool) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.client = nil
	p.closed = true
}

// Borrow hands out a dedicated connection, validated with a ping so that a
// dead server surfaces as an acquisition failure rather than a mid-operation
// one.
func (p *connPool) Borrow(ctx context.Context) (*Resource, error) {
	p.mu.Lock()
	client := p.client
	closed := p.closed
	p.mu.Unlock()

	if closed || client == nil {
		return nil, executor.ErrPoolClosed
	}

	conn := client.Conn()
	if err := conn.Ping(ctx).Err(); err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			p.logger.Warn("failed to close unhealthy redis connection", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("validating redis connection: %w", err)
	}
	return &Resource{conn: conn}, nil
}

// Return gives the dedicated connection back to the driver pool. Broken
// resources are discarded instead.
func (p *connPool) Return(r *Resource) {
	if r == nil {
		return
	}
	if !r.Usable() {
		p.Discard(r)
		return
	}
	if err := r.conn.Close(); err != nil {
		p.logger.Warn("failed to return redis connection to pool", zap.Error(err))
	}
}

// Discard destroys a broken connection. The driver notices the dead socket
// on close and drops it from its pool rather than recycling it.
func (p *connPool) Discard(r *Resource) {
	if r == nil {
		return
	}
	p.logger.Debug("discarding broken redis connection")
	if err := r.conn.Close(); err != nil {
		p.logger.Warn("failed to discard redis connection", zap.Error(err))
	}
}
