package redisdb

import (
	"context"

	"github.com/stokehq/stoke/pkg/executor"
	"github.com/stokehq/stoke/pkg/pending"
)

// Operation is a blocking unit of work against one borrowed connection.
type Operation[T any] = executor.Operation[*Resource, T]

// AsyncOperation is a non-blocking unit of work against one borrowed
// connection.
type AsyncOperation[T any] = executor.AsyncOperation[*Resource, T]

// ExecuteSync runs op against a borrowed connection and returns its result.
func ExecuteSync[T any](ctx context.Context, pool executor.Pool[*Resource], op Operation[T]) (T, error) {
	return executor.ExecuteSync(ctx, pool, op)
}

// ExecuteAsync runs op against a borrowed connection without blocking the
// caller. The connection is released once op's pending result settles.
func ExecuteAsync[T any](ctx context.Context, pool executor.Pool[*Resource], op AsyncOperation[T]) *pending.Pending[T] {
	return executor.ExecuteAsync(ctx, pool, op)
}

// Tx is the queuing surface handed to transactional operations. All commands
// queue on the session's dedicated connection and execute, in submission
// order, at commit. Once the session concludes every method fails with
// executor.ErrSessionConcluded.
type Tx struct {
	sess *executor.Session[*Resource]
}

// ID identifies the underlying session.
func (t *Tx) ID() string { return t.sess.ID() }

// Queue buffers one arbitrary command.
func (t *Tx) Queue(ctx context.Context, args ...any) error {
	r, err := t.sess.Resource()
	if err != nil {
		return err
	}
	return r.queue(ctx, args...)
}

// Set queues a SET.
func (t *Tx) Set(ctx context.Context, key, value string) error {
	return t.Queue(ctx, "set", key, value)
}

// Get queues a GET; its reply appears in the commit result.
func (t *Tx) Get(ctx context.Context, key string) error {
	return t.Queue(ctx, "get", key)
}

// Del queues a DEL.
func (t *Tx) Del(ctx context.Context, keys ...string) error {
	args := make([]any, 0, len(keys)+1)
	args = append(args, "del")
	for _, k := range keys {
		args = append(args, k)
	}
	return t.Queue(ctx, args...)
}

// Incr queues an INCR.
func (t *Tx) Incr(ctx context.Context, key string) error {
	return t.Queue(ctx, "incr", key)
}

// Expire queues an EXPIRE with seconds granularity.
func (t *Tx) Expire(ctx context.Context, key string, seconds int64) error {
	return t.Queue(ctx, "expire", key, seconds)
}

// TxOperation queues commands inside one transaction.
type TxOperation func(ctx context.Context, tx *Tx) error

// AsyncTxOperation queues commands and may return a pending result that
// settles when its queuing work finishes.
type AsyncTxOperation func(ctx context.Context, tx *Tx) (*pending.Pending[pending.Void], error)

// ExecuteTransactionSync runs op inside MULTI/EXEC on one borrowed
// connection and returns the committed replies. DISCARD is issued if and
// only if the failure happened before EXEC.
func ExecuteTransactionSync(ctx context.Context, pool executor.Pool[*Resource], op TxOperation) (executor.CommitResult, error) {
	return executor.ExecuteTransactionSync(ctx, pool, func(ctx context.Context, sess *executor.Session[*Resource]) error {
		return op(ctx, &Tx{sess: sess})
	})
}

// ExecuteTransactionAsync is the non-blocking variant of
// ExecuteTransactionSync.
func ExecuteTransactionAsync(ctx context.Context, pool executor.Pool[*Resource], op AsyncTxOperation) *pending.Pending[executor.CommitResult] {
	return executor.ExecuteTransactionAsync(ctx, pool, func(ctx context.Context, sess *executor.Session[*Resource]) (*pending.Pending[pending.Void], error) {
		return op(ctx, &Tx{sess: sess})
	})
}
