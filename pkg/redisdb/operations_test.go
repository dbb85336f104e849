package redisdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stokehq/stoke/pkg/executor"
	"github.com/stokehq/stoke/pkg/pending"
)

func TestExecuteSync_RoundTrip(t *testing.T) {
	p, _ := newTestProvider(t)
	ctx := context.Background()

	_, err := ExecuteSync(ctx, p.Pool(), func(ctx context.Context, r *Resource) (any, error) {
		return r.Do(ctx, "set", "k", "v")
	})
	require.NoError(t, err)

	v, err := ExecuteSync(ctx, p.Pool(), func(ctx context.Context, r *Resource) (any, error) {
		return r.Do(ctx, "get", "k")
	})
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}

func TestExecuteSync_ServerErrorIsWrapped(t *testing.T) {
	p, _ := newTestProvider(t)

	_, err := ExecuteSync(context.Background(), p.Pool(), func(ctx context.Context, r *Resource) (any, error) {
		return r.Do(ctx, "not-a-command")
	})
	require.Error(t, err)

	var opErr *executor.OperationError
	assert.ErrorAs(t, err, &opErr)
}

func TestExecuteAsync_RoundTrip(t *testing.T) {
	p, srv := newTestProvider(t)
	ctx := context.Background()
	require.NoError(t, srv.Set("k", "async"))

	out := ExecuteAsync(ctx, p.Pool(), func(ctx context.Context, r *Resource) (*pending.Pending[any], error) {
		return pending.Go(func() (any, error) {
			return r.Do(ctx, "get", "k")
		}), nil
	})

	awaitCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	v, err := out.Await(awaitCtx)
	require.NoError(t, err)
	assert.Equal(t, "async", v)
}

func TestTransactionSync_CommitAppliesAllCommands(t *testing.T) {
	p, srv := newTestProvider(t)
	ctx := context.Background()

	res, err := ExecuteTransactionSync(ctx, p.Pool(), func(ctx context.Context, tx *Tx) error {
		if err := tx.Set(ctx, "a", "1"); err != nil {
			return err
		}
		if err := tx.Incr(ctx, "counter"); err != nil {
			return err
		}
		return tx.Get(ctx, "a")
	})
	require.NoError(t, err)
	require.Len(t, res.Replies, 3)
	assert.False(t, res.Aborted)
	assert.Equal(t, "OK", res.Replies[0])
	assert.Equal(t, int64(1), res.Replies[1])
	assert.Equal(t, "1", res.Replies[2])

	got, getErr := srv.Get("a")
	require.NoError(t, getErr)
	assert.Equal(t, "1", got)
}

func TestTransactionSync_QueueFailureDiscards(t *testing.T) {
	p, srv := newTestProvider(t)
	ctx := context.Background()

	_, err := ExecuteTransactionSync(ctx, p.Pool(), func(ctx context.Context, tx *Tx) error {
		if err := tx.Set(ctx, "a", "1"); err != nil {
			return err
		}
		// Unknown command: the store rejects it at queuing time.
		return tx.Queue(ctx, "not-a-command", "x")
	})
	require.Error(t, err)

	var txErr *executor.TransactionError
	require.ErrorAs(t, err, &txErr)
	assert.NoError(t, txErr.Suppressed, "the discard itself succeeds")

	assert.False(t, srv.Exists("a"), "queued commands must not execute after a discard")

	// The pooled connection is clean again after DISCARD.
	_, err = ExecuteSync(ctx, p.Pool(), func(ctx context.Context, r *Resource) (any, error) {
		return r.Do(ctx, "set", "b", "2")
	})
	require.NoError(t, err)
}

func TestTransactionSync_QueueAfterConclusionFails(t *testing.T) {
	p, _ := newTestProvider(t)
	ctx := context.Background()
	var escaped *Tx

	_, err := ExecuteTransactionSync(ctx, p.Pool(), func(ctx context.Context, tx *Tx) error {
		escaped = tx
		return tx.Set(ctx, "a", "1")
	})
	require.NoError(t, err)

	require.NotNil(t, escaped)
	qerr := escaped.Set(ctx, "b", "2")
	assert.ErrorIs(t, qerr, executor.ErrSessionConcluded)
}

func TestTransactionAsync_Commit(t *testing.T) {
	p, srv := newTestProvider(t)
	ctx := context.Background()

	out := ExecuteTransactionAsync(ctx, p.Pool(), func(ctx context.Context, tx *Tx) (*pending.Pending[pending.Void], error) {
		if err := tx.Set(ctx, "x", "42"); err != nil {
			return nil, err
		}
		return nil, tx.Expire(ctx, "x", 60)
	})

	awaitCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	res, err := out.Await(awaitCtx)
	require.NoError(t, err)
	assert.Len(t, res.Replies, 2)

	got, getErr := srv.Get("x")
	require.NoError(t, getErr)
	assert.Equal(t, "42", got)
	assert.Greater(t, srv.TTL("x"), time.Duration(0))
}

func TestTransactionAsync_AcquisitionFailure(t *testing.T) {
	p, _ := newTestProvider(t)
	ctx := context.Background()
	require.NoError(t, p.Disconnect(ctx))
	invoked := false

	out := ExecuteTransactionAsync(ctx, p.Pool(), func(ctx context.Context, tx *Tx) (*pending.Pending[pending.Void], error) {
		invoked = true
		return nil, nil
	})

	awaitCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	_, err := out.Await(awaitCtx)

	var acqErr *executor.AcquisitionError
	require.ErrorAs(t, err, &acqErr)
	assert.False(t, invoked)
}
