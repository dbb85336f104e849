package executor

import (
	"context"

	"github.com/stokehq/stoke/pkg/pending"
)

// CommitResult carries the per-command replies produced by a committed
// transaction. Aborted is set when the store refused the commit without
// reporting an error (optimistic-lock style rejection).
type CommitResult struct {
	Replies []any
	Aborted bool
}

// TxResource is a resource that speaks a begin/queue/commit-or-abort
// protocol (MULTI/EXEC/DISCARD on the key-value side). Queued commands are
// buffered by the store and execute, in submission order, at Commit.
type TxResource interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) (CommitResult, error)
	Abort(ctx context.Context) error
}

// TxOperation queues commands on the session's resource. It must not issue
// commit or abort itself; the coordinator owns the protocol.
type TxOperation[R TxResource] func(ctx context.Context, sess *Session[R]) error

// AsyncTxOperation queues commands and may return a pending result that
// settles when its queuing work finishes. Returning nil means the queuing
// phase is already complete.
type AsyncTxOperation[R TxResource] func(ctx context.Context, sess *Session[R]) (*pending.Pending[pending.Void], error)

// transact drives the transaction protocol against one already-borrowed
// resource. Abort is attempted only when the failure happened before commit
// was issued; a commit failure means the store already concluded the attempt
// and a second conclusion command would be invalid. An abort failure is
// attached as the suppressed cause of the primary failure.
func transact[R TxResource](ctx context.Context, r R, queue func(context.Context, *Session[R]) error) (CommitResult, error) {
	sess := newSession(r)
	var res CommitResult
	committing := false

	err := func() error {
		if err := r.Begin(ctx); err != nil {
			return err
		}
		sess.transition(StateQueuing)
		if err := queue(ctx, sess); err != nil {
			return err
		}
		sess.transition(StateCommitting)
		committing = true
		var err error
		res, err = r.Commit(ctx)
		return err
	}()

	if err == nil {
		sess.transition(StateConcluded)
		return res, nil
	}

	txErr := &TransactionError{Err: err}
	if !committing {
		sess.transition(StateAborting)
		if abortErr := r.Abort(ctx); abortErr != nil {
			txErr.Suppressed = abortErr
		}
	}
	sess.transition(StateConcluded)
	return CommitResult{}, txErr
}

// ExecuteTransactionSync borrows a resource, runs op inside a transaction and
// returns the committed result set. Failures surface as *TransactionError;
// the resource is released after the session concludes, on every path.
func ExecuteTransactionSync[R TxResource](ctx context.Context, pool Pool[R], op TxOperation[R]) (CommitResult, error) {
	return WithResource(ctx, pool, func(ctx context.Context, r R) (CommitResult, error) {
		return transact(ctx, r, op)
	})
}

// ExecuteTransactionAsync runs the same protocol without blocking the caller.
// If op returns a pending result, commit waits for it to settle; a failure
// before commit triggers a corrective abort exactly as in the blocking
// variant. The resource is released after the whole chain finishes,
// regardless of which branch was taken. Acquisition failure short-circuits
// the chain: no protocol command is ever issued.
func ExecuteTransactionAsync[R TxResource](ctx context.Context, pool Pool[R], op AsyncTxOperation[R]) *pending.Pending[CommitResult] {
	out := pending.New[CommitResult]()
	go func() {
		r, err := pool.Borrow(ctx)
		if err != nil {
			out.Reject(&AcquisitionError{Err: err})
			return
		}

		res, err := transact(ctx, r, func(ctx context.Context, sess *Session[R]) error {
			p, err := op(ctx, sess)
			if err != nil {
				return err
			}
			if p == nil {
				return nil
			}
			_, err = p.Await(ctx)
			return err
		})

		release(pool, r)
		if err != nil {
			out.Reject(err)
			return
		}
		out.Resolve(res)
	}()
	return out
}
