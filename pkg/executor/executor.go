package executor

import (
	"context"

	"github.com/stokehq/stoke/pkg/pending"
)

// Operation is a blocking unit of work run against one borrowed resource.
type Operation[R, T any] func(ctx context.Context, r R) (T, error)

// AsyncOperation is a non-blocking unit of work. It may fail immediately by
// returning an error, return nil to signal completion with no value, or
// return a pending result that settles later.
type AsyncOperation[R, T any] func(ctx context.Context, r R) (*pending.Pending[T], error)

// ExecuteSync borrows a resource, runs op against it and returns its result.
// Failures from op or the driver are wrapped as *OperationError unless they
// already belong to the executor's error taxonomy. The resource is released
// on every exit path.
func ExecuteSync[R, T any](ctx context.Context, pool Pool[R], op Operation[R, T]) (T, error) {
	v, err := WithResource(ctx, pool, op)
	if err != nil && !inTaxonomy(err) {
		return v, &OperationError{Err: err}
	}
	return v, err
}

// ExecuteAsync runs op against a borrowed resource without blocking the
// caller. Acquisition happens on a separate goroutine; if it fails, the
// returned pending fails with *AcquisitionError and op is never invoked.
// If op fails immediately its cause is wrapped; if op returns nil the result
// settles at once with the zero value. Otherwise the resource is released
// only when op's pending result settles, and that result's outcome is
// propagated to the caller unchanged.
func ExecuteAsync[R, T any](ctx context.Context, pool Pool[R], op AsyncOperation[R, T]) *pending.Pending[T] {
	out := pending.New[T]()
	go func() {
		r, err := pool.Borrow(ctx)
		if err != nil {
			out.Reject(&AcquisitionError{Err: err})
			return
		}

		p, err := op(ctx, r)
		if err != nil {
			release(pool, r)
			if !inTaxonomy(err) {
				err = &OperationError{Err: err}
			}
			out.Reject(err)
			return
		}
		if p == nil {
			release(pool, r)
			var zero T
			out.Resolve(zero)
			return
		}

		p.OnSettled(func(v T, err error) {
			release(pool, r)
			if err != nil {
				out.Reject(err)
				return
			}
			out.Resolve(v)
		})
	}()
	return out
}
