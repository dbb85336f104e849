// Package executor runs caller-supplied operations against resources borrowed
// from a pool, in blocking and non-blocking variants, and layers an optional
// begin/queue/commit-or-abort transaction protocol on top. Every entry point
// guarantees that a borrowed resource is released back to its pool exactly
// once, on every exit path.
package executor

import "context"

// Pool is the borrow/return/discard surface the executors consume. Adapters
// decide what a resource is (a dedicated driver connection, usually) and how
// it is pooled; implementations must be safe for concurrent use.
type Pool[R any] interface {
	// Borrow hands out a resource for exclusive use by one operation.
	Borrow(ctx context.Context) (R, error)

	// Return gives a healthy resource back to the pool.
	Return(r R)

	// Discard removes a broken resource from the pool and destroys it.
	Discard(r R)
}

// usable is an optional probe on resource types that can tell whether they
// survived the last operation. Resources that report false are discarded
// instead of returned.
type usable interface {
	Usable() bool
}

// release hands r back to the pool exactly once. It must not fail into the
// caller's result path; a pool that cannot take the resource back handles
// that internally.
func release[R any](pool Pool[R], r R) {
	if u, ok := any(r).(usable); ok && !u.Usable() {
		pool.Discard(r)
		return
	}
	pool.Return(r)
}

// WithResource borrows one resource for the duration of fn and releases it
// when fn returns, whether fn succeeded or not. Acquisition failures are
// reported as *AcquisitionError and fn is not invoked.
func WithResource[R, T any](ctx context.Context, pool Pool[R], fn func(context.Context, R) (T, error)) (T, error) {
	r, err := pool.Borrow(ctx)
	if err != nil {
		var zero T
		return zero, &AcquisitionError{Err: err}
	}
	defer release(pool, r)
	return fn(ctx, r)
}
