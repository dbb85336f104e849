// Package pending provides a minimal future: a value that settles exactly
// once with either a result or an error, with continuations that run after
// settlement. It backs the non-blocking executors, where resource release has
// to be deferred until the asynchronous work actually finishes.
package pending

import (
	"context"
	"sync"
)

// Void is the result type for operations that settle with no value.
type Void = struct{}

// Pending represents a result that is not available yet. A Pending settles at
// most once; settling it a second time is a no-op. Continuations registered
// with OnSettled run exactly once, after settlement, in registration order.
type Pending[T any] struct {
	mu        sync.Mutex
	settled   bool
	value     T
	err       error
	done      chan struct{}
	callbacks []func(T, error)
}

// New returns an unsettled Pending.
func New[T any]() *Pending[T] {
	return &Pending[T]{done: make(chan struct{})}
}

// Resolved returns a Pending already settled with v.
func Resolved[T any](v T) *Pending[T] {
	p := New[T]()
	p.Resolve(v)
	return p
}

// Failed returns a Pending already settled with err.
func Failed[T any](err error) *Pending[T] {
	p := New[T]()
	p.Reject(err)
	return p
}

// Go runs fn on its own goroutine and returns a Pending that settles with
// fn's outcome.
func Go[T any](fn func() (T, error)) *Pending[T] {
	p := New[T]()
	go func() {
		v, err := fn()
		if err != nil {
			p.Reject(err)
			return
		}
		p.Resolve(v)
	}()
	return p
}

// Resolve settles p with v. No-op if p already settled.
func (p *Pending[T]) Resolve(v T) {
	p.settle(v, nil)
}

// Reject settles p with err. No-op if p already settled.
func (p *Pending[T]) Reject(err error) {
	var zero T
	p.settle(zero, err)
}

func (p *Pending[T]) settle(v T, err error) {
	p.mu.Lock()
	if p.settled {
		p.mu.Unlock()
		return
	}
	p.settled = true
	p.value = v
	p.err = err
	cbs := p.callbacks
	p.callbacks = nil
	close(p.done)
	p.mu.Unlock()

	for _, cb := range cbs {
		cb(v, err)
	}
}

// OnSettled registers fn to run once p settles. If p is already settled, fn
// runs immediately on the calling goroutine; otherwise it runs on the
// goroutine that settles p. Returns p for chaining.
func (p *Pending[T]) OnSettled(fn func(T, error)) *Pending[T] {
	p.mu.Lock()
	if !p.settled {
		p.callbacks = append(p.callbacks, fn)
		p.mu.Unlock()
		return p
	}
	v, err := p.value, p.err
	p.mu.Unlock()

	fn(v, err)
	return p
}

// Done returns a channel closed when p settles.
func (p *Pending[T]) Done() <-chan struct{} {
	return p.done
}

// Settled reports whether p has settled.
func (p *Pending[T]) Settled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.settled
}

// Await blocks until p settles or ctx is done, and returns the outcome.
// A context error does not settle p; outstanding work keeps running.
func (p *Pending[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-p.done:
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.value, p.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Then returns a Pending that settles with fn applied to p's value, or with
// p's error unchanged if p fails.
func Then[T, U any](p *Pending[T], fn func(T) (U, error)) *Pending[U] {
	out := New[U]()
	p.OnSettled(func(v T, err error) {
		if err != nil {
			out.Reject(err)
			return
		}
		u, err := fn(v)
		if err != nil {
			out.Reject(err)
			return
		}
		out.Resolve(u)
	})
	return out
}
