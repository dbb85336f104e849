// Package provider defines the lifecycle contract shared by every backing
// store: connect once, hand out pooled connections, disconnect once.
package provider

import "context"

// Provider owns a client and its connection pool for one backing store.
// T is the store's connection handle type.
type Provider[T any] interface {
	// Connect initializes the client and the pool. Calling it again while
	// already connected is a no-op.
	Connect(ctx context.Context) error

	// Disconnect tears down the pool and the client. Safe to call on a
	// never-connected or already-closed provider.
	Disconnect(ctx context.Context) error

	// Conn borrows one connection handle. Ownership of the handle stays with
	// the provider's pool; see each provider for how it is given back.
	Conn(ctx context.Context) (T, error)
}
