package redisdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stokehq/stoke/pkg/executor"
)

// StringOperations provides typed helpers for string keys and values,
// layered on the executors so every call borrows and releases a pooled
// connection.
type StringOperations struct {
	pool executor.Pool[*Resource]
}

// NewStringOperations binds string helpers to a provider's pool.
func NewStringOperations(p *Provider) *StringOperations {
	return &StringOperations{pool: p.Pool()}
}

// Get returns the value at key, or ok=false if the key does not exist.
func (s *StringOperations) Get(ctx context.Context, key string) (value string, ok bool, err error) {
	return getValue(ctx, s.pool, key)
}

func getValue(ctx context.Context, pool executor.Pool[*Resource], key string) (string, bool, error) {
	type reply struct {
		value string
		ok    bool
	}
	res, err := ExecuteSync(ctx, pool, func(ctx context.Context, r *Resource) (reply, error) {
		v, err := r.Do(ctx, "get", key)
		if errors.Is(err, redis.Nil) {
			return reply{}, nil
		}
		if err != nil {
			return reply{}, err
		}
		s, ok := v.(string)
		if !ok {
			return reply{}, fmt.Errorf("unexpected GET reply type %T", v)
		}
		return reply{value: s, ok: true}, nil
	})
	return res.value, res.ok, err
}

// Set stores value at key.
func (s *StringOperations) Set(ctx context.Context, key, value string) error {
	_, err := ExecuteSync(ctx, s.pool, func(ctx context.Context, r *Resource) (any, error) {
		return r.Do(ctx, "set", key, value)
	})
	return err
}

// SetTTL stores value at key with an expiry.
func (s *StringOperations) SetTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	_, err := ExecuteSync(ctx, s.pool, func(ctx context.Context, r *Resource) (any, error) {
		return r.Do(ctx, "set", key, value, "px", ttl.Milliseconds())
	})
	return err
}

// Del removes the given keys and returns how many existed.
func (s *StringOperations) Del(ctx context.Context, keys ...string) (int64, error) {
	return ExecuteSync(ctx, s.pool, func(ctx context.Context, r *Resource) (int64, error) {
		args := make([]any, 0, len(keys)+1)
		args = append(args, "del")
		for _, k := range keys {
			args = append(args, k)
		}
		v, err := r.Do(ctx, args...)
		if err != nil {
			return 0, err
		}
		n, ok := v.(int64)
		if !ok {
			return 0, fmt.Errorf("unexpected DEL reply type %T", v)
		}
		return n, nil
	})
}

// Incr increments the counter at key and returns the new value.
func (s *StringOperations) Incr(ctx context.Context, key string) (int64, error) {
	return ExecuteSync(ctx, s.pool, func(ctx context.Context, r *Resource) (int64, error) {
		v, err := r.Do(ctx, "incr", key)
		if err != nil {
			return 0, err
		}
		n, ok := v.(int64)
		if !ok {
			return 0, fmt.Errorf("unexpected INCR reply type %T", v)
		}
		return n, nil
	})
}
