package redisdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringOperations_SetGet(t *testing.T) {
	p, _ := newTestProvider(t)
	ops := NewStringOperations(p)
	ctx := context.Background()

	require.NoError(t, ops.Set(ctx, "name", "stoke"))

	v, ok, err := ops.Get(ctx, "name")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "stoke", v)
}

func TestStringOperations_GetMissing(t *testing.T) {
	p, _ := newTestProvider(t)
	ops := NewStringOperations(p)

	v, ok, err := ops.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, v)
}

func TestStringOperations_Del(t *testing.T) {
	p, srv := newTestProvider(t)
	ops := NewStringOperations(p)
	ctx := context.Background()
	require.NoError(t, srv.Set("a", "1"))
	require.NoError(t, srv.Set("b", "2"))

	n, err := ops.Del(ctx, "a", "b", "c")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.False(t, srv.Exists("a"))
}

func TestStringOperations_Incr(t *testing.T) {
	p, _ := newTestProvider(t)
	ops := NewStringOperations(p)
	ctx := context.Background()

	n, err := ops.Incr(ctx, "hits")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = ops.Incr(ctx, "hits")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestStringOperations_SetTTL(t *testing.T) {
	p, srv := newTestProvider(t)
	ops := NewStringOperations(p)

	require.NoError(t, ops.SetTTL(context.Background(), "session", "tok", time.Minute))
	assert.Greater(t, srv.TTL("session"), time.Duration(0))
}
