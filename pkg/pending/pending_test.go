package pending

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPending_SettlesOnce(t *testing.T) {
	p := New[int]()
	p.Resolve(1)
	p.Resolve(2)
	p.Reject(errors.New("too late"))

	v, err := p.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v, "only the first settlement counts")
}

func TestPending_AwaitBlocksUntilSettled(t *testing.T) {
	p := New[string]()
	go func() {
		time.Sleep(10 * time.Millisecond)
		p.Resolve("done")
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	v, err := p.Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, "done", v)
	assert.True(t, p.Settled())
}

func TestPending_AwaitRespectsContext(t *testing.T) {
	p := New[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := p.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, p.Settled(), "a context error does not settle the pending")
}

func TestPending_OnSettledAfterSettlementRunsImmediately(t *testing.T) {
	p := Resolved(5)
	ran := false
	p.OnSettled(func(v int, err error) {
		ran = true
		assert.Equal(t, 5, v)
		assert.NoError(t, err)
	})
	assert.True(t, ran)
}

func TestPending_OnSettledRunsInRegistrationOrder(t *testing.T) {
	p := New[int]()
	var order []int
	p.OnSettled(func(int, error) { order = append(order, 1) })
	p.OnSettled(func(int, error) { order = append(order, 2) })
	p.Resolve(0)
	assert.Equal(t, []int{1, 2}, order)
}

func TestFailed(t *testing.T) {
	cause := errors.New("nope")
	p := Failed[int](cause)

	_, err := p.Await(context.Background())
	assert.Same(t, cause, err)
}

func TestGo(t *testing.T) {
	p := Go(func() (int, error) { return 9, nil })
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	v, err := p.Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, 9, v)
}

func TestThen(t *testing.T) {
	t.Run("maps the value", func(t *testing.T) {
		out := Then(Resolved(2), func(v int) (string, error) {
			return "x", nil
		})
		v, err := out.Await(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "x", v)
	})

	t.Run("propagates the upstream error", func(t *testing.T) {
		cause := errors.New("upstream")
		out := Then(Failed[int](cause), func(int) (string, error) {
			t.Fatal("must not run")
			return "", nil
		})
		_, err := out.Await(context.Background())
		assert.Same(t, cause, err)
	})

	t.Run("propagates the mapper error", func(t *testing.T) {
		cause := errors.New("mapper")
		out := Then(Resolved(1), func(int) (string, error) {
			return "", cause
		})
		_, err := out.Await(context.Background())
		assert.Same(t, cause, err)
	})
}
