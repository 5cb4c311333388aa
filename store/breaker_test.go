package store

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/trailrank/core"
)

// flakyStore 在 down 为 true 时所有读操作失败。
type flakyStore struct {
	*MemoryStore
	down  atomic.Bool
	calls atomic.Int32
}

func (f *flakyStore) Get(ctx context.Context, key string) ([]byte, error) {
	f.calls.Add(1)
	if f.down.Load() {
		return nil, errors.New("connection refused")
	}
	return f.MemoryStore.Get(ctx, key)
}

func TestBreakerStore_OpensAfterConsecutiveFailures(t *testing.T) {
	ctx := context.Background()
	inner := &flakyStore{MemoryStore: NewMemoryStore()}
	defer inner.Close()

	var transitions []string
	b := NewBreakerStore(inner, BreakerOptions{
		Name:             "test",
		FailureThreshold: 3,
		Timeout:          time.Hour,
		OnStateChange: func(_, from, to string) {
			transitions = append(transitions, from+"->"+to)
		},
	})

	inner.down.Store(true)
	for i := 0; i < 3; i++ {
		_, err := b.Get(ctx, "k")
		require.Error(t, err)
		assert.False(t, core.IsUnavailable(err), "inner error passes through")
	}
	assert.Equal(t, "open", b.State())
	assert.Equal(t, []string{"closed->open"}, transitions)

	_, err := b.Get(ctx, "k")
	require.Error(t, err)
	assert.True(t, core.IsUnavailable(err))
	assert.ErrorIs(t, err, core.ErrStoreUnavailable)
	assert.Equal(t, int32(3), inner.calls.Load(), "open breaker short-circuits")
}

func TestBreakerStore_NotFoundIsNotFailure(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()
	defer inner.Close()

	b := NewBreakerStore(inner, BreakerOptions{FailureThreshold: 1})
	for i := 0; i < 5; i++ {
		_, err := b.HGet(ctx, "items", "missing")
		assert.True(t, core.IsStoreNotFound(err))
	}
	assert.Equal(t, "closed", b.State())

	require.NoError(t, b.RPush(ctx, "log", []byte("a")))
	got, err := b.LRange(ctx, "log", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("a")}, got)
	assert.Equal(t, "memory", b.Name())
}
