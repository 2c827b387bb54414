package lock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/walletflow-backend/internal/domain"
)

func TestKeyedMutex_SerializesSharedKey(t *testing.T) {
	m := NewKeyedMutex()
	ctx := context.Background()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lease, err := m.Acquire(ctx, "wallet-a")
			if !assert.NoError(t, err) {
				return
			}
			defer lease.Release()

			v := counter
			time.Sleep(time.Microsecond)
			counter = v + 1
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Equal(t, 0, m.size(), "all keys should be released")
}

func TestKeyedMutex_OppositeOrderDoesNotDeadlock(t *testing.T) {
	m := NewKeyedMutex()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			lease, err := m.Acquire(ctx, "a", "b")
			if assert.NoError(t, err) {
				lease.Release()
			}
		}()
		go func() {
			defer wg.Done()
			lease, err := m.Acquire(ctx, "b", "a")
			if assert.NoError(t, err) {
				lease.Release()
			}
		}()
	}
	wg.Wait()

	assert.NoError(t, ctx.Err())
}

func TestKeyedMutex_ContextCancelledWhileWaiting(t *testing.T) {
	m := NewKeyedMutex()

	lease, err := m.Acquire(context.Background(), "a", "b")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = m.Acquire(ctx, "c", "b")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// "c" was acquired before waiting on "b" and must have been released
	other, err := m.Acquire(context.Background(), "c")
	require.NoError(t, err)
	other.Release()

	lease.Release()
	assert.Equal(t, 0, m.size())
}

func TestKeyedMutex_ReleaseIsIdempotent(t *testing.T) {
	m := NewKeyedMutex()
	ctx := context.Background()

	lease, err := m.Acquire(ctx, "a", "a")
	require.NoError(t, err)
	assert.NoError(t, lease.Check(ctx))

	lease.Release()
	lease.Release()
	assert.ErrorIs(t, lease.Check(ctx), domain.ErrLockLost)

	again, err := m.Acquire(ctx, "a")
	require.NoError(t, err)
	again.Release()
	assert.Equal(t, 0, m.size())
}
