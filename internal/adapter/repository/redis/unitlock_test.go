package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motorlot/financing/internal/domain"
)

func TestUnitLockAcquireAndRelease(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	lock := NewUnitLock(client, time.Minute, 50*time.Millisecond)
	ctx := context.Background()

	release, err := lock.Acquire(ctx, "u1")
	require.NoError(t, err)

	// The same unit is held, a different unit is not.
	_, err = lock.Acquire(ctx, "u1")
	assert.ErrorIs(t, err, domain.ErrLockContention)

	otherRelease, err := lock.Acquire(ctx, "u2")
	require.NoError(t, err)
	otherRelease()

	release()

	release, err = lock.Acquire(ctx, "u1")
	require.NoError(t, err)
	release()
}

func TestUnitLockReleaseAfterExpiryKeepsNewOwner(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	lock := NewUnitLock(client, time.Second, 50*time.Millisecond)
	ctx := context.Background()

	staleRelease, err := lock.Acquire(ctx, "u1")
	require.NoError(t, err)

	// The lease expires and another writer takes over.
	mr.FastForward(2 * time.Second)

	release, err := lock.Acquire(ctx, "u1")
	require.NoError(t, err)
	defer release()

	// The stale holder's release must not evict the new owner.
	staleRelease()

	_, err = lock.Acquire(ctx, "u1")
	assert.ErrorIs(t, err, domain.ErrLockContention)
}

func TestUnitLockRetriesUntilFree(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	lock := NewUnitLock(client, time.Minute, time.Second)
	ctx := context.Background()

	release, err := lock.Acquire(ctx, "u1")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		second, err := lock.Acquire(ctx, "u1")
		if err == nil {
			second()
		}
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	release()

	require.NoError(t, <-done)
}
