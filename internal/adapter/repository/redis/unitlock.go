package redis

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/motorlot/financing/internal/domain"
)

// Deletes the lease only when the caller still owns it, so a release after
// expiry cannot drop another writer's lock.
const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`

// UnitLock serializes financing mutations per unit with a Redis lease.
// Acquire retries briefly with exponential backoff and then reports
// domain.ErrLockContention; locks on different units never contend.
type UnitLock struct {
	client       *redis.Client
	prefix       string
	leaseTTL     time.Duration
	retryTimeout time.Duration
}

// NewUnitLock creates a new UnitLock.
func NewUnitLock(client *redis.Client, leaseTTL, retryTimeout time.Duration) *UnitLock {
	return &UnitLock{
		client:       client,
		prefix:       "unit-lock:",
		leaseTTL:     leaseTTL,
		retryTimeout: retryTimeout,
	}
}

// Acquire takes the unit's lease and returns its release func.
func (l *UnitLock) Acquire(ctx context.Context, unitID string) (func(), error) {
	key := l.prefix + unitID
	token := ulid.Make().String()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 10 * time.Millisecond
	b.MaxInterval = 250 * time.Millisecond
	b.MaxElapsedTime = l.retryTimeout

	err := backoff.Retry(func() error {
		ok, err := l.client.SetNX(ctx, key, token, l.leaseTTL).Result()
		if err != nil {
			return backoff.Permanent(err)
		}
		if !ok {
			return domain.ErrLockContention
		}

		return nil
	}, backoff.WithContext(b, ctx))
	if err != nil {
		return nil, err
	}

	release := func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		_ = l.client.Eval(releaseCtx, releaseScript, []string{key}, token).Err()
	}

	return release, nil
}
