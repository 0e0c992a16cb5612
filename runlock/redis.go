package runlock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// Redis is a Locker shared by every instance connected to the same Redis.
type Redis struct {
	client *redislock.Client
	prefix string
}

// NewRedis wraps an existing Redis client.
func NewRedis(rdb redis.UniversalClient) *Redis {
	return &Redis{client: redislock.New(rdb), prefix: "lock:"}
}

// Connect dials addr and verifies the connection with PING.
func Connect(ctx context.Context, addr string) (*Redis, redis.UniversalClient, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}
	return NewRedis(rdb), rdb, nil
}

// Obtain takes key for ttl without retrying.
func (r *Redis) Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error) {
	lock, err := r.client.Obtain(ctx, r.prefix+key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrNotObtained
	}
	if err != nil {
		return nil, fmt.Errorf("obtain %s: %w", key, err)
	}
	return redisLock{lock}, nil
}

type redisLock struct {
	lock *redislock.Lock
}

// Release frees the key. A lock that already expired is not an error.
func (rl redisLock) Release(ctx context.Context) error {
	err := rl.lock.Release(ctx)
	if errors.Is(err, redislock.ErrLockNotHeld) {
		return nil
	}
	return err
}
