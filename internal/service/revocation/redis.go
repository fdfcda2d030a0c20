package revocation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix      = "auth:revoked:"
	defaultTimeout = 3 * time.Second
)

// RedisRegistry keeps revocation marks in redis, so they survive restarts
// and are visible to every instance of the service.
// Keys carry the registry ttl, redis evicts them on its own.
type RedisRegistry struct {
	client  *redis.Client
	ttl     time.Duration
	timeout time.Duration
}

func NewRedisRegistry(client *redis.Client, ttl time.Duration) *RedisRegistry {
	return &RedisRegistry{
		client:  client,
		ttl:     ttl,
		timeout: defaultTimeout,
	}
}

func (r *RedisRegistry) Revoke(ctx context.Context, userID int64) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	value := strconv.FormatInt(time.Now().Unix(), 10)
	err := r.client.Set(ctx, r.key(userID), value, r.ttl).Err()
	if err != nil {
		return fmt.Errorf("redis error while revoking tokens. Err: %w", err)
	}

	return nil
}

func (r *RedisRegistry) RevokedSince(ctx context.Context, userID int64) (time.Time, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	value, err := r.client.Get(ctx, r.key(userID)).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return time.Time{}, false, nil
	case err != nil:
		return time.Time{}, false, fmt.Errorf("redis error while checking revocation. Err: %w", err)
	}

	unix, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("unexpected revocation mark %q. Err: %w", value, err)
	}

	return time.Unix(unix, 0), true, nil
}

func (r *RedisRegistry) key(userID int64) string {
	return keyPrefix + strconv.FormatInt(userID, 10)
}
