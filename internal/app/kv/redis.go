package kv

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis implements Store on top of a go-redis client.
type Redis struct {
	client *redis.Client
}

var _ Store = (*Redis)(nil)

// NewRedis wraps an already connected Redis client.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// incrExisting refuses to increment a key that was never initialized.
// Redis INCR would silently create the key at zero, which breaks the
// explicit-initialization contract of the counter, so the existence check
// and the increment run as one atomic script.
var incrExisting = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return false
end
return redis.call('INCR', KEYS[1])
`)

func (r *Redis) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("kv: exists %q: %w", key, err)
	}
	return n > 0, nil
}

func (r *Redis) WriteIfAbsent(ctx context.Context, key, value string) (bool, error) {
	set, err := r.client.SetNX(ctx, key, value, 0).Result()
	if err != nil {
		return false, fmt.Errorf("kv: setnx %q: %w", key, err)
	}
	return set, nil
}

func (r *Redis) Write(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("kv: set %q: %w", key, err)
	}
	return nil
}

func (r *Redis) Read(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrKeyMissing
	}
	if err != nil {
		return "", fmt.Errorf("kv: get %q: %w", key, err)
	}
	return val, nil
}

func (r *Redis) IncrExisting(ctx context.Context, key string) (int64, error) {
	res, err := incrExisting.Run(ctx, r.client, []string{key}).Result()
	if err == redis.Nil {
		// Script returned false: the key is absent.
		return 0, ErrKeyMissing
	}
	if err != nil {
		return 0, fmt.Errorf("kv: incr %q: %w", key, err)
	}

	n, ok := res.(int64)
	if !ok {
		return 0, fmt.Errorf("kv: incr %q: unexpected reply %T", key, res)
	}
	return n, nil
}

func (r *Redis) Clear(ctx context.Context) error {
	if err := r.client.FlushDB(ctx).Err(); err != nil {
		return fmt.Errorf("kv: flushdb: %w", err)
	}
	return nil
}
