package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisKeyPrefix namespaces jobsheet keys on a shared server.
const RedisKeyPrefix = "jobsheet:"

// Redis stores keys as plain strings under [RedisKeyPrefix].
type Redis struct {
	client *redis.Client
	prefix string
}

// OpenRedis connects to the server described by url and verifies it answers.
func OpenRedis(ctx context.Context, url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("open redis: %w", err)
	}

	client := redis.NewClient(opts)

	err = client.Ping(ctx).Err()
	if err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return NewRedis(client, RedisKeyPrefix), nil
}

// NewRedis wraps an existing client. The backend owns the client after this
// call and closes it on Close.
func NewRedis(client *redis.Client, prefix string) *Redis {
	if client == nil {
		panic("kv.NewRedis: client is nil")
	}

	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	err := validateKey(key)
	if err != nil {
		return nil, err
	}

	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}

		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}

	return data, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	err := validateKey(key)
	if err != nil {
		return err
	}

	err = r.client.Set(ctx, r.prefix+key, value, 0).Err()
	if err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}

	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	err := validateKey(key)
	if err != nil {
		return err
	}

	err = r.client.Del(ctx, r.prefix+key).Err()
	if err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}

	return nil
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}
