package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const backendRedis = "redis"

// RedisStore keeps keys as plain redis strings without expiry.
type RedisStore struct {
	client    redis.UniversalClient
	namespace string
}

// OpenRedis connects to a single redis node and pings it.
func OpenRedis(ctx context.Context, addr, password string, db int, opts ...Option) (*RedisStore, error) {
	s := applyOptions(opts)
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pctx, cancel := context.WithTimeout(ctx, s.pingTimeout)
	defer cancel()
	if err := client.Ping(pctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisStore(client, opts...), nil
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client redis.UniversalClient, opts ...Option) *RedisStore {
	s := applyOptions(opts)
	return &RedisStore{client: client, namespace: s.namespace}
}

func (s *RedisStore) key(k string) string {
	if s.namespace == "" {
		return k
	}
	return s.namespace + ":" + k
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key string) (v string, err error) {
	defer func(start time.Time) { observe(backendRedis, opGet, start, err) }(time.Now())

	v, err = s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis: get %q: %w", key, err)
	}
	return v, nil
}

// Set implements Store.
func (s *RedisStore) Set(ctx context.Context, key, value string) (err error) {
	defer func(start time.Time) { observe(backendRedis, opSet, start, err) }(time.Now())

	if err = s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis: set %q: %w", key, err)
	}
	return nil
}

// Delete implements Store.
func (s *RedisStore) Delete(ctx context.Context, key string) (err error) {
	defer func(start time.Time) { observe(backendRedis, opDelete, start, err) }(time.Now())

	if err = s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis: delete %q: %w", key, err)
	}
	return nil
}

// Name implements Store.
func (s *RedisStore) Name() string { return backendRedis }

// Close implements Store.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
