package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const scanBatch = 100

// RedisBackend keeps entries in redis under a key prefix; expiry is native
type RedisBackend struct {
	client *redis.Client
	prefix string
}

func NewRedisBackend(client *redis.Client, prefix string) *RedisBackend {
	return &RedisBackend{client: client, prefix: prefix}
}

func (r *RedisBackend) Name() string {
	return "redis"
}

func (r *RedisBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (r *RedisBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, r.prefix+key, value, ttl).Err()
}

// Delete removes matching keys with SCAN so large keyspaces are not blocked
func (r *RedisBackend) Delete(ctx context.Context, pattern string) (int, error) {
	match := escapeGlob(r.prefix) + "*"
	if pattern != "" {
		match = escapeGlob(r.prefix) + "*" + escapeGlob(pattern) + "*"
	}

	removed := 0
	iter := r.client.Scan(ctx, 0, match, scanBatch).Iterator()
	for iter.Next(ctx) {
		n, err := r.client.Del(ctx, iter.Val()).Result()
		if err != nil {
			return removed, err
		}
		removed += int(n)
	}
	if err := iter.Err(); err != nil {
		return removed, err
	}
	return removed, nil
}

func (r *RedisBackend) Sweep(_ context.Context) (int, error) {
	return 0, nil
}

func (r *RedisBackend) Len(ctx context.Context) (int, error) {
	count := 0
	iter := r.client.Scan(ctx, 0, escapeGlob(r.prefix)+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		count++
	}
	return count, iter.Err()
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

func escapeGlob(s string) string {
	return globEscaper.Replace(s)
}
