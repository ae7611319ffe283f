// Package cache keeps short-lived aggregates in Redis, msgpack encoded.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/baharkarakas/tradebinder/internal/logger"
	"github.com/baharkarakas/tradebinder/internal/metrics"
)

const (
	KeyCardStats     = "stats:cards"
	KeyListingStats  = "stats:listings"
	KeyLocationStats = "stats:locations"
)

type Cache struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

type Option func(*Cache)

func WithPrefix(prefix string) Option {
	return func(c *Cache) { c.prefix = prefix }
}

func New(client redis.Cmdable, ttl time.Duration, opts ...Option) *Cache {
	c := &Cache{client: client, prefix: "tradebinder:", ttl: ttl}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get decodes the value at key into dst. found is false on a cache miss.
func (c *Cache) Get(ctx context.Context, key string, dst any) (found bool, err error) {
	const op = "cache.Get"
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if err := msgpack.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("%s: decode %q: %w", op, key, err)
	}
	return true, nil
}

func (c *Cache) Set(ctx context.Context, key string, v any) error {
	const op = "cache.Set"
	raw, err := msgpack.Marshal(v)
	if err != nil {
		return fmt.Errorf("%s: encode %q: %w", op, key, err)
	}
	if err := c.client.Set(ctx, c.prefix+key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	const op = "cache.Delete"
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.prefix + k
	}
	if err := c.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Remember returns the cached value at key or stores the result of load.
// A nil cache, or a Redis failure, falls through to load.
func Remember[T any](ctx context.Context, c *Cache, key string, load func(context.Context) (T, error)) (T, error) {
	if c == nil {
		return load(ctx)
	}
	var v T
	found, err := c.Get(ctx, key, &v)
	switch {
	case err != nil:
		metrics.CacheLookups.WithLabelValues("error").Inc()
		logger.FromContext(ctx).Warn("cache read failed", "key", key, "err", err)
	case found:
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return v, nil
	default:
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	}

	v, err = load(ctx)
	if err != nil {
		return v, err
	}
	if err := c.Set(ctx, key, v); err != nil {
		logger.FromContext(ctx).Warn("cache write failed", "key", key, "err", err)
	}
	return v, nil
}

// Invalidate drops keys; a nil cache is a no-op and failures are only logged.
func Invalidate(ctx context.Context, c *Cache, keys ...string) {
	if c == nil {
		return
	}
	if err := c.Delete(ctx, keys...); err != nil {
		logger.FromContext(ctx).Warn("cache invalidate failed", "keys", keys, "err", err)
	}
}
