// Package cache keeps rendered public pages in Redis for a short time.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"yatube/internal/config"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "yatube:page:"

// PageCache stores encoded response bodies. A nil *PageCache is valid and
// never hits, so callers don't branch on whether Redis is configured.
type PageCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// New connects to Redis. It returns a nil cache when cfg.Addr is empty.
func New(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) (*PageCache, error) {
	if cfg.Addr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.Addr, err)
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 20 * time.Second
	}
	return &PageCache{rdb: rdb, ttl: ttl, logger: logger.With("component", "page_cache")}, nil
}

// Key names a cached page, e.g. Key("index", 2) is "yatube:page:index:2".
func Key(name string, page int) string {
	return fmt.Sprintf("%s%s:%d", keyPrefix, name, page)
}

func (c *PageCache) Enabled() bool { return c != nil && c.rdb != nil }

// Get returns the cached body. Errors other than a miss are logged and
// reported as a miss.
func (c *PageCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if !c.Enabled() {
		return nil, false
	}
	body, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	return body, true
}

func (c *PageCache) Set(ctx context.Context, key string, body []byte) {
	if !c.Enabled() {
		return
	}
	if err := c.rdb.Set(ctx, key, body, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", "key", key, "error", err)
	}
}

// Invalidate drops every cached page whose name starts with name.
func (c *PageCache) Invalidate(ctx context.Context, name string) {
	if !c.Enabled() {
		return
	}
	iter := c.rdb.Scan(ctx, 0, keyPrefix+name+":*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("cache scan failed", "name", name, "error", err)
		return
	}
	if len(keys) > 0 {
		if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
			c.logger.Warn("cache invalidate failed", "name", name, "error", err)
		}
	}
}

func (c *PageCache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Close()
}
