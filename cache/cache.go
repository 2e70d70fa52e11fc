// Package cache is the key-value adapter for post lookups. It is a pure
// optimization layer: every failure degrades to a miss and is never
// surfaced to callers.
package cache

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hypermark/blogsearch/config"
)

const callTimeout = 2 * time.Second

// Cache wraps a Redis client. Safe for concurrent use.
type Cache struct {
	rdb   *redis.Client
	sugar *zap.SugaredLogger
}

// New builds a Cache from configuration. RedisURL wins over host/port parts.
func New(cfg config.AppConfig, sugar *zap.SugaredLogger) (*Cache, error) {
	var opts *redis.Options
	if cfg.RedisURL != "" {
		parsed, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     net.JoinHostPort(cfg.RedisHost, strconv.Itoa(cfg.RedisPort)),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}
	}
	opts.DialTimeout = 3 * time.Second
	opts.ReadTimeout = callTimeout
	opts.WriteTimeout = callTimeout

	c := NewWithClient(redis.NewClient(opts), sugar)

	// Ping to validate; ignore error so the service can still run with the
	// cache degraded to all-miss.
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		c.sugar.Warnf("redis unreachable, serving without cache: %v", err)
	}
	return c, nil
}

// NewWithClient wraps an existing client, mainly for tests.
func NewWithClient(rdb *redis.Client, sugar *zap.SugaredLogger) *Cache {
	if sugar == nil {
		sugar = zap.NewNop().Sugar()
	}
	return &Cache{rdb: rdb, sugar: sugar}
}

// GetBytes returns cached bytes for a key, or a miss. Errors count as misses.
func (c *Cache) GetBytes(ctx context.Context, key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.sugar.Debugf("cache get failed key=%s err=%v", key, err)
		}
		return nil, false
	}
	return b, true
}

// SetBytes stores bytes with the given TTL. Failures are logged and swallowed.
func (c *Cache) SetBytes(ctx context.Context, key string, b []byte, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	if err := c.rdb.Set(ctx, key, b, ttl).Err(); err != nil {
		c.sugar.Warnf("cache set failed key=%s err=%v", key, err)
	}
}

// Close releases the underlying client.
func (c *Cache) Close() error {
	return c.rdb.Close()
}
