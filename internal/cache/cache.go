package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/rarchives/ir/internal/logger"
)

// Standard TTLs for the things the API caches. Search results are
// stable (the corpus only grows), so they live a full day; the cheap
// aggregate endpoints refresh faster.
const (
	SearchTTL     = 24 * time.Hour
	StatusTTL     = 10 * time.Minute
	ListingTTL    = time.Hour
	VideoThumbTTL = 10 * time.Minute
)

type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
	Close() error
}

type redisCache struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
}

func NewRedis(addr, prefix string, baseLog *logger.Logger) (Cache, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisCache{
		log:    baseLog.With("service", "RedisCache"),
		rdb:    rdb,
		prefix: prefix,
	}, nil
}

func (c *redisCache) key(k string) string {
	return c.prefix + ":" + k
}

func (c *redisCache) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.rdb.Get(ctx, c.key(key)).Result()
	if err == goredis.Nil {
		return "", false
	}
	if err != nil {
		c.log.Warn("Cache get failed", "key", key, "error", err)
		return "", false
	}
	return val, true
}

func (c *redisCache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if err := c.rdb.Set(ctx, c.key(key), value, ttl).Err(); err != nil {
		c.log.Warn("Cache set failed", "key", key, "error", err)
	}
}

func (c *redisCache) Close() error {
	return c.rdb.Close()
}

type memoryEntry struct {
	value   string
	expires time.Time
}

// memoryCache is the single-process fallback when no redis address is
// configured. Expired entries are dropped lazily on read.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

func NewMemory() Cache {
	return &memoryCache{entries: make(map[string]memoryEntry)}
}

func (c *memoryCache) Get(_ context.Context, key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if time.Now().After(e.expires) {
		delete(c.entries, key)
		return "", false
	}
	return e.value, true
}

func (c *memoryCache) Set(_ context.Context, key, value string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{value: value, expires: time.Now().Add(ttl)}
}

func (c *memoryCache) Close() error {
	return nil
}
