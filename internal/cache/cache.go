package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisClient "github.com/go-redis/redis/v8"

	"github.com/sukalov/hymnarium/internal/config"
	"github.com/sukalov/hymnarium/internal/hymn"
	"github.com/sukalov/hymnarium/internal/logger"
)

const (
	// Namespace prefixes every key written by HymnCache.
	Namespace  = "hymnarium-cache"
	DefaultTTL = 24 * time.Hour
)

// Entry is a cached hymn and the time it was written.
type Entry struct {
	Hymn      hymn.Hymn `json:"hymn"`
	WrittenAt time.Time `json:"timestamp"`
}

// IsExpired reports whether entry is older than ttl at now.
func IsExpired(entry Entry, now time.Time, ttl time.Duration) bool {
	return now.Sub(entry.WrittenAt) > ttl
}

// Key is the cache key of a hymn.
func Key(edition hymn.Edition, number string) string {
	return fmt.Sprintf("%s-%s-%s", Namespace, edition, number)
}

// HymnCache stores assembled hymns with a time-to-live. When a write fails
// the whole namespace is cleared and the write is retried once.
type HymnCache struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

func New(store Store, ttl time.Duration) *HymnCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &HymnCache{store: store, ttl: ttl, now: time.Now}
}

// Get returns a live entry. Expired entries are removed and reported as a
// miss; unreadable entries are misses too.
func (c *HymnCache) Get(ctx context.Context, key string) (Entry, bool) {
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		logger.Debug("cache read failed", "key", key, "error", err.Error())
		return Entry{}, false
	}
	if !ok {
		return Entry{}, false
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return Entry{}, false
	}
	if IsExpired(entry, c.now(), c.ttl) {
		if err := c.store.Delete(ctx, key); err != nil {
			logger.Debug("failed to drop expired entry", "key", key, "error", err.Error())
		}
		return Entry{}, false
	}
	return entry, true
}

// Put writes h under key, stamped with writtenAt.
func (c *HymnCache) Put(ctx context.Context, key string, h hymn.Hymn, writtenAt time.Time) error {
	raw, err := json.Marshal(Entry{Hymn: h, WrittenAt: writtenAt})
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	if err := c.store.Set(ctx, key, raw); err == nil {
		return nil
	}

	if err := c.Clear(ctx); err != nil {
		logger.Warn("failed to clear cache namespace", "error", err.Error())
	}
	if err := c.store.Set(ctx, key, raw); err != nil {
		logger.Warn("failed to cache hymn", "key", key, "error", err.Error())
		return fmt.Errorf("cache hymn %s: %w", key, err)
	}
	return nil
}

// Clear removes every entry of the namespace.
func (c *HymnCache) Clear(ctx context.Context) error {
	return c.store.DeletePrefix(ctx, Namespace)
}

// OpenStore builds the backing store selected in the configuration. rc is
// only used by the redis backend.
func OpenStore(cfg config.Cache, rc *redisClient.Client) (Store, error) {
	switch cfg.Backend {
	case config.CacheMemory, "":
		return NewMemoryStore(cfg.MaxEntries), nil
	case config.CacheDisk:
		return NewDiskStore(cfg.Dir)
	case config.CacheRedis:
		if rc == nil {
			return nil, fmt.Errorf("redis cache backend needs a redis client")
		}
		return NewRedisStore(rc), nil
	case config.CacheNone:
		return NopStore{}, nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
}
