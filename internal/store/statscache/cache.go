package statscache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/5w1tchy/locallibrary/internal/models"
	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
)

const versionKey = "idx:ver"

// Cache keeps the home page counts in Redis under a versioned key
// (idx:v{N}:counts). Bumping idx:ver orphans the old entry, which then expires.
// A nil client or a zero TTL disables it.
type Cache struct {
	rdb     *redis.Client
	ttl     time.Duration
	shortTO time.Duration
	warned  atomic.Bool
}

func New(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl, shortTO: 150 * time.Millisecond}
}

func (c *Cache) enabled() bool { return c != nil && c.rdb != nil && c.ttl > 0 }

// Counts returns the cached counts; ok is false on a miss or any Redis trouble.
// The returned key is the versioned slot that was read. Hand it back to
// StoreCounts so a fill computed before an Invalidate never lands under the
// newer version. It is empty when the cache is disabled or the version read failed.
func (c *Cache) Counts(ctx context.Context) (models.Counts, string, bool) {
	if !c.enabled() {
		return models.Counts{}, "", false
	}
	ctx, cancel := context.WithTimeout(ctx, c.shortTO)
	defer cancel()

	key, err := c.key(ctx)
	if err != nil {
		c.warnOnce("version read failed: %v; bypassing cache", err)
		return models.Counts{}, "", false
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Counts{}, key, false
	}
	if err != nil {
		c.warnOnce("get failed: %v; bypassing cache", err)
		return models.Counts{}, "", false
	}
	var out models.Counts
	if err := jsoniter.Unmarshal(raw, &out); err != nil {
		return models.Counts{}, key, false
	}
	return out, key, true
}

// StoreCounts fills the slot returned by Counts. An empty key is a no-op.
func (c *Cache) StoreCounts(ctx context.Context, key string, counts models.Counts) {
	if !c.enabled() || key == "" {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, c.shortTO)
	defer cancel()

	raw, err := jsoniter.Marshal(counts)
	if err != nil {
		return
	}
	if err := c.rdb.SetEx(ctx, key, raw, c.ttl).Err(); err != nil {
		c.warnOnce("set failed: %v (muted next)", err)
	}
}

// Invalidate bumps the version. Call it after a committed write that changes the counts.
func (c *Cache) Invalidate(ctx context.Context) {
	if !c.enabled() {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, c.shortTO)
	defer cancel()
	if err := c.rdb.Incr(ctx, versionKey).Err(); err != nil {
		log.Printf("[stats-cache] bump version failed: %v", err)
	}
}

func (c *Cache) key(ctx context.Context) (string, error) {
	ver, err := c.rdb.Get(ctx, versionKey).Int64()
	if errors.Is(err, redis.Nil) {
		ver, err = 1, nil
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("idx:v%d:counts", ver), nil
}

func (c *Cache) warnOnce(format string, args ...any) {
	if c.warned.Swap(true) {
		return
	}
	log.Printf("[stats-cache] "+format, args...)
}
