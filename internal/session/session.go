package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Session keys used by the catalog pages.
const (
	KeyIndexVisits = "num_visits"
	bookVisitsTmpl = "book_detail_page_num_visits_%s"
)

// BookVisitsKey is the per-book counter key for one visitor.
func BookVisitsKey(bookID string) string { return fmt.Sprintf(bookVisitsTmpl, bookID) }

// RedisStore keeps one hash per visitor: sess:{visitor} -> {key: count}.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: "sess:", ttl: ttl}
}

// IncrVisits atomically bumps a counter and returns the value it had before
// the bump (0 when the counter did not exist yet).
func (s *RedisStore) IncrVisits(ctx context.Context, visitorID, key string) (int64, error) {
	if visitorID == "" {
		return 0, errors.New("session: empty visitor id")
	}
	k := s.prefix + visitorID

	pipe := s.rdb.TxPipeline()
	incr := pipe.HIncrBy(ctx, k, key, 1)
	if s.ttl > 0 {
		pipe.Expire(ctx, k, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("session: incr %s: %w", key, err)
	}
	return incr.Val() - 1, nil
}

// Flush drops every counter of a visitor. Logout calls it.
func (s *RedisStore) Flush(ctx context.Context, visitorID string) error {
	return s.rdb.Del(ctx, s.prefix+visitorID).Err()
}
