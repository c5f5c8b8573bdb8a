package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRefresh stores refresh tokens as rt:{token} -> "userID|tokenVersion".
type RedisRefresh struct {
	RDB *redis.Client
	TTL time.Duration
}

func NewRedisRefresh(rdb *redis.Client, ttl time.Duration) *RedisRefresh {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &RedisRefresh{RDB: rdb, TTL: ttl}
}

func (s *RedisRefresh) Issue(ctx context.Context, userID string, tokenVersion int) (string, error) {
	if s.RDB == nil {
		return "", errors.New("redis not configured")
	}
	token, err := randToken()
	if err != nil {
		return "", err
	}
	val := userID + "|" + strconv.Itoa(tokenVersion)
	if err := s.RDB.Set(ctx, "rt:"+token, val, s.TTL).Err(); err != nil {
		return "", err
	}
	return token, nil
}

func (s *RedisRefresh) Consume(ctx context.Context, token string) (string, int, error) {
	if token == "" {
		return "", 0, ErrRefreshInvalid
	}
	val, err := s.RDB.GetDel(ctx, "rt:"+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", 0, ErrRefreshInvalid
	}
	if err != nil {
		return "", 0, err
	}
	return parseRefreshValue(val)
}

func (s *RedisRefresh) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.RDB.Del(ctx, "rt:"+token).Err()
}

func parseRefreshValue(val string) (string, int, error) {
	parts := strings.SplitN(val, "|", 2)
	if len(parts) != 2 || parts[0] == "" {
		return "", 0, ErrRefreshInvalid
	}
	tv, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, ErrRefreshInvalid
	}
	return parts[0], tv, nil
}

func randToken() (string, error) {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}
