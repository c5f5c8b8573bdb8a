package validate

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Getenv matches os.Getenv; tests pass a map lookup instead.
type Getenv func(string) string

// Env fails fast on settings the server cannot run safely without.
func Env(getenv Getenv) error {
	var errs []error

	if len(getenv("AUTH_JWT_SECRET")) < 32 {
		errs = append(errs, errors.New("AUTH_JWT_SECRET must be at least 32 characters"))
	}
	if getenv("DATABASE_URL") == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if getenv("REDIS_URL") == "" && getenv("REDIS_ADDR") == "" {
		errs = append(errs, errors.New("set REDIS_URL or REDIS_ADDR; visit counters live in Redis"))
	}
	if (getenv("TLS_CERT") == "") != (getenv("TLS_KEY") == "") {
		errs = append(errs, errors.New("TLS_CERT and TLS_KEY must be set together"))
	}

	for _, d := range []struct{ key, def string }{
		{"AUTH_ACCESS_TTL", "15m"},
		{"AUTH_REFRESH_TTL", "720h"},
		{"SESSION_TTL", "336h"},
	} {
		if _, err := duration(getenv, d.key, d.def); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", d.key, err))
		}
	}

	// Argon2 lower bounds, only when set explicitly
	for _, b := range []struct {
		key string
		min uint64
	}{
		{"ARGON2_MEMORY", 65536}, // 64 MiB
		{"ARGON2_ITER", 2},
		{"ARGON2_PAR", 1},
	} {
		if err := minUint(getenv, b.key, b.min); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", b.key, err))
		}
	}
	return errors.Join(errs...)
}

// HardeningWarnings lists non-fatal findings worth logging at startup.
func HardeningWarnings(appEnv string, getenv Getenv) []string {
	var warns []string

	if d, _ := duration(getenv, "AUTH_ACCESS_TTL", "15m"); d > time.Hour {
		warns = append(warns, fmt.Sprintf("AUTH_ACCESS_TTL=%s is > 1h; consider shorter access tokens", d))
	}
	if d, _ := duration(getenv, "AUTH_REFRESH_TTL", "720h"); d < 24*time.Hour {
		warns = append(warns, fmt.Sprintf("AUTH_REFRESH_TTL=%s is < 24h; staff will be logged out often", d))
	}
	if getenv("AUTHOR_DELETE_POLICY") == "cascade" {
		warns = append(warns, "AUTHOR_DELETE_POLICY=cascade deletes an author's books and their copies")
	}

	if !strings.EqualFold(appEnv, "production") {
		return warns
	}
	if getenv("ARGON2_MEMORY") == "" || getenv("ARGON2_ITER") == "" {
		warns = append(warns, "ARGON2_* not explicitly set; using code defaults. Set strong values in production")
	}
	if strings.HasPrefix(getenv("REDIS_URL"), "redis://") {
		warns = append(warns, "REDIS_URL uses redis:// (no TLS). Prefer rediss:// for TLS")
	}
	if getenv("REDIS_URL") == "" && getenv("REDIS_PASSWORD") == "" {
		warns = append(warns, "REDIS_ADDR provided without REDIS_PASSWORD; require auth in production")
	}
	if getenv("TLS_CERT") == "" {
		warns = append(warns, "TLS_CERT not set; session and login cookies travel without TLS unless a proxy terminates it")
	}
	return warns
}

// PingRedis checks connectivity with a short timeout.
func PingRedis(rdb *redis.Client, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return rdb.Ping(ctx).Err()
}

func duration(getenv Getenv, key, def string) (time.Duration, error) {
	s := getenv(key)
	if s == "" {
		s = def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}

func minUint(getenv Getenv, key string, min uint64) error {
	v := getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return fmt.Errorf("not a number: %v", err)
	}
	if n < min {
		return fmt.Errorf("must be >= %d", min)
	}
	return nil
}
