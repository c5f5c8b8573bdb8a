package middlewares

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/5w1tchy/locallibrary/internal/api/httpx"
	"github.com/redis/go-redis/v9"
)

// LoginRateLimit allows max login posts per IP per window. It fails open when
// Redis is missing or erroring.
func LoginRateLimit(rdb *redis.Client, max int, window time.Duration) Middleware {
	if max <= 0 {
		max = 10
	}
	if window <= 0 {
		window = 5 * time.Minute
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if r.Method != http.MethodPost || ip == "" || rdb == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			key := "rl:login:" + ip

			pipe := rdb.TxPipeline()
			incr := pipe.Incr(ctx, key)
			pipe.ExpireNX(ctx, key, window)
			if _, err := pipe.Exec(ctx); err != nil {
				log.Printf("[login-limit] redis: %v (allowing request)", err)
				next.ServeHTTP(w, r)
				return
			}
			if incr.Val() > int64(max) {
				w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				httpx.ErrorJSON(w, http.StatusTooManyRequests, "too many login attempts")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
