package router

import (
	"net/http"
	"time"

	"github.com/5w1tchy/locallibrary/internal/api/middlewares"
	"github.com/5w1tchy/locallibrary/internal/auth"
	"github.com/redis/go-redis/v9"
)

// MountAccounts wires the /user/accounts/* endpoints. Login POSTs are rate
// limited per IP.
func MountAccounts(mux *http.ServeMux, h *auth.Handler, rdb *redis.Client) {
	limit := middlewares.LoginRateLimit(rdb, 10, 15*time.Minute)

	mux.HandleFunc("GET /user/accounts/login", h.LoginPage)
	mux.Handle("POST /user/accounts/login", limit(http.HandlerFunc(h.Login)))
	mux.HandleFunc("POST /user/accounts/refresh", h.RefreshTokens)
	mux.HandleFunc("POST /user/accounts/logout", h.Logout)
}
