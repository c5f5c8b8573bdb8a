package middlewares

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/5w1tchy/locallibrary/internal/api/httpx"
	jwtutil "github.com/5w1tchy/locallibrary/internal/security/jwt"
)

// Identity answers the questions the guards ask about a signed-in user.
type Identity interface {
	TokenVersion(ctx context.Context, userID string) (int, error)
	HasPermission(ctx context.Context, userID, perm string) (bool, error)
}

// errIdentityLookup marks a failed user lookup, as opposed to a bad or revoked token.
var errIdentityLookup = errors.New("identity lookup failed")

// Auth builds the login and permission guards.
type Auth struct {
	Tokens     *jwtutil.Signer
	Users      Identity
	LoginURL   string
	CookieName string
}

func NewAuth(tokens *jwtutil.Signer, users Identity, loginURL string) *Auth {
	return &Auth{Tokens: tokens, Users: users, LoginURL: loginURL, CookieName: "access_token"}
}

// RequireLogin lets authenticated users through and sends everyone else to the
// login page with the original path in ?next=.
func (a *Auth) RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := a.authenticate(r)
		if errors.Is(err, errIdentityLookup) {
			log.Printf("[auth] %v", err)
			httpx.ErrorJSON(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if err != nil {
			a.redirectToLogin(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// RequirePermission runs the login guard first; a signed-in user without perm gets 403.
func (a *Auth) RequirePermission(perm string, next http.Handler) http.Handler {
	return a.RequireLogin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _ := UserIDFrom(r.Context())
		ok, err := a.Users.HasPermission(r.Context(), userID, perm)
		if err != nil {
			log.Printf("[auth] permission %s user=%s: %v", perm, userID, err)
			httpx.ErrorJSON(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if !ok {
			httpx.ErrorJSON(w, http.StatusForbidden, "forbidden")
			return
		}
		next.ServeHTTP(w, r)
	}))
}

func (a *Auth) authenticate(r *http.Request) (string, error) {
	tokenStr, err := a.token(r)
	if err != nil {
		return "", err
	}
	claims, err := a.Tokens.ParseAccess(tokenStr)
	if err != nil {
		return "", err
	}
	dbVer, err := a.Users.TokenVersion(r.Context(), claims.Subject)
	if errors.Is(err, sql.ErrNoRows) {
		return "", errors.New("unknown or inactive user")
	}
	if err != nil {
		return "", fmt.Errorf("%w: user=%s: %w", errIdentityLookup, claims.Subject, err)
	}
	if claims.TokenVersion != dbVer {
		return "", errors.New("token revoked")
	}
	return claims.Subject, nil
}

// token prefers a Bearer header and falls back to the login cookie.
func (a *Auth) token(r *http.Request) (string, error) {
	if raw := r.Header.Get("Authorization"); raw != "" {
		return bearer(raw)
	}
	c, err := r.Cookie(a.CookieName)
	if err != nil || c.Value == "" {
		return "", errors.New("no credentials")
	}
	return c.Value, nil
}

func (a *Auth) redirectToLogin(w http.ResponseWriter, r *http.Request) {
	target := a.LoginURL + "?next=" + url.QueryEscape(r.URL.RequestURI())
	http.Redirect(w, r, target, http.StatusFound)
}

func bearer(h string) (string, error) {
	if !strings.HasPrefix(h, "Bearer ") && !strings.HasPrefix(h, "bearer ") {
		return "", errors.New("no bearer")
	}
	return strings.TrimSpace(h[len("Bearer "):]), nil
}
