package middlewares

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"github.com/5w1tchy/locallibrary/internal/api/httpx"
)

type CSRFOptions struct {
	TokenHeader    string // Default: "X-CSRF-Token"
	FormField      string // Default: "csrf_token"
	CookieName     string // Default: "csrf_token"
	CookiePath     string
	CookieSecure   bool
	CookieSameSite http.SameSite
}

func DefaultCSRFOptions() CSRFOptions {
	return CSRFOptions{
		TokenHeader:    "X-CSRF-Token",
		FormField:      "csrf_token",
		CookieName:     "csrf_token",
		CookiePath:     "/",
		CookieSameSite: http.SameSiteStrictMode,
	}
}

// CSRF is a double-submit check: unsafe methods must echo the cookie's token in a
// header or form field. Every request gets the token in its context so form pages
// can embed it. Requests authenticated by a Bearer header carry no ambient
// credentials and are not checked.
func CSRF(opts CSRFOptions) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			expected := ""
			if c, err := r.Cookie(opts.CookieName); err == nil {
				expected = c.Value
			}
			if expected == "" {
				expected = generateCSRFToken()
				setCSRFCookie(w, opts, expected)
				// A fresh cookie cannot validate anything yet.
				if !safeMethod(r.Method) && !hasBearer(r) {
					httpx.ErrorJSON(w, http.StatusForbidden, "CSRF token validation failed")
					return
				}
			}
			r = r.WithContext(context.WithValue(r.Context(), csrfKey, expected))

			if safeMethod(r.Method) || hasBearer(r) {
				next.ServeHTTP(w, r)
				return
			}

			provided := r.Header.Get(opts.TokenHeader)
			if provided == "" {
				provided = r.PostFormValue(opts.FormField)
			}
			if !isValidCSRFToken(expected, provided) {
				httpx.ErrorJSON(w, http.StatusForbidden, "CSRF token validation failed")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CSRFTokenFrom returns the token the CSRF middleware attached to the request.
func CSRFTokenFrom(ctx context.Context) string {
	v, _ := ctx.Value(csrfKey).(string)
	return v
}

func safeMethod(m string) bool {
	return m == http.MethodGet || m == http.MethodHead || m == http.MethodOptions
}

func hasBearer(r *http.Request) bool {
	_, err := bearer(r.Header.Get("Authorization"))
	return err == nil
}

func setCSRFCookie(w http.ResponseWriter, opts CSRFOptions, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     opts.CookieName,
		Value:    token,
		Path:     opts.CookiePath,
		Secure:   opts.CookieSecure,
		HttpOnly: true,
		SameSite: opts.CookieSameSite,
	})
}

func generateCSRFToken() string {
	var b [32]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

func isValidCSRFToken(expected, provided string) bool {
	if expected == "" || provided == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(provided)) == 1
}
