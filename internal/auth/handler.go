package auth

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/5w1tchy/locallibrary/internal/api/httpx"
	"github.com/5w1tchy/locallibrary/internal/api/middlewares"
	jwtutil "github.com/5w1tchy/locallibrary/internal/security/jwt"
	"github.com/5w1tchy/locallibrary/internal/security/password"
	jsoniter "github.com/json-iterator/go"
)

const (
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"
	refreshPath   = "/user/accounts/"
)

type Handler struct {
	Store     UserStore
	Refresh   RefreshTokens
	Tokens    *jwtutil.Signer
	Passwords *password.Hasher
	Sessions  VisitorSessions

	RefreshTTL    time.Duration
	SecureCookies bool
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Next     string `json:"next"`
}

func New(store UserStore, refresh RefreshTokens, tokens *jwtutil.Signer, hasher *password.Hasher) *Handler {
	return &Handler{Store: store, Refresh: refresh, Tokens: tokens, Passwords: hasher, RefreshTTL: 30 * 24 * time.Hour}
}

// LoginPage returns the login form context, carrying ?next= through.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	httpx.OK(w, httpx.Context{
		"next":   SafeNext(r.URL.Query().Get("next")),
		"fields": []string{"email", "password"},
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	creds, err := readCredentials(r)
	if err != nil {
		httpx.ErrorCode(w, http.StatusBadRequest, "bad_request", "Invalid request body")
		return
	}
	if creds.Email == "" || creds.Password == "" {
		httpx.ErrorCode(w, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password")
		return
	}

	ctx := r.Context()
	u, err := h.Store.FindUserByEmail(ctx, creds.Email)
	if err != nil || u.ID == "" || !u.Active() {
		httpx.ErrorCode(w, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password")
		return
	}
	ok, needsRehash, err := h.Passwords.Verify(creds.Password, u.PasswordHash)
	if err != nil || !ok {
		httpx.ErrorCode(w, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password")
		return
	}
	if needsRehash {
		if phc, err := h.Passwords.Hash(creds.Password); err == nil {
			if err := h.Store.UpdateUserPasswordHash(ctx, u.ID, phc); err != nil {
				log.Printf("[auth] rehash user=%s: %v", u.ID, err)
			}
		}
	}

	pair, ok := h.issuePair(w, r, u.ID, u.TokenVersion)
	if !ok {
		return
	}
	if next := SafeNext(creds.Next); next != "" {
		httpx.SeeOther(w, r, next)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pair)
}

func (h *Handler) RefreshTokens(w http.ResponseWriter, r *http.Request) {
	token := ""
	if c, err := r.Cookie(RefreshCookie); err == nil {
		token = c.Value
	}
	if token == "" {
		var body struct {
			RefreshToken string `json:"refresh_token"`
		}
		_ = jsoniter.NewDecoder(r.Body).Decode(&body)
		token = body.RefreshToken
	}
	if token == "" {
		httpx.ErrorCode(w, http.StatusBadRequest, "bad_request", "Missing refresh token")
		return
	}

	ctx := r.Context()
	userID, tv, err := h.Refresh.Consume(ctx, token)
	if err != nil {
		httpx.ErrorCode(w, http.StatusUnauthorized, "invalid_refresh", "Invalid refresh token")
		return
	}
	dbVer, err := h.Store.TokenVersion(ctx, userID)
	if err != nil || dbVer != tv {
		httpx.ErrorCode(w, http.StatusUnauthorized, "token_revoked", "Token has been revoked")
		return
	}

	pair, ok := h.issuePair(w, r, userID, dbVer)
	if !ok {
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pair)
}

// Logout drops the refresh token and both cookies, then sends the user home.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(RefreshCookie); err == nil {
		if err := h.Refresh.Revoke(r.Context(), c.Value); err != nil {
			log.Printf("[auth] revoke refresh: %v", err)
		}
	}
	if id, ok := middlewares.VisitorIDFrom(r.Context()); ok && h.Sessions != nil {
		if err := h.Sessions.Flush(r.Context(), id); err != nil {
			log.Printf("[auth] flush session %s: %v", id, err)
		}
	}
	h.clearCookies(w)
	httpx.SeeOther(w, r, "/")
}

func (h *Handler) issuePair(w http.ResponseWriter, r *http.Request, userID string, tv int) (TokenPair, bool) {
	access, _, err := h.Tokens.SignAccess(userID, tv)
	if err != nil {
		httpx.ErrorCode(w, http.StatusInternalServerError, "jwt_error", "Failed to sign access token")
		return TokenPair{}, false
	}
	refresh, err := h.Refresh.Issue(r.Context(), userID, tv)
	if err != nil {
		httpx.ErrorCode(w, http.StatusInternalServerError, "refresh_error", "Failed to issue refresh token")
		return TokenPair{}, false
	}
	h.setCookies(w, access, refresh)
	return TokenPair{AccessToken: access, RefreshToken: refresh}, true
}

func (h *Handler) setCookies(w http.ResponseWriter, access, refresh string) {
	http.SetCookie(w, &http.Cookie{
		Name: AccessCookie, Value: access, Path: "/",
		MaxAge: int(h.Tokens.AccessTTL().Seconds()), HttpOnly: true, Secure: h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name: RefreshCookie, Value: refresh, Path: refreshPath,
		MaxAge: int(h.RefreshTTL.Seconds()), HttpOnly: true, Secure: h.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *Handler) clearCookies(w http.ResponseWriter) {
	for name, path := range map[string]string{AccessCookie: "/", RefreshCookie: refreshPath} {
		http.SetCookie(w, &http.Cookie{
			Name: name, Value: "", Path: path, MaxAge: -1,
			HttpOnly: true, Secure: h.SecureCookies,
		})
	}
}

func readCredentials(r *http.Request) (credentials, error) {
	var c credentials
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := jsoniter.NewDecoder(r.Body).Decode(&c); err != nil {
			return credentials{}, err
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return credentials{}, err
		}
		c = credentials{
			Email:    r.PostForm.Get("email"),
			Password: r.PostForm.Get("password"),
			Next:     r.PostForm.Get("next"),
		}
	}
	if c.Next == "" {
		c.Next = r.URL.Query().Get("next")
	}
	c.Email = strings.TrimSpace(c.Email)
	return c, nil
}

// SafeNext keeps only same-site absolute paths; anything else becomes "".
func SafeNext(next string) string {
	switch {
	case next == "", !strings.HasPrefix(next, "/"),
		strings.HasPrefix(next, "//"), strings.HasPrefix(next, "/\\"),
		strings.ContainsAny(next, "\r\n"):
		return ""
	}
	return next
}
