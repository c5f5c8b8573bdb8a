package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/5w1tchy/locallibrary/internal/api/handlers/catalog"
	"github.com/5w1tchy/locallibrary/internal/api/middlewares"
	"github.com/5w1tchy/locallibrary/internal/auth"
	"github.com/5w1tchy/locallibrary/internal/config"
	jwtutil "github.com/5w1tchy/locallibrary/internal/security/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type readerOnly struct{}

func (readerOnly) TokenVersion(context.Context, string) (int, error)           { return 0, nil }
func (readerOnly) HasPermission(context.Context, string, string) (bool, error) { return false, nil }

func newTestRouter(t *testing.T) (http.Handler, *jwtutil.Signer) {
	t.Helper()
	signer := jwtutil.New(jwtutil.Config{Secret: []byte("0123456789abcdef0123456789abcdef"), AccessTTL: time.Minute})
	cfg := config.Config{RenewPerm: config.PermCanMarkReturned, AuthorEditPerm: config.PermCanMarkReturned}
	// Guarded routes are rejected before the handlers touch a store.
	return Router(cfg, Deps{
		Catalog:  catalog.New(nil, nil, catalog.Options{}),
		Accounts: auth.New(nil, nil, signer, nil),
		Guard:    middlewares.NewAuth(signer, readerOnly{}, config.DefaultLoginURL),
	}), signer
}

func serve(h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestRouter_LoginRequiredRedirects(t *testing.T) {
	h, _ := newTestRouter(t)
	for _, path := range []string{"/mybooks/", "/author/create/", "/book/cccccccc-cccc-4ccc-8ccc-cccccccccccc/renew/"} {
		rec := serve(h, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusFound, rec.Code, path)
		assert.Contains(t, rec.Header().Get("Location"), "/user/accounts/login?next=", path)
	}
}

func TestRouter_PermissionDenied(t *testing.T) {
	h, signer := newTestRouter(t)
	tok, _, err := signer.SignAccess("reader-1", 0)
	require.NoError(t, err)

	for _, path := range []string{"/author/create/", "/book/cccccccc-cccc-4ccc-8ccc-cccccccccccc/renew/"} {
		r := httptest.NewRequest(http.MethodGet, path, nil)
		r.AddCookie(&http.Cookie{Name: "access_token", Value: tok})
		assert.Equal(t, http.StatusForbidden, serve(h, r).Code, path)
	}
}

func TestRouter_Misc(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/books", nil))
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/books/", rec.Header().Get("Location"))

	rec = serve(h, httptest.NewRequest(http.MethodDelete, "/author/create/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/nope/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
