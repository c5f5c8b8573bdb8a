package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	mw "github.com/5w1tchy/locallibrary/internal/api/middlewares"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func csrfHandler() http.Handler {
	return mw.CSRF(mw.DefaultCSRFOptions())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(mw.CSRFTokenFrom(r.Context())))
	}))
}

func TestCSRF_GetIssuesToken(t *testing.T) {
	rec := httptest.NewRecorder()
	csrfHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/author/create/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, cookies[0].Value, rec.Body.String())
}

func formPost(token, cookie string) *http.Request {
	form := url.Values{"first_name": {"Ann"}}
	if token != "" {
		form.Set("csrf_token", token)
	}
	r := httptest.NewRequest("POST", "/author/create/", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != "" {
		r.AddCookie(&http.Cookie{Name: "csrf_token", Value: cookie})
	}
	return r
}

func TestCSRF_Post(t *testing.T) {
	cases := []struct {
		name          string
		token, cookie string
		want          int
	}{
		{"matching", "abc123", "abc123", http.StatusOK},
		{"mismatch", "abc123", "other", http.StatusForbidden},
		{"missing token", "", "abc123", http.StatusForbidden},
		{"missing cookie", "abc123", "", http.StatusForbidden},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		csrfHandler().ServeHTTP(rec, formPost(tc.token, tc.cookie))
		assert.Equal(t, tc.want, rec.Code, tc.name)
	}
}

func TestCSRF_HeaderAndBearer(t *testing.T) {
	r := httptest.NewRequest("POST", "/author/1/delete/", nil)
	r.AddCookie(&http.Cookie{Name: "csrf_token", Value: "tok"})
	r.Header.Set("X-CSRF-Token", "tok")
	rec := httptest.NewRecorder()
	csrfHandler().ServeHTTP(rec, r)
	assert.Equal(t, http.StatusOK, rec.Code)

	r = httptest.NewRequest("POST", "/author/1/delete/", nil)
	r.Header.Set("Authorization", "Bearer abc")
	rec = httptest.NewRecorder()
	csrfHandler().ServeHTTP(rec, r)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCSRFTokenHandler(t *testing.T) {
	h := mw.CSRF(mw.DefaultCSRFOptions())(mw.CSRFTokenHandler())
	r := httptest.NewRequest("GET", "/csrf", nil)
	r.AddCookie(&http.Cookie{Name: "csrf_token", Value: "known"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.JSONEq(t, `{"csrf_token":"known"}`, rec.Body.String())
}
