package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mw "github.com/5w1tchy/locallibrary/internal/api/middlewares"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func visitorEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := mw.VisitorIDFrom(r.Context())
		_, _ = w.Write([]byte(id))
	})
}

func TestSession_IssuesCookie(t *testing.T) {
	h := mw.Session(mw.SessionOptions{TTL: time.Hour})(visitorEcho())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sessionid", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, cookies[0].Value, rec.Body.String())
}

func TestSession_KeepsValidID(t *testing.T) {
	h := mw.Session(mw.SessionOptions{TTL: time.Hour})(visitorEcho())
	id := uuid.NewString()
	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "sessionid", Value: id})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, id, rec.Body.String())
	assert.Empty(t, rec.Result().Cookies())
}

func TestSession_ReplacesGarbage(t *testing.T) {
	h := mw.Session(mw.SessionOptions{TTL: time.Hour})(visitorEcho())
	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "sessionid", Value: "../../etc"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	_, err := uuid.Parse(rec.Body.String())
	assert.NoError(t, err)
}
