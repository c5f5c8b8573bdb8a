package middlewares

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

var ridRe = regexp.MustCompile(`^[A-Za-z0-9_.\-]{1,64}$`)

// RequestID accepts a well-formed inbound X-Request-ID or mints one, and
// echoes it on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get(requestIDHeader)
		if !ridRe.MatchString(rid) {
			rid = newRequestID(time.Now())
		}
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey, rid))
		r.Header.Set(requestIDHeader, rid)
		w.Header().Set(requestIDHeader, rid)

		next.ServeHTTP(w, r)
	})
}

// GetRequestID returns the id set by RequestID, falling back to the raw header.
func GetRequestID(r *http.Request) string {
	if v, _ := r.Context().Value(requestIDKey).(string); v != "" {
		return v
	}
	return r.Header.Get(requestIDHeader)
}

// timestamp prefix keeps ids sortable in logs
func newRequestID(now time.Time) string {
	return now.UTC().Format("20060102T150405Z") + "-" + uuid.NewString()
}
