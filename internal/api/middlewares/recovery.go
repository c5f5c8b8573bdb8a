package middlewares

import (
	"errors"
	"log"
	"net/http"
	"runtime/debug"

	"github.com/5w1tchy/locallibrary/internal/api/apperr"
)

// Recovery turns a handler panic into a 500 problem document and logs the stack.
// http.ErrAbortHandler is re-raised so net/http can drop the connection quietly.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if err, ok := v.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(v)
			}
			rid := GetRequestID(r)
			if rid == "" {
				rid = "unknown"
			}
			log.Printf("[PANIC] RequestID=%s %s %s: %v\n%s", rid, r.Method, r.URL.Path, v, debug.Stack())
			apperr.Write(w, r, apperr.Problem{Status: http.StatusInternalServerError, RequestID: rid})
		}()
		next.ServeHTTP(w, r)
	})
}
