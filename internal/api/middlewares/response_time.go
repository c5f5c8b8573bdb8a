package middlewares

import (
	"log"
	"net/http"
	"time"
)

// accessWriter records what the handler sent for the access log.
type accessWriter struct {
	http.ResponseWriter
	start  time.Time
	status int
	bytes  int
}

func (w *accessWriter) WriteHeader(code int) {
	if w.status != 0 {
		return
	}
	w.status = code
	w.Header().Set("X-Response-Time", time.Since(w.start).String())
	w.ResponseWriter.WriteHeader(code)
}

func (w *accessWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// ResponseTime stamps X-Response-Time and writes one access log line per request.
func ResponseTime(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		aw := &accessWriter{ResponseWriter: w, start: time.Now()}
		next.ServeHTTP(aw, r)

		if aw.status == 0 {
			aw.Header().Set("X-Response-Time", time.Since(aw.start).String())
			aw.status = http.StatusOK
		}
		log.Printf("[http] %s %s %d %dB %s rid=%s",
			r.Method, r.URL.Path, aw.status, aw.bytes, time.Since(aw.start).Round(time.Microsecond), GetRequestID(r))
	})
}
