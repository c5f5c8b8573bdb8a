package middlewares

import (
	"net/http"

	"github.com/5w1tchy/locallibrary/internal/api/httpx"
)

// CSRFTokenHandler hands the current token to script clients. Mount it behind CSRF.
func CSRFTokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{
			"csrf_token": CSRFTokenFrom(r.Context()),
		})
	}
}
