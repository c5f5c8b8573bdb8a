// Package httpx writes the JSON bodies every page and endpoint answers with.
package httpx

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Context is a page's rendering context.
type Context map[string]any

// Envelope wraps every page body: {"status":"success","data":{...}}.
type Envelope struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
	Error  string `json:"error,omitempty"`
}

// CodedError is the body of machine-readable auth failures.
type CodedError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func OK(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, Envelope{Status: "success", Data: data})
}

// Render writes a rendering context with an explicit status (422 for a form with errors).
func Render(w http.ResponseWriter, status int, ctx Context) {
	WriteJSON(w, status, Envelope{Status: "success", Data: ctx})
}

func ErrorJSON(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Envelope{Status: "error", Error: message})
}

func ErrorCode(w http.ResponseWriter, status int, code, msg string) {
	var e CodedError
	e.Error.Code = code
	e.Error.Message = msg
	WriteJSON(w, status, e)
}

// SeeOther redirects after a successful form post. The code is 302, as a
// browser form flow expects.
func SeeOther(w http.ResponseWriter, r *http.Request, url string) {
	http.Redirect(w, r, url, http.StatusFound)
}
