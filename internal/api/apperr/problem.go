package apperr

import (
	"fmt"
	"net/http"

	jsoniter "github.com/json-iterator/go"
)

const contentType = "application/problem+json"

type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"` // unique, fk, not_null, check, invalid, too_long
	Message string `json:"message"`
}

// Problem is an RFC 7807 document, extended with the request id and field errors.
type Problem struct {
	Type        string       `json:"type,omitempty"`
	Title       string       `json:"title"`
	Status      int          `json:"status"`
	Detail      string       `json:"detail,omitempty"`
	Instance    string       `json:"instance,omitempty"`
	RequestID   string       `json:"request_id,omitempty"`
	FieldErrors []FieldError `json:"field_errors,omitempty"`
	Retryable   bool         `json:"retryable,omitempty"`
}

func (p Problem) Error() string {
	if p.Detail != "" {
		return fmt.Sprintf("%d %s: %s", p.Status, p.Title, p.Detail)
	}
	return fmt.Sprintf("%d %s", p.Status, p.Title)
}

// Write fills status, instance and request id when missing and sends p.
// The request id is read from the header the RequestID middleware sets.
func Write(w http.ResponseWriter, r *http.Request, p Problem) {
	if p.Status == 0 {
		p.Status = http.StatusInternalServerError
	}
	if p.Title == "" {
		p.Title = http.StatusText(p.Status)
	}
	if r != nil {
		if p.Instance == "" {
			p.Instance = r.URL.Path
		}
		if p.RequestID == "" {
			p.RequestID = r.Header.Get("X-Request-ID")
		}
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(p.Status)
	_ = jsoniter.NewEncoder(w).Encode(p)
}

func WriteStatus(w http.ResponseWriter, r *http.Request, status int, title, detail string) {
	Write(w, r, Problem{Status: status, Title: title, Detail: detail})
}

// NotFound is the document every unknown book, author or copy gets.
func NotFound(w http.ResponseWriter, r *http.Request) {
	Write(w, r, Problem{Status: http.StatusNotFound})
}
