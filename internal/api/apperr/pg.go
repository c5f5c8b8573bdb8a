package apperr

import (
	"errors"
	"net/http"
	"strings"

	"github.com/jackc/pgconn"
)

// Constraint names from migrations/0001_catalog.sql mapped to form fields.
var constraintField = map[string]string{
	"books_author_id_fkey":            "author_id",
	"books_isbn_key":                  "isbn",
	"book_instances_book_id_fkey":     "book_id",
	"book_instances_borrower_id_fkey": "borrower_id",
	"book_genres_genre_id_fkey":       "genre_id",
	"authors_death_after_birth":       "date_of_death",
	"book_instances_status_check":     "status",
}

// Columns looked for in a PG error detail when the constraint is unknown.
var detailColumns = []string{"author_id", "book_id", "borrower_id", "genre_id", "isbn", "date_of_death", "due_back", "id"}

// pgRule says how one SQLSTATE turns into a Problem.
type pgRule struct {
	status    int
	code      string // FieldError code; empty means no field error
	message   string
	field     string // used when neither constraint nor detail names one
	retryable bool
}

var pgRules = map[string]pgRule{
	"23505": {status: http.StatusConflict, code: "unique", message: "value already exists", field: "resource"},
	"23503": {status: http.StatusConflict, code: "fk", message: "record is referenced by other records", field: "resource"},
	"23502": {status: http.StatusBadRequest, code: "not_null", message: "This field is required.", field: "field"},
	"23514": {status: http.StatusUnprocessableEntity, code: "check", message: "constraint failed", field: "field"},
	"22P02": {status: http.StatusBadRequest, code: "invalid", message: "invalid format", field: "id"},
	"22007": {status: http.StatusBadRequest, code: "invalid", message: "Enter a valid date.", field: "date"},
	"22008": {status: http.StatusBadRequest, code: "invalid", message: "date out of range", field: "date"},
	"22001": {status: http.StatusBadRequest, code: "too_long", message: "value is too long", field: "field"},
	"40001": {status: http.StatusConflict, message: "transaction conflict, please retry", retryable: true},
	"40P01": {status: http.StatusConflict, message: "deadlock detected, please retry", retryable: true},
}

func fieldOf(pg *pgconn.PgError) string {
	if f, ok := constraintField[pg.ConstraintName]; ok {
		return f
	}
	if pg.ColumnName != "" {
		return pg.ColumnName
	}
	for _, k := range detailColumns {
		if strings.Contains(pg.Detail, k) {
			return k
		}
	}
	return ""
}

// FromPG maps a *pgconn.PgError to a Problem. ok is false for any other error.
// Unknown SQLSTATEs become a bare 500.
func FromPG(err error) (p Problem, ok bool) {
	var pg *pgconn.PgError
	if !errors.As(err, &pg) {
		return Problem{}, false
	}

	rule, known := pgRules[pg.Code]
	if !known {
		return Problem{Status: http.StatusInternalServerError, Title: "Database error"}, true
	}

	p = Problem{Status: rule.status, Title: http.StatusText(rule.status), Retryable: rule.retryable}
	if rule.code == "" {
		p.Detail = rule.message
		return p, true
	}
	field := fieldOf(pg)
	if field == "" {
		field = rule.field
	}
	p.FieldErrors = []FieldError{{Field: field, Code: rule.code, Message: rule.message}}
	return p, true
}

// HandleDBError writes err as a Problem: mapped when it comes from Postgres,
// a 500 titled fallbackTitle otherwise. It reports false only for a nil err.
func HandleDBError(w http.ResponseWriter, r *http.Request, err error, fallbackTitle string) bool {
	if err == nil {
		return false
	}
	if p, ok := FromPG(err); ok {
		Write(w, r, p)
		return true
	}
	Write(w, r, Problem{Status: http.StatusInternalServerError, Title: fallbackTitle})
	return true
}
