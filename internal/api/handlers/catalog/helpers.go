package catalog

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"

	"github.com/5w1tchy/locallibrary/internal/api/apperr"
	"github.com/5w1tchy/locallibrary/internal/api/httpx"
	"github.com/5w1tchy/locallibrary/internal/api/middlewares"
	"github.com/google/uuid"
)

func notFound(w http.ResponseWriter, r *http.Request) {
	apperr.NotFound(w, r)
}

// storeError maps a store failure: missing rows are 404, the rest go through apperr.
func storeError(w http.ResponseWriter, r *http.Request, err error, what string) {
	if errors.Is(err, sql.ErrNoRows) {
		notFound(w, r)
		return
	}
	log.Printf("[catalog] %s: %v rid=%s", what, err, middlewares.GetRequestID(r))
	apperr.HandleDBError(w, r, err, "Could not "+what)
}

// pathID returns the {id} path value when it is a well-formed UUID.
func pathID(r *http.Request) (string, bool) {
	u, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return "", false
	}
	return u.String(), true
}

// visit bumps key for the current visitor and returns the count seen before.
// Session trouble never fails a page.
func (h *Handler) visit(ctx context.Context, key string) int64 {
	visitor, ok := middlewares.VisitorIDFrom(ctx)
	if !ok || h.Visits == nil {
		return 0
	}
	n, err := h.Visits.IncrVisits(ctx, visitor, key)
	if err != nil {
		log.Printf("[session] incr %s: %v", key, err)
		return 0
	}
	return n
}

// paged runs fetch for the requested page and builds the pager. ok is false
// once a response (404 or error) has been written.
func paged(w http.ResponseWriter, r *http.Request, size int, what string,
	fetch func(limit, offset int) (int, error)) (httpx.PageObj, bool) {
	page, err := httpx.PageNumber(r)
	if err != nil {
		notFound(w, r)
		return httpx.PageObj{}, false
	}
	total, err := fetch(size, httpx.Offset(page, size))
	if err != nil {
		storeError(w, r, err, what)
		return httpx.PageObj{}, false
	}
	p, err := httpx.Paginate(page, size, total)
	if err != nil {
		notFound(w, r)
		return httpx.PageObj{}, false
	}
	return p, true
}

func withPage(ctx httpx.Context, p httpx.PageObj) httpx.Context {
	ctx["is_paginated"] = p.NumPages > 1
	ctx["page_obj"] = p
	return ctx
}

func formContext(r *http.Request, ctx httpx.Context) httpx.Context {
	ctx["csrf_token"] = middlewares.CSRFTokenFrom(r.Context())
	return ctx
}
