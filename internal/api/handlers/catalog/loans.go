package catalog

import (
	"net/http"

	"github.com/5w1tchy/locallibrary/internal/api/forms"
	"github.com/5w1tchy/locallibrary/internal/api/httpx"
	"github.com/5w1tchy/locallibrary/internal/api/middlewares"
	"github.com/5w1tchy/locallibrary/internal/models"
)

type loanItem struct {
	models.BookInstance
	StatusLabel string `json:"status_label"`
	IsOverdue   bool   `json:"is_overdue"`
	BookURL     string `json:"book_url"`
}

// LoanedBooks: GET /mybooks/ (login required)
func (h *Handler) LoanedBooks(w http.ResponseWriter, r *http.Request) {
	userID, ok := middlewares.UserIDFrom(r.Context())
	if !ok {
		httpx.ErrorJSON(w, http.StatusUnauthorized, "login required")
		return
	}

	var loans []models.BookInstance
	p, ok := paged(w, r, h.Opts.LoansPageSize, "list loans", func(limit, offset int) (int, error) {
		var total int
		var err error
		loans, total, err = h.Store.LoanedBy(r.Context(), userID, limit, offset)
		return total, err
	})
	if !ok {
		return
	}

	now := h.Opts.Now()
	items := make([]loanItem, 0, len(loans))
	for _, bi := range loans {
		items = append(items, loanItem{
			BookInstance: bi,
			StatusLabel:  bi.Status.Label(),
			IsOverdue:    bi.IsOverdue(now),
			BookURL:      "/book/" + bi.BookID,
		})
	}
	httpx.OK(w, withPage(httpx.Context{"bookinstance_list": items}, p))
}

// Renew: GET|POST /book/{id}/renew/ where {id} is the copy's id.
// An invalid date re-renders the form with 422 and leaves due_back alone.
func (h *Handler) Renew(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		notFound(w, r)
		return
	}
	ctx := r.Context()
	bi, err := h.Store.GetInstance(ctx, id)
	if err != nil {
		storeError(w, r, err, "load book instance")
		return
	}

	now := h.Opts.Now()
	if r.Method != http.MethodPost {
		httpx.OK(w, formContext(r, httpx.Context{
			"book_instance": bi,
			"form":          forms.InitialRenewal(now, h.Opts.RenewalDefault, h.Opts.RenewalMaxAhead),
		}))
		return
	}

	if err := r.ParseForm(); err != nil {
		httpx.ErrorJSON(w, http.StatusBadRequest, "invalid form body")
		return
	}
	due, form, valid := forms.ParseRenewal(r.PostForm, now, h.Opts.RenewalMaxAhead)
	if !valid {
		httpx.Render(w, http.StatusUnprocessableEntity, formContext(r, httpx.Context{
			"book_instance": bi,
			"form":          form,
		}))
		return
	}
	if err := h.Store.RenewInstance(ctx, bi.ID, due); err != nil {
		storeError(w, r, err, "renew book instance")
		return
	}
	httpx.SeeOther(w, r, "/book/"+bi.BookID)
}
