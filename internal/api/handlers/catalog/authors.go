package catalog

import (
	"errors"
	"net/http"

	"github.com/5w1tchy/locallibrary/internal/api/forms"
	"github.com/5w1tchy/locallibrary/internal/api/httpx"
	"github.com/5w1tchy/locallibrary/internal/models"
	catalogstore "github.com/5w1tchy/locallibrary/internal/store/catalog"
)

type authorItem struct {
	models.Author
	Name string `json:"name"`
	URL  string `json:"url"`
}

func toAuthorItem(a models.Author) authorItem {
	return authorItem{Author: a, Name: a.Name(), URL: a.URL()}
}

// AuthorList: GET /authors/
func (h *Handler) AuthorList(w http.ResponseWriter, r *http.Request) {
	var authors []models.Author
	p, ok := paged(w, r, h.Opts.AuthorsPageSize, "list authors", func(limit, offset int) (int, error) {
		var total int
		var err error
		authors, total, err = h.Store.ListAuthors(r.Context(), limit, offset)
		return total, err
	})
	if !ok {
		return
	}

	items := make([]authorItem, 0, len(authors))
	for _, a := range authors {
		items = append(items, toAuthorItem(a))
	}
	httpx.OK(w, withPage(httpx.Context{"author_list": items}, p))
}

// AuthorDetail: GET /author/{id}
func (h *Handler) AuthorDetail(w http.ResponseWriter, r *http.Request) {
	a, ok := h.loadAuthor(w, r)
	if !ok {
		return
	}
	books, err := h.Store.BooksByAuthor(r.Context(), a.ID)
	if err != nil {
		storeError(w, r, err, "list author books")
		return
	}
	httpx.OK(w, httpx.Context{"author": toAuthorItem(a), "books": bookItems(books)})
}

// AuthorCreate: GET|POST /author/create/
func (h *Handler) AuthorCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.OK(w, formContext(r, httpx.Context{
			"form": forms.InitialAuthor(nil, h.Opts.DeathPlaceholder),
		}))
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.ErrorJSON(w, http.StatusBadRequest, "invalid form body")
		return
	}
	in, form, ok := forms.ParseAuthor(r.PostForm, h.Opts.DeathPlaceholder)
	if !ok {
		httpx.Render(w, http.StatusUnprocessableEntity, formContext(r, httpx.Context{"form": form}))
		return
	}
	a, err := h.Store.CreateAuthor(r.Context(), in)
	if err != nil {
		storeError(w, r, err, "create author")
		return
	}
	h.countsChanged(r.Context())
	httpx.SeeOther(w, r, a.URL())
}

// AuthorUpdate: GET|POST /author/{id}/update/
func (h *Handler) AuthorUpdate(w http.ResponseWriter, r *http.Request) {
	a, ok := h.loadAuthor(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodPost {
		httpx.OK(w, formContext(r, httpx.Context{
			"author": toAuthorItem(a),
			"form":   forms.InitialAuthor(&a, nil),
		}))
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.ErrorJSON(w, http.StatusBadRequest, "invalid form body")
		return
	}
	in, form, ok := forms.ParseAuthor(r.PostForm, nil)
	if !ok {
		httpx.Render(w, http.StatusUnprocessableEntity, formContext(r, httpx.Context{
			"author": toAuthorItem(a),
			"form":   form,
		}))
		return
	}
	updated, err := h.Store.UpdateAuthor(r.Context(), a.ID, in)
	if err != nil {
		storeError(w, r, err, "update author")
		return
	}
	httpx.SeeOther(w, r, updated.URL())
}

// AuthorDelete: GET|POST /author/{id}/delete/
// GET asks for confirmation; POST deletes under the store's delete policy.
func (h *Handler) AuthorDelete(w http.ResponseWriter, r *http.Request) {
	a, ok := h.loadAuthor(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	n, err := h.Store.CountAuthorBooks(ctx, a.ID)
	if err != nil {
		storeError(w, r, err, "count author books")
		return
	}
	confirm := formContext(r, httpx.Context{"author": toAuthorItem(a), "book_count": n})

	if r.Method != http.MethodPost {
		httpx.OK(w, confirm)
		return
	}
	switch err := h.Store.DeleteAuthor(ctx, a.ID); {
	case errors.Is(err, catalogstore.ErrAuthorHasBooks):
		confirm["error"] = "This author still has books and cannot be deleted."
		httpx.Render(w, http.StatusConflict, confirm)
		return
	case err != nil:
		storeError(w, r, err, "delete author")
		return
	}
	h.countsChanged(ctx)
	httpx.SeeOther(w, r, "/")
}

func (h *Handler) loadAuthor(w http.ResponseWriter, r *http.Request) (models.Author, bool) {
	id, ok := pathID(r)
	if !ok {
		notFound(w, r)
		return models.Author{}, false
	}
	a, err := h.Store.GetAuthor(r.Context(), id)
	if err != nil {
		storeError(w, r, err, "load author")
		return models.Author{}, false
	}
	return a, true
}
