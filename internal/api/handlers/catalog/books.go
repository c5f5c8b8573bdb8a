package catalog

import (
	"log"
	"net/http"

	"github.com/5w1tchy/locallibrary/internal/api/httpx"
	"github.com/5w1tchy/locallibrary/internal/models"
	"github.com/5w1tchy/locallibrary/internal/session"
)

type bookItem struct {
	models.Book
	URL string `json:"url"`
}

func bookItems(books []models.Book) []bookItem {
	out := make([]bookItem, 0, len(books))
	for _, b := range books {
		out = append(out, bookItem{Book: b, URL: b.URL()})
	}
	return out
}

// BookList: GET /books/
func (h *Handler) BookList(w http.ResponseWriter, r *http.Request) {
	var books []models.Book
	p, ok := paged(w, r, h.Opts.BooksPageSize, "list books", func(limit, offset int) (int, error) {
		var total int
		var err error
		books, total, err = h.Store.ListBooks(r.Context(), limit, offset)
		return total, err
	})
	if !ok {
		return
	}

	httpx.OK(w, withPage(httpx.Context{
		"my_book_list": bookItems(books),
		"some_data":    h.Opts.BookListAuxData,
	}, p))
}

type instanceItem struct {
	models.BookInstance
	StatusLabel string `json:"status_label"`
}

// BookDetail: GET /book/{id}
// An unknown book is a 404 and leaves the visitor's counters alone.
func (h *Handler) BookDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		notFound(w, r)
		return
	}
	ctx := r.Context()
	book, err := h.Store.GetBook(ctx, id)
	if err != nil {
		storeError(w, r, err, "load book")
		return
	}

	visits := h.visit(ctx, session.BookVisitsKey(book.ID))
	if h.Views != nil {
		h.Views.Enqueue(book.ID)
	}

	instances := make([]instanceItem, 0, len(book.Instances))
	for _, bi := range book.Instances {
		instances = append(instances, instanceItem{BookInstance: bi, StatusLabel: bi.Status.Label()})
	}
	if book.URL == "" {
		book.URL = book.Book.URL()
	}

	out := httpx.Context{
		"book":           book,
		"book_instances": instances,
		"num_visits":     visits,
	}
	if book.CoverKey != nil && h.Covers != nil {
		if u, err := h.Covers.CoverURL(ctx, *book.CoverKey); err != nil {
			log.Printf("[catalog] cover for book %s: %v", book.ID, err)
		} else {
			out["cover_url"] = u
		}
	}
	httpx.OK(w, out)
}
