package router

import (
	"net/http"

	"github.com/5w1tchy/locallibrary/internal/api/handlers/catalog"
	"github.com/5w1tchy/locallibrary/internal/api/middlewares"
	"github.com/5w1tchy/locallibrary/internal/auth"
	"github.com/5w1tchy/locallibrary/internal/config"
	"github.com/redis/go-redis/v9"
)

// Deps are the handlers and guards the routes are built from.
type Deps struct {
	Catalog  *catalog.Handler
	Accounts *auth.Handler
	Guard    *middlewares.Auth
	RDB      *redis.Client
}

func Router(cfg config.Config, d Deps) http.Handler {
	mux := http.NewServeMux()
	h := d.Catalog

	// Public pages
	mux.HandleFunc("GET /{$}", h.Index)
	mux.HandleFunc("GET /books/{$}", h.BookList)
	mux.HandleFunc("GET /book/{id}", h.BookDetail)
	mux.HandleFunc("GET /authors/{$}", h.AuthorList)
	mux.HandleFunc("GET /author/{id}", h.AuthorDetail)

	// Keep /books and /authors -> trailing slash
	mux.Handle("GET /books", http.RedirectHandler("/books/", http.StatusMovedPermanently))
	mux.Handle("GET /authors", http.RedirectHandler("/authors/", http.StatusMovedPermanently))

	// Login required
	mux.Handle("GET /mybooks/{$}", d.Guard.RequireLogin(http.HandlerFunc(h.LoanedBooks)))

	// Login + permission; GET renders the form, POST submits it.
	renew := d.Guard.RequirePermission(cfg.RenewPerm, http.HandlerFunc(h.Renew))
	mux.Handle("GET /book/{id}/renew/{$}", renew)
	mux.Handle("POST /book/{id}/renew/{$}", renew)

	edit := func(fn http.HandlerFunc) http.Handler {
		return d.Guard.RequirePermission(cfg.AuthorEditPerm, fn)
	}
	for _, m := range []string{http.MethodGet, http.MethodPost} {
		mux.Handle(m+" /author/create/{$}", edit(h.AuthorCreate))
		mux.Handle(m+" /author/{id}/update/{$}", edit(h.AuthorUpdate))
		mux.Handle(m+" /author/{id}/delete/{$}", edit(h.AuthorDelete))
	}

	mux.Handle("GET /csrf", middlewares.CSRFTokenHandler())

	MountAccounts(mux, d.Accounts, d.RDB)
	return mux
}
