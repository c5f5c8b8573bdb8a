package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/5w1tchy/locallibrary/internal/api/middlewares"
	"github.com/5w1tchy/locallibrary/internal/models"
	catalogstore "github.com/5w1tchy/locallibrary/internal/store/catalog"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"
)

const (
	authorAsimov   = "11111111-1111-4111-8111-111111111111"
	authorLeGuin   = "22222222-2222-4222-8222-222222222222"
	bookFoundation = "aaaaaaaa-aaaa-4aaa-8aaa-aaaaaaaaaaaa"
	bookEarthsea   = "bbbbbbbb-bbbb-4bbb-8bbb-bbbbbbbbbbbb"
	copyLoaned     = "cccccccc-cccc-4ccc-8ccc-cccccccccccc"
	copyShelf      = "dddddddd-dddd-4ddd-8ddd-dddddddddddd"
	missingID      = "eeeeeeee-eeee-4eee-8eee-eeeeeeeeeeee"
	reader         = "reader-1"
)

var today = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

func day(s string) *time.Time {
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return &d
}

type fakeStore struct {
	books     map[string]models.BookDetail
	authors   map[string]models.Author
	instances map[string]models.BookInstance
	policy    models.DeletePolicy
	counted   int
	nextID    int
}

func newFakeStore() *fakeStore {
	asimov, leguin := authorAsimov, authorLeGuin
	cover := "covers/foundation.webp"
	reader := reader
	s := &fakeStore{
		authors: map[string]models.Author{
			authorAsimov: {ID: authorAsimov, FirstName: "Isaac", LastName: "Asimov", DateOfBirth: day("1920-01-02")},
			authorLeGuin: {ID: authorLeGuin, FirstName: "Ursula", LastName: "Le Guin"},
		},
		books: map[string]models.BookDetail{
			bookFoundation: {Book: models.Book{ID: bookFoundation, Title: "Foundation", AuthorID: &asimov, AuthorName: "Asimov, Isaac", CoverKey: &cover}},
			bookEarthsea:   {Book: models.Book{ID: bookEarthsea, Title: "A Wizard of Earthsea", AuthorID: &leguin, AuthorName: "Le Guin, Ursula"}},
		},
		instances: map[string]models.BookInstance{
			copyLoaned: {ID: copyLoaned, BookID: bookFoundation, BookTitle: "Foundation", Status: models.StatusOnLoan, DueBack: day("2024-03-08"), BorrowerID: &reader},
			copyShelf:  {ID: copyShelf, BookID: bookEarthsea, BookTitle: "A Wizard of Earthsea", Status: models.StatusAvailable},
		},
		policy: models.DeleteProtect,
	}
	return s
}

func (s *fakeStore) Counts(context.Context) (models.Counts, error) {
	s.counted++
	avail := 0
	for _, bi := range s.instances {
		if bi.Status == models.StatusAvailable {
			avail++
		}
	}
	return models.Counts{Books: len(s.books), Instances: len(s.instances), InstancesAvailable: avail, Authors: len(s.authors)}, nil
}

func (s *fakeStore) ListBooks(_ context.Context, limit, offset int) ([]models.Book, int, error) {
	all := make([]models.Book, 0, len(s.books))
	for _, b := range s.books {
		all = append(all, b.Book)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Title < all[j].Title })
	return window(all, limit, offset), len(all), nil
}

func (s *fakeStore) GetBook(_ context.Context, id string) (models.BookDetail, error) {
	b, ok := s.books[id]
	if !ok {
		return models.BookDetail{}, sql.ErrNoRows
	}
	for _, bi := range s.instances {
		if bi.BookID == id {
			b.Instances = append(b.Instances, bi)
		}
	}
	return b, nil
}

func (s *fakeStore) BooksByAuthor(_ context.Context, authorID string) ([]models.Book, error) {
	out := []models.Book{}
	for _, b := range s.books {
		if b.AuthorID != nil && *b.AuthorID == authorID {
			out = append(out, b.Book)
		}
	}
	return out, nil
}

func (s *fakeStore) ListAuthors(_ context.Context, limit, offset int) ([]models.Author, int, error) {
	all := make([]models.Author, 0, len(s.authors))
	for _, a := range s.authors {
		all = append(all, a)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].LastName < all[j].LastName })
	return window(all, limit, offset), len(all), nil
}

func (s *fakeStore) GetAuthor(_ context.Context, id string) (models.Author, error) {
	a, ok := s.authors[id]
	if !ok {
		return models.Author{}, sql.ErrNoRows
	}
	return a, nil
}

func (s *fakeStore) CountAuthorBooks(ctx context.Context, id string) (int, error) {
	books, _ := s.BooksByAuthor(ctx, id)
	return len(books), nil
}

func (s *fakeStore) CreateAuthor(_ context.Context, in models.AuthorInput) (models.Author, error) {
	s.nextID++
	a := models.Author{
		ID:          fmt.Sprintf("00000000-0000-4000-8000-%012d", s.nextID),
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		DateOfBirth: in.DateOfBirth,
		DateOfDeath: in.DateOfDeath,
	}
	s.authors[a.ID] = a
	return a, nil
}

func (s *fakeStore) UpdateAuthor(_ context.Context, id string, in models.AuthorInput) (models.Author, error) {
	if _, ok := s.authors[id]; !ok {
		return models.Author{}, sql.ErrNoRows
	}
	a := models.Author{ID: id, FirstName: in.FirstName, LastName: in.LastName, DateOfBirth: in.DateOfBirth, DateOfDeath: in.DateOfDeath}
	s.authors[id] = a
	return a, nil
}

func (s *fakeStore) DeleteAuthor(ctx context.Context, id string) error {
	if _, ok := s.authors[id]; !ok {
		return sql.ErrNoRows
	}
	books, _ := s.BooksByAuthor(ctx, id)
	switch s.policy {
	case models.DeleteCascade:
		for _, b := range books {
			delete(s.books, b.ID)
			for iid, bi := range s.instances {
				if bi.BookID == b.ID {
					delete(s.instances, iid)
				}
			}
		}
	case models.DeleteSetNull:
		for _, b := range books {
			d := s.books[b.ID]
			d.AuthorID = nil
			s.books[b.ID] = d
		}
	default:
		if len(books) > 0 {
			return catalogstore.ErrAuthorHasBooks
		}
	}
	delete(s.authors, id)
	return nil
}

func (s *fakeStore) LoanedBy(_ context.Context, borrowerID string, limit, offset int) ([]models.BookInstance, int, error) {
	var all []models.BookInstance
	for _, bi := range s.instances {
		if bi.BorrowerID != nil && *bi.BorrowerID == borrowerID && bi.Status == models.StatusOnLoan {
			all = append(all, bi)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].DueBack.Before(*all[j].DueBack) })
	return window(all, limit, offset), len(all), nil
}

func (s *fakeStore) GetInstance(_ context.Context, id string) (models.BookInstance, error) {
	bi, ok := s.instances[id]
	if !ok {
		return models.BookInstance{}, sql.ErrNoRows
	}
	return bi, nil
}

func (s *fakeStore) RenewInstance(_ context.Context, id string, due time.Time) error {
	bi, ok := s.instances[id]
	if !ok {
		return sql.ErrNoRows
	}
	bi.DueBack = &due
	s.instances[id] = bi
	return nil
}

func window[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return []T{}
	}
	end := min(offset+limit, len(all))
	return all[offset:end]
}

type fakeVisits struct {
	counts map[string]int64
	err    error
}

func (f *fakeVisits) IncrVisits(_ context.Context, visitorID, key string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	k := visitorID + "|" + key
	prev := f.counts[k]
	f.counts[k] = prev + 1
	return prev, nil
}

type fakeStats struct {
	cached      *models.Counts
	invalidated int
}

func (f *fakeStats) key() string { return fmt.Sprintf("v%d", f.invalidated) }

func (f *fakeStats) Counts(context.Context) (models.Counts, string, bool) {
	if f.cached == nil {
		return models.Counts{}, f.key(), false
	}
	return *f.cached, f.key(), true
}

func (f *fakeStats) StoreCounts(_ context.Context, key string, c models.Counts) {
	if key != f.key() {
		return
	}
	f.cached = &c
}

func (f *fakeStats) Invalidate(context.Context) {
	f.cached = nil
	f.invalidated++
}

type fakeCovers struct{}

func (fakeCovers) CoverURL(_ context.Context, key string) (string, error) {
	if key == "" {
		return "", errors.New("empty key")
	}
	return "https://covers.example/" + key + "?sig=1", nil
}

type fakeViews struct{ ids []string }

func (f *fakeViews) Enqueue(id string) { f.ids = append(f.ids, id) }

type fixture struct {
	h      *Handler
	store  *fakeStore
	visits *fakeVisits
	stats  *fakeStats
	views  *fakeViews
	mux    *http.ServeMux
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	placeholder := time.Date(2023, 11, 11, 0, 0, 0, 0, time.UTC)
	f := &fixture{
		store:  newFakeStore(),
		visits: &fakeVisits{counts: map[string]int64{}},
		stats:  &fakeStats{},
		views:  &fakeViews{},
	}
	f.h = New(f.store, f.visits, Options{
		BooksPageSize:    1,
		BookListAuxData:  "This is just some data",
		DeathPlaceholder: &placeholder,
		Now:              func() time.Time { return today },
	})
	f.h.Stats = f.stats
	f.h.Covers = fakeCovers{}
	f.h.Views = f.views

	// Same path patterns as the router, without the guards.
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", f.h.Index)
	mux.HandleFunc("GET /books/{$}", f.h.BookList)
	mux.HandleFunc("GET /book/{id}", f.h.BookDetail)
	mux.HandleFunc("GET /authors/{$}", f.h.AuthorList)
	mux.HandleFunc("GET /author/{id}", f.h.AuthorDetail)
	mux.HandleFunc("GET /mybooks/{$}", f.h.LoanedBooks)
	mux.HandleFunc("/book/{id}/renew/{$}", f.h.Renew)
	mux.HandleFunc("/author/create/{$}", f.h.AuthorCreate)
	mux.HandleFunc("/author/{id}/update/{$}", f.h.AuthorUpdate)
	mux.HandleFunc("/author/{id}/delete/{$}", f.h.AuthorDelete)
	f.mux = mux
	return f
}

type reqOpt func(*http.Request) *http.Request

func asVisitor(id string) reqOpt {
	return func(r *http.Request) *http.Request {
		return r.WithContext(middlewares.WithVisitorID(r.Context(), id))
	}
}

func asUser(id string) reqOpt {
	return func(r *http.Request) *http.Request {
		return r.WithContext(middlewares.WithUserID(r.Context(), id))
	}
}

func (f *fixture) get(path string, opts ...reqOpt) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodGet, path, nil)
	for _, o := range opts {
		r = o(r)
	}
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, r)
	return rec
}

func (f *fixture) post(path string, form url.Values, opts ...reqOpt) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, o := range opts {
		r = o(r)
	}
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, r)
	return rec
}

// data decodes the "data" member of a success envelope.
func data(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var env struct {
		Status string         `json:"status"`
		Data   map[string]any `json:"data"`
	}
	require.NoError(t, jsoniter.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	require.Equal(t, "success", env.Status)
	return env.Data
}
