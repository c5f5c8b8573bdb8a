// Package catalog serves the library's pages. Each handler returns the
// rendering context of its page as JSON.
package catalog

import (
	"context"
	"time"

	"github.com/5w1tchy/locallibrary/internal/models"
)

// Store is the catalog data the pages read and write.
type Store interface {
	Counts(ctx context.Context) (models.Counts, error)

	ListBooks(ctx context.Context, limit, offset int) ([]models.Book, int, error)
	GetBook(ctx context.Context, id string) (models.BookDetail, error)
	BooksByAuthor(ctx context.Context, authorID string) ([]models.Book, error)

	ListAuthors(ctx context.Context, limit, offset int) ([]models.Author, int, error)
	GetAuthor(ctx context.Context, id string) (models.Author, error)
	CountAuthorBooks(ctx context.Context, id string) (int, error)
	CreateAuthor(ctx context.Context, in models.AuthorInput) (models.Author, error)
	UpdateAuthor(ctx context.Context, id string, in models.AuthorInput) (models.Author, error)
	DeleteAuthor(ctx context.Context, id string) error

	LoanedBy(ctx context.Context, borrowerID string, limit, offset int) ([]models.BookInstance, int, error)
	GetInstance(ctx context.Context, id string) (models.BookInstance, error)
	RenewInstance(ctx context.Context, id string, due time.Time) error
}

// VisitCounter bumps a per-visitor counter and returns its previous value.
type VisitCounter interface {
	IncrVisits(ctx context.Context, visitorID, key string) (int64, error)
}

type StatsCache interface {
	Counts(ctx context.Context) (counts models.Counts, key string, ok bool)
	StoreCounts(ctx context.Context, key string, counts models.Counts)
	Invalidate(ctx context.Context)
}

type CoverSigner interface {
	CoverURL(ctx context.Context, objectKey string) (string, error)
}

type ViewRecorder interface {
	Enqueue(bookID string)
}

type Options struct {
	BooksPageSize   int
	AuthorsPageSize int
	LoansPageSize   int
	BookListAuxData string

	RenewalDefault   time.Duration
	RenewalMaxAhead  time.Duration
	DeathPlaceholder *time.Time

	Now func() time.Time
}

// Handler holds the page handlers. Stats, Covers and Views are optional.
type Handler struct {
	Store  Store
	Visits VisitCounter
	Stats  StatsCache
	Covers CoverSigner
	Views  ViewRecorder
	Opts   Options
}

func New(store Store, visits VisitCounter, opts Options) *Handler {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	for _, size := range []*int{&opts.BooksPageSize, &opts.AuthorsPageSize, &opts.LoansPageSize} {
		if *size < 1 {
			*size = 10
		}
	}
	if opts.RenewalDefault <= 0 {
		opts.RenewalDefault = 3 * 7 * 24 * time.Hour
	}
	if opts.RenewalMaxAhead <= 0 {
		opts.RenewalMaxAhead = 4 * 7 * 24 * time.Hour
	}
	return &Handler{Store: store, Visits: visits, Opts: opts}
}
