package catalogstore

import (
	"database/sql"
	"errors"
	"strings"
	"unicode"

	"github.com/5w1tchy/locallibrary/internal/models"
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jinzhu/inflection"
	"github.com/jmoiron/sqlx"
)

// ErrAuthorHasBooks is returned by DeleteAuthor under the protect policy.
var ErrAuthorHasBooks = errors.New("author still has books")

var (
	tblBooks      = tableFor("Book")
	tblAuthors    = tableFor("Author")
	tblInstances  = tableFor("BookInstance")
	tblGenres     = tableFor("Genre")
	tblBookGenres = tableFor("BookGenre")

	pg = goqu.Dialect("postgres")
)

// Store is the PostgreSQL-backed catalog.
type Store struct {
	db     *sql.DB
	dbx    *sqlx.DB
	policy models.DeletePolicy
}

type Option func(*Store)

// WithDeletePolicy sets how DeleteAuthor treats books that reference the author.
func WithDeletePolicy(p models.DeletePolicy) Option {
	return func(s *Store) { s.policy = p }
}

func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{
		db:     db,
		dbx:    sqlx.NewDb(db, "pgx"),
		policy: models.DeleteProtect,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) DeletePolicy() models.DeletePolicy { return s.policy }

// tableFor derives a table name from an entity name: "BookInstance" -> "book_instances".
func tableFor(entity string) string {
	runes := []rune(entity)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && unicode.IsLower(runes[i-1]) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return inflection.Plural(b.String())
}
