package catalogstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/5w1tchy/locallibrary/internal/models"
	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"
)

var authorNameExpr = goqu.L(`COALESCE(a.last_name || ', ' || a.first_name, '')`).As("author_name")

func booksSelect() *goqu.SelectDataset {
	return pg.From(goqu.T(tblBooks).As("b")).
		LeftJoin(goqu.T(tblAuthors).As("a"), goqu.On(goqu.I("a.id").Eq(goqu.I("b.author_id")))).
		Select(
			goqu.I("b.id"), goqu.I("b.title"), goqu.I("b.summary"), goqu.I("b.isbn"),
			goqu.I("b.author_id"), authorNameExpr, goqu.I("b.cover_key"),
		)
}

// ListBooks returns one page of books ordered by title, plus the total count.
func (s *Store) ListBooks(ctx context.Context, limit, offset int) ([]models.Book, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, qCountBooks).Scan(&total); err != nil {
		return nil, 0, err
	}

	q, args, err := booksSelect().
		Order(goqu.I("b.title").Asc(), goqu.I("b.id").Asc()).
		Limit(uint(limit)).Offset(uint(offset)).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build book list query: %w", err)
	}

	out := make([]models.Book, 0, limit)
	if err := sqlx.SelectContext(ctx, s.dbx, &out, q, args...); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// BooksByAuthor lists every book written by an author, ordered by title.
func (s *Store) BooksByAuthor(ctx context.Context, authorID string) ([]models.Book, error) {
	q, args, err := booksSelect().
		Where(goqu.I("b.author_id").Eq(authorID)).
		Order(goqu.I("b.title").Asc()).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build author books query: %w", err)
	}
	out := []models.Book{}
	if err := sqlx.SelectContext(ctx, s.dbx, &out, q, args...); err != nil {
		return nil, err
	}
	return out, nil
}

// GetBook loads a book with genres and copies. Missing books return sql.ErrNoRows.
func (s *Store) GetBook(ctx context.Context, id string) (models.BookDetail, error) {
	var d models.BookDetail
	var genresJSON []byte
	err := s.db.QueryRowContext(ctx, qGetBook, id).Scan(
		&d.ID, &d.Title, &d.Summary, &d.ISBN, &d.AuthorID, &d.AuthorName, &d.CoverKey, &genresJSON,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.BookDetail{}, sql.ErrNoRows
	} else if err != nil {
		return models.BookDetail{}, err
	}
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(genresJSON, &d.Genres); err != nil {
		return models.BookDetail{}, fmt.Errorf("decode genres: %w", err)
	}

	d.Instances, err = s.instancesOf(ctx, id)
	if err != nil {
		return models.BookDetail{}, err
	}
	d.URL = d.Book.URL()
	return d, nil
}
