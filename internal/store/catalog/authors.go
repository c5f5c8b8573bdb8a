package catalogstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/5w1tchy/locallibrary/internal/models"
	"github.com/5w1tchy/locallibrary/internal/store/dbx"
	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
)

// ListAuthors returns one page of authors ordered by last then first name.
func (s *Store) ListAuthors(ctx context.Context, limit, offset int) ([]models.Author, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, qCountAuthors).Scan(&total); err != nil {
		return nil, 0, err
	}

	q, args, err := pg.From(tblAuthors).
		Select("id", "first_name", "last_name", "date_of_birth", "date_of_death").
		Order(goqu.C("last_name").Asc(), goqu.C("first_name").Asc(), goqu.C("id").Asc()).
		Limit(uint(limit)).Offset(uint(offset)).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build author list query: %w", err)
	}
	out := make([]models.Author, 0, limit)
	if err := sqlx.SelectContext(ctx, s.dbx, &out, q, args...); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// GetAuthor loads one author. Missing authors return sql.ErrNoRows.
func (s *Store) GetAuthor(ctx context.Context, id string) (models.Author, error) {
	var a models.Author
	err := s.db.QueryRowContext(ctx, qGetAuthor, id).Scan(&a.ID, &a.FirstName, &a.LastName, &a.DateOfBirth, &a.DateOfDeath)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Author{}, sql.ErrNoRows
	}
	return a, err
}

func (s *Store) CountAuthorBooks(ctx context.Context, id string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, qCountAuthorBooks, id).Scan(&n)
	return n, err
}

func (s *Store) CreateAuthor(ctx context.Context, in models.AuthorInput) (models.Author, error) {
	var id string
	err := s.db.QueryRowContext(ctx, qInsertAuthor,
		in.FirstName, in.LastName, in.DateOfBirth, in.DateOfDeath,
	).Scan(&id)
	if err != nil {
		return models.Author{}, err
	}
	return models.Author{
		ID:          id,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		DateOfBirth: in.DateOfBirth,
		DateOfDeath: in.DateOfDeath,
	}, nil
}

// UpdateAuthor overwrites the editable fields. Missing authors return sql.ErrNoRows.
func (s *Store) UpdateAuthor(ctx context.Context, id string, in models.AuthorInput) (models.Author, error) {
	err := dbx.ExecOne(ctx, s.db, qUpdateAuthor,
		in.FirstName, in.LastName, in.DateOfBirth, in.DateOfDeath, id,
	)
	if err != nil {
		return models.Author{}, err
	}
	return models.Author{
		ID:          id,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		DateOfBirth: in.DateOfBirth,
		DateOfDeath: in.DateOfDeath,
	}, nil
}

// DeleteAuthor removes an author, applying the store's delete policy to their books.
// Missing authors return sql.ErrNoRows; the protect policy returns ErrAuthorHasBooks.
func (s *Store) DeleteAuthor(ctx context.Context, id string) error {
	return dbx.WithinTx(ctx, s.db, func(tx *sql.Tx) error {
		switch s.policy {
		case models.DeleteCascade:
			if _, err := tx.ExecContext(ctx, qDeleteAuthorInstances, id); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, qDeleteAuthorGenres, id); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, qDeleteAuthorBooks, id); err != nil {
				return err
			}
		case models.DeleteSetNull:
			if _, err := tx.ExecContext(ctx, qOrphanAuthorBooks, id); err != nil {
				return err
			}
		default:
			var n int
			if err := tx.QueryRowContext(ctx, qCountAuthorBooks, id).Scan(&n); err != nil {
				return err
			}
			if n > 0 {
				return ErrAuthorHasBooks
			}
		}
		return dbx.ExecOne(ctx, tx, qDeleteAuthor, id)
	})
}
