package catalogstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/5w1tchy/locallibrary/internal/models"
	"github.com/5w1tchy/locallibrary/internal/store/dbx"
	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
)

func instancesSelect() *goqu.SelectDataset {
	return pg.From(goqu.T(tblInstances).As("bi")).
		Join(goqu.T(tblBooks).As("b"), goqu.On(goqu.I("b.id").Eq(goqu.I("bi.book_id")))).
		Select(
			goqu.I("bi.id"), goqu.I("bi.book_id"), goqu.I("b.title").As("book_title"),
			goqu.I("bi.imprint"), goqu.I("bi.due_back"), goqu.I("bi.status"), goqu.I("bi.borrower_id"),
		)
}

func (s *Store) instancesOf(ctx context.Context, bookID string) ([]models.BookInstance, error) {
	q, args, err := instancesSelect().
		Where(goqu.I("bi.book_id").Eq(bookID)).
		Order(goqu.I("bi.due_back").Asc().NullsFirst(), goqu.I("bi.id").Asc()).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build instances query: %w", err)
	}
	out := []models.BookInstance{}
	if err := sqlx.SelectContext(ctx, s.dbx, &out, q, args...); err != nil {
		return nil, err
	}
	return out, nil
}

// LoanedBy lists copies on loan to a borrower, soonest due first.
func (s *Store) LoanedBy(ctx context.Context, borrowerID string, limit, offset int) ([]models.BookInstance, int, error) {
	var total int
	err := s.db.QueryRowContext(ctx, qCountLoans,
		borrowerID, string(models.StatusOnLoan),
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	q, args, err := instancesSelect().
		Where(
			goqu.I("bi.borrower_id").Eq(borrowerID),
			goqu.I("bi.status").Eq(string(models.StatusOnLoan)),
		).
		Order(goqu.I("bi.due_back").Asc(), goqu.I("bi.id").Asc()).
		Limit(uint(limit)).Offset(uint(offset)).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build loans query: %w", err)
	}
	out := make([]models.BookInstance, 0, limit)
	if err := sqlx.SelectContext(ctx, s.dbx, &out, q, args...); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// GetInstance loads one copy. Missing copies return sql.ErrNoRows.
func (s *Store) GetInstance(ctx context.Context, id string) (models.BookInstance, error) {
	var bi models.BookInstance
	err := s.db.QueryRowContext(ctx, qGetInstance, id).
		Scan(&bi.ID, &bi.BookID, &bi.BookTitle, &bi.Imprint, &bi.DueBack, &bi.Status, &bi.BorrowerID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.BookInstance{}, sql.ErrNoRows
	}
	return bi, err
}

// RenewInstance moves a copy's due date.
func (s *Store) RenewInstance(ctx context.Context, id string, due time.Time) error {
	return dbx.ExecOne(ctx, s.db, qRenewInstance, due, id)
}
