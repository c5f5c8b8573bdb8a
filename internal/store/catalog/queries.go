package catalogstore

import "fmt"

// Hand-written statements, built from the derived table names so the whole
// store agrees on them.
var (
	qCounts = fmt.Sprintf(`
SELECT
	(SELECT COUNT(*) FROM %[1]s),
	(SELECT COUNT(*) FROM %[2]s),
	(SELECT COUNT(*) FROM %[2]s WHERE status = $1),
	(SELECT COUNT(*) FROM %[3]s)`, tblBooks, tblInstances, tblAuthors)

	qCountBooks   = `SELECT COUNT(*) FROM ` + tblBooks
	qCountAuthors = `SELECT COUNT(*) FROM ` + tblAuthors

	qGetBook = fmt.Sprintf(`
	SELECT
		b.id, b.title, b.summary, b.isbn, b.author_id,
		COALESCE(a.last_name || ', ' || a.first_name, ''),
		b.cover_key,
		COALESCE(json_agg(json_build_object('id', g.id, 'name', g.name) ORDER BY g.name)
			FILTER (WHERE g.id IS NOT NULL), '[]')
	FROM %s b
	LEFT JOIN %s a      ON a.id = b.author_id
	LEFT JOIN %s bg ON bg.book_id = b.id
	LEFT JOIN %s g       ON g.id = bg.genre_id
	WHERE b.id = $1
	GROUP BY b.id, a.last_name, a.first_name`, tblBooks, tblAuthors, tblBookGenres, tblGenres)

	qGetAuthor = `SELECT id, first_name, last_name, date_of_birth, date_of_death FROM ` + tblAuthors + ` WHERE id = $1`

	qCountAuthorBooks = `SELECT COUNT(*) FROM ` + tblBooks + ` WHERE author_id = $1`

	qInsertAuthor = fmt.Sprintf(`
		INSERT INTO %s (first_name, last_name, date_of_birth, date_of_death)
		VALUES ($1, $2, $3, $4)
		RETURNING id::text`, tblAuthors)

	qUpdateAuthor = fmt.Sprintf(`
		UPDATE %s
		SET first_name = $1, last_name = $2, date_of_birth = $3, date_of_death = $4
		WHERE id = $5`, tblAuthors)

	qDeleteAuthor = `DELETE FROM ` + tblAuthors + ` WHERE id = $1`

	qDeleteAuthorInstances = fmt.Sprintf(`
				DELETE FROM %s
				WHERE book_id IN (SELECT id FROM %s WHERE author_id = $1)`, tblInstances, tblBooks)
	qDeleteAuthorGenres = fmt.Sprintf(`
				DELETE FROM %s
				WHERE book_id IN (SELECT id FROM %s WHERE author_id = $1)`, tblBookGenres, tblBooks)
	qDeleteAuthorBooks = `DELETE FROM ` + tblBooks + ` WHERE author_id = $1`
	qOrphanAuthorBooks = `UPDATE ` + tblBooks + ` SET author_id = NULL WHERE author_id = $1`

	qCountLoans = `SELECT COUNT(*) FROM ` + tblInstances + ` WHERE borrower_id = $1 AND status = $2`

	qGetInstance = fmt.Sprintf(`
	SELECT bi.id, bi.book_id, b.title, bi.imprint, bi.due_back, bi.status, bi.borrower_id
	FROM %s bi
	JOIN %s b ON b.id = bi.book_id
	WHERE bi.id = $1`, tblInstances, tblBooks)

	qRenewInstance = `UPDATE ` + tblInstances + ` SET due_back = $1 WHERE id = $2`
)
