package auth

import (
	"context"
	"database/sql"
	"strings"
)

type SQLStore struct {
	DB *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{DB: db} }

func (s *SQLStore) FindUserByEmail(ctx context.Context, email string) (User, error) {
	const q = `
		SELECT id, email, username, password_hash,
		       COALESCE(token_version,1) AS token_version,
		       status, role, created_at, updated_at
		FROM public.users
		WHERE lower(email) = lower($1)
		LIMIT 1;
	`
	var u User
	err := s.DB.QueryRowContext(ctx, q, strings.TrimSpace(email)).Scan(
		&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.TokenVersion,
		&u.Status, &u.Role, &u.CreatedAt, &u.UpdatedAt,
	)
	return u, err
}

func (s *SQLStore) UpdateUserPasswordHash(ctx context.Context, userID, newHash string) error {
	const q = `UPDATE public.users SET password_hash = $1, updated_at = now() WHERE id = $2;`
	_, err := s.DB.ExecContext(ctx, q, newHash, userID)
	return err
}

func (s *SQLStore) TokenVersion(ctx context.Context, userID string) (int, error) {
	var tv int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COALESCE(token_version,1) FROM public.users WHERE id = $1 AND status = 'active'`, userID,
	).Scan(&tv)
	return tv, err
}

// HasPermission reports whether a user holds a permission codename. Admins hold all of them.
func (s *SQLStore) HasPermission(ctx context.Context, userID, perm string) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM public.users u
			WHERE u.id = $1 AND u.status = 'active' AND u.role = 'admin'
		) OR EXISTS (
			SELECT 1 FROM public.user_permissions p
			WHERE p.user_id = $1 AND p.codename = $2
		)`
	var ok bool
	err := s.DB.QueryRowContext(ctx, q, userID, perm).Scan(&ok)
	return ok, err
}
