package auth

import (
	"context"
	"errors"
	"time"
)

var ErrRefreshInvalid = errors.New("invalid refresh token")

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type User struct {
	ID           string
	Email        string
	Username     string
	PasswordHash string
	TokenVersion int
	Status       string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u User) Active() bool { return u.Status == "" || u.Status == "active" }

// UserStore is the account lookup the login endpoints need.
type UserStore interface {
	FindUserByEmail(ctx context.Context, email string) (User, error)
	UpdateUserPasswordHash(ctx context.Context, userID, newHash string) error
	TokenVersion(ctx context.Context, userID string) (int, error)
}

// RefreshTokens persists opaque refresh tokens.
type RefreshTokens interface {
	Issue(ctx context.Context, userID string, tokenVersion int) (string, error)
	// Consume returns the owner of a token and invalidates it.
	Consume(ctx context.Context, token string) (userID string, tokenVersion int, err error)
	Revoke(ctx context.Context, token string) error
}

// VisitorSessions holds the anonymous per-visitor counters. Logout flushes them.
type VisitorSessions interface {
	Flush(ctx context.Context, visitorID string) error
}
