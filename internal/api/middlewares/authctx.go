package middlewares

import "context"

type ctxKey int

const (
	requestIDKey ctxKey = iota
	userIDKey
	visitorIDKey
	csrfKey
)

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func UserIDFrom(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(userIDKey).(string)
	return v, ok && v != ""
}

// WithVisitorID stores the anonymous session id of the browser.
func WithVisitorID(ctx context.Context, visitorID string) context.Context {
	return context.WithValue(ctx, visitorIDKey, visitorID)
}

func VisitorIDFrom(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(visitorIDKey).(string)
	return v, ok && v != ""
}
