package middleware

import (
	"context"

	"github.com/notesfs/notes-service/internal/models"
)

type contextKey int

const userContextKey contextKey = iota

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFrom returns the authenticated user attached by the auth middleware,
// or nil on routes that never passed through it.
func UserFrom(ctx context.Context) *models.User {
	user, _ := ctx.Value(userContextKey).(*models.User)
	return user
}
