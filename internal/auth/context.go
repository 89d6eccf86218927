package auth

import (
	"context"

	"github.com/socialvote/socialvote/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const userContextKey contextKey = "auth_user"

// ContextWithUser stores the authenticated user in ctx.
func ContextWithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the authenticated user, or nil if the request
// did not pass through the auth middleware.
func UserFromContext(ctx context.Context) *model.User {
	user, ok := ctx.Value(userContextKey).(*model.User)
	if !ok {
		return nil
	}
	return user
}

// MustUserFromContext panics when no user is present; use only on routes
// guarded by the auth middleware.
func MustUserFromContext(ctx context.Context) *model.User {
	user := UserFromContext(ctx)
	if user == nil {
		panic("auth user not found - ensure auth middleware is applied")
	}
	return user
}

// UserIDFromContext returns the authenticated user id or "".
func UserIDFromContext(ctx context.Context) string {
	if user := UserFromContext(ctx); user != nil {
		return user.ID
	}
	return ""
}
