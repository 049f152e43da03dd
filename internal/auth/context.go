package auth

import (
	"context"

	"github.com/yatube/yatube-backend/internal/models"
)

type contextKey string

const userKey = contextKey("currentUser")

// WithUser stores the authenticated user in the context.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFrom extracts the authenticated user from the context. The second
// return is false for anonymous requests.
func UserFrom(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok && user != nil
}
