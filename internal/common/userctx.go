package common

import (
	"context"
)

// UserContext holds the authenticated identity for the current request,
// populated by the bearer token middleware. Absent (nil) means the request
// is unauthenticated.
type UserContext struct {
	Username string
	Email    string
	Role     string
}

type contextKey int

const userContextKey contextKey = iota

// WithUserContext stores a UserContext in the request context.
func WithUserContext(ctx context.Context, uc *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, uc)
}

// UserContextFromContext retrieves the UserContext from context, or nil if absent.
func UserContextFromContext(ctx context.Context) *UserContext {
	uc, _ := ctx.Value(userContextKey).(*UserContext)
	return uc
}

// ResolveUsername returns the authenticated username from context, or ""
// when no user context is present.
func ResolveUsername(ctx context.Context) string {
	if uc := UserContextFromContext(ctx); uc != nil {
		return uc.Username
	}
	return ""
}
