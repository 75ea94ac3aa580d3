package auth

import (
	"context"
	"errors"
)

var ErrNotLoggedIn = errors.New("not logged in")

var _ Checker = (*LoginChecker)(nil)
var _ Checker = (*LoginTestChecker)(nil)

// Checker resolves a session token to the id of the logged-in user.
type Checker interface {
	UserIDForToken(ctx context.Context, token string) (string, error)
}

type userIDContextKey struct{}

// ContextWithUserID attaches the authenticated user id to the request context.
// Handlers read it back with UserIDFromContext instead of reaching for any
// ambient session state.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey{}, userID)
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDContextKey{}).(string)
	return userID, ok && userID != ""
}
