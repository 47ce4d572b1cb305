// internal/session/context.go
//
// Request-context carrier for the authenticated user.
//
// Usage
// -----
//     // Attach the loaded user after session verification.
//     ctx = session.WithUser(ctx, u)
//
//     // Downstream code retrieves it.
//     u, ok := session.UserFrom(ctx)
//
// Notes
// -----
// • The key is unexported to avoid context-key collisions.
// • Oxford commas, two spaces after periods.

package session

import (
	"context"

	"github.com/sitewright/sitewright/internal/user"
)

type userKey struct{}

// WithUser returns a new context carrying the given user.
func WithUser(ctx context.Context, u *user.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFrom extracts the user from ctx.  ok is false when no user is set.
func UserFrom(ctx context.Context) (*user.User, bool) {
	u, ok := ctx.Value(userKey{}).(*user.User)
	return u, ok
}
