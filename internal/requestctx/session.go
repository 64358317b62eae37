package requestctx

import (
	"context"

	"github.com/TWRT/law-office/internal/models"
)

type sessionContextKey struct{}

// WithSession stores the authenticated session in context.
func WithSession(ctx context.Context, session models.Session) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, sessionContextKey{}, session)
}

// SessionFromContext returns the session stored in context and whether one was present.
func SessionFromContext(ctx context.Context) (models.Session, bool) {
	if ctx == nil {
		return models.Session{}, false
	}
	session, ok := ctx.Value(sessionContextKey{}).(models.Session)
	return session, ok
}

// UserIDFromContext returns the authenticated user id, or "".
func UserIDFromContext(ctx context.Context) string {
	session, _ := SessionFromContext(ctx)
	return session.UserID
}
