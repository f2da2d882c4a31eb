package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/aptx/internal/model"
	"github.com/sakif/aptx/internal/session"
)

// SessionCookie is the cookie that carries the session token.
const SessionCookie = "session"

// contextKey is unexported so no other package can read or overwrite the
// user stored in the request context.
type contextKey string

const userKey contextKey = "user"

// Sessions resolves the session cookie on every request. When it maps to a
// live session the user is stored in the request context; otherwise the
// request continues anonymously. Protected routes add RequireSession on top.
func Sessions(store session.Store, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := store.Resolve(r.Context(), token)
			switch {
			case err == nil:
				r = r.WithContext(WithUser(r.Context(), user))
			case !errors.Is(err, session.ErrNoSession):
				// A broken session backend looks like "logged out" to the
				// client; the log line is the only trace of it.
				logger.Error("resolving session", slog.String("error", err.Error()))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSession rejects requests without a resolved user with 401. It must
// run after Sessions.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserFromContext(r.Context()); !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"unauthorized","message":"authentication required"}` + "\n"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithUser returns a copy of ctx carrying the authenticated user.
func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the authenticated user, or (nil, false) for an
// anonymous request.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userKey).(*model.User)
	return user, ok && user != nil
}

// TokenFromRequest returns the session token from the cookie, or "".
func TokenFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}
