package admin

import (
	"context"
	"log/slog"
	"net/http"

	"registration-service/common/httputil"
)

type contextKey string

const sessionIDKey contextKey = "admin_session_id"

// RequireSession rejects requests without a valid admin session cookie.
func RequireSession(sessions *Sessions, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(CookieName)
			if err != nil {
				logger.WarnContext(r.Context(), "no admin session cookie", "path", r.URL.Path)
				httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			claims, err := sessions.Verify(cookie.Value)
			if err != nil {
				logger.WarnContext(r.Context(), "invalid admin session", "path", r.URL.Path, "error", err)
				httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), sessionIDKey, claims.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionID returns the id of the admin session on ctx.
func SessionID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDKey).(string)
	return id, ok
}
