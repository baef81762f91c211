package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gnosislabs/gnosis-api/internal/auth"
	"github.com/gnosislabs/gnosis-api/internal/models"
	"github.com/gnosislabs/gnosis-api/internal/repo"
)

type ctxKey string

const userKey ctxKey = "current_user"

// ErrMessageUnauthenticated is the single body all authentication failures map
// to. Missing, malformed, expired, and tampered tokens, and tokens for
// accounts that no longer exist, are indistinguishable to the client.
const ErrMessageUnauthenticated = "authentication required"

// RequireUser verifies the Bearer token, confirms the account still exists,
// and stores the resolved user in the request context. Every failure returns
// 401 with the same generic body; the specific cause is logged only.
func RequireUser(issuer *auth.TokenIssuer, users *repo.UserRepo) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r)
			if err == nil {
				var userID int
				userID, err = issuer.Verify(token)
				if err == nil {
					user, lookupErr := users.GetByID(r.Context(), userID)
					if lookupErr != nil {
						// Deleted or unknown account: same 401, never 404.
						err = lookupErr
					} else {
						ctx := context.WithValue(r.Context(), userKey, user)
						next.ServeHTTP(w, r.WithContext(ctx))
						return
					}
				}
			}

			slog.Warn("authentication failed",
				"method", r.Method,
				"path", r.URL.Path,
				"reason", err.Error())
			unauthenticated(w)
		})
	}
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", auth.ErrTokenMissing
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", auth.ErrTokenMalformed
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if token == "" {
		return "", auth.ErrTokenMissing
	}
	return token, nil
}

func unauthenticated(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + ErrMessageUnauthenticated + `"}`))
}

// CurrentUser returns the authenticated user stored by RequireUser.
func CurrentUser(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok
}

// WithUser returns a context carrying user. Exposed for handler tests.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}
