package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"dirgate/internal/domain"
	"dirgate/internal/service"
)

// TokenParser validates a session token and returns its claims.
type TokenParser interface {
	ParseToken(token string) (*service.SessionClaims, error)
}

// UserLoader fetches the current state of a user account.
type UserLoader interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// SessionAuth returns middleware that authenticates requests with a Bearer
// session token. The account is re-read on every request, so deactivating a
// user invalidates their outstanding tokens immediately, and the principal's
// role comes from the stored account rather than the token. On success the
// request context carries a domain.ContextPrincipal.
func SessionAuth(parser TokenParser, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeUnauthorized(w, "missing bearer token")
				return
			}

			claims, err := parser.ParseToken(token)
			if err != nil {
				writeUnauthorized(w, "invalid session token")
				return
			}

			u, err := users.GetByID(r.Context(), claims.Subject)
			if err != nil || !u.Active {
				writeUnauthorized(w, "account unavailable")
				return
			}

			ctx := domain.WithPrincipal(r.Context(), domain.ContextPrincipal{
				ID:       u.ID,
				Username: u.Username,
				Role:     u.Role,
				IP:       ClientIP(r),
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code":    http.StatusUnauthorized,
		"message": msg,
	})
}
