package middleware

import (
	"context"
	"net/http"

	"github.com/Santiago1809/auth-ms/internal/domain"
)

type userGetter interface {
	GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
}

// RequireVerified gates routes behind the primary-channel verification
// policy: accounts with a phone on file must have verified it, phoneless
// accounts must have verified their email. Runs after Auth.
func RequireVerified(users userGetter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			u, err := users.GetByIdentifier(r.Context(), claims.Username)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if u.NeedsVerification() {
				writeJSONError(w, http.StatusForbidden, "account verification required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
