package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/ayang/library-lending/internal/auth"
)

// RequireAuth is middleware that validates the Authorization bearer token
// and injects the manager_id into the request context. A missing header is
// 401; an expired, malformed, or incorrectly-signed token is 403.
func RequireAuth(tokens *auth.TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				http.Error(w, `{"error":"missing authorization header"}`, http.StatusUnauthorized)
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				http.Error(w, `{"error":"invalid authorization header"}`, http.StatusForbidden)
				return
			}

			managerID, err := tokens.Verify(token)
			if err != nil {
				http.Error(w, `{"error":"invalid or expired token"}`, http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), "manager_id", managerID.String())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
