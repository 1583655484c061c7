package auth

import (
	"net/http"
	"strings"
)

// RequireBearer returns chi-compatible middleware that validates an
// "Authorization: Bearer <token>" header via ts and attaches the resulting
// claims to the request context. Requests without a valid token are
// rejected with 401 before reaching the wrapped handler.
func RequireBearer(ts *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			const prefix = "Bearer "
			if !strings.HasPrefix(header, prefix) {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			claims, err := ts.Verify(strings.TrimPrefix(header, prefix))
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			ctx := WithClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
