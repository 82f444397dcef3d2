package httpapi

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// AuthMiddleware validates the Bearer token on trigger requests.
type AuthMiddleware struct {
	authToken string
}

func NewAuthMiddleware(authToken string) *AuthMiddleware {
	return &AuthMiddleware{authToken: authToken}
}

// Authenticate rejects requests without a matching Bearer token. An empty
// configured token disables the check.
func (m *AuthMiddleware) Authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if m.authToken == "" {
			next(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, "missing Authorization header")
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || scheme != "Bearer" {
			writeError(w, http.StatusUnauthorized, "invalid Authorization header format")
			return
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(m.authToken)) != 1 {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		next(w, r)
	}
}
