package server

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
)

// Authenticator verifies admin requests before they reach handlers. Only
// bearer tokens are supported; the token is compared in constant time.
type Authenticator struct {
	bearerToken string
}

// NewAuthenticator constructs an authenticator from the configured token.
func NewAuthenticator(token string) (*Authenticator, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("admin bearer token must be configured")
	}
	return &Authenticator{bearerToken: token}, nil
}

// Middleware enforces authentication for admin endpoints.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a == nil {
			http.Error(w, "authentication unavailable", http.StatusInternalServerError)
			return
		}
		header := r.Header.Get("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		supplied := strings.TrimSpace(strings.TrimPrefix(header, prefix))
		if subtle.ConstantTimeCompare([]byte(supplied), []byte(a.bearerToken)) != 1 {
			http.Error(w, "invalid bearer token", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
