package middleware

import (
	"net/http"

	"github.com/lostbeltno7/GameGuardian/internal/api/apierr"
	"github.com/lostbeltno7/GameGuardian/internal/services/auth"
)

// Header names for API credentials
const (
	APIKeyHeader   = "X-API-Key"
	AdminKeyHeader = "X-Admin-Key"
)

// APIKey creates middleware requiring a valid client API key.
// Failures are delayed by the auth service before the 401 is written.
func APIKey(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := authService.ValidateAPIKey(r.Header.Get(APIKeyHeader)); err != nil {
				apierr.WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminKey creates middleware requiring a valid management key
func AdminKey(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := authService.ValidateAdminKey(r.Header.Get(AdminKeyHeader)); err != nil {
				apierr.WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
