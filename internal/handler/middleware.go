package handler

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/segyhp/library-circulation/internal/auth"
	"github.com/segyhp/library-circulation/pkg/response"
)

// RequestID makes sure every request carries a correlation id and echoes it back
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(response.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(response.RequestIDHeader, id)
		}
		w.Header().Set(response.RequestIDHeader, id)

		next.ServeHTTP(w, r)
	})
}

// Authenticate rejects requests without a valid bearer token and stores the claims in the context
func Authenticate(tokens *auth.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || strings.TrimSpace(token) == "" {
				response.Unauthorized(w, "Full authentication is required to access this resource")
				return
			}

			claims, err := tokens.Parse(strings.TrimSpace(token))
			if err != nil {
				response.Unauthorized(w, "Invalid or expired JWT token")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
		})
	}
}

// RequireAdmin must run after Authenticate
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.FromContext(r.Context())
		if !ok {
			response.Unauthorized(w, "Full authentication is required to access this resource")
			return
		}
		if !claims.IsAdmin() {
			response.Forbidden(w, "Access denied")
			return
		}

		next.ServeHTTP(w, r)
	})
}
