// Package middleware holds HTTP middleware for the gateway's admin surface.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"llm_dispatch/internal/auth"
)

// ContextKey types context values set by middleware.
type ContextKey string

// AdminSubjectKey carries the authenticated admin subject.
const AdminSubjectKey ContextKey = "adminSubject"

// AdminJWT validates the bearer token on admin requests and embeds the
// subject into the request context.
func AdminJWT(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := r.Header.Get("Authorization")
			if tokenString == "" {
				writeAuthError(w, "missing authentication token")
				return
			}
			tokenString = strings.TrimPrefix(tokenString, "Bearer ")

			claims, err := auth.ValidateAdminJWT(tokenString, secret)
			if err != nil {
				writeAuthError(w, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), AdminSubjectKey, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"` + message + `"}`))
}
