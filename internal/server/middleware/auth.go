// Package middleware provides HTTP middleware for authentication and authorization.
package middleware

import (
	"context"
	"net/http"
	"strings"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

// principalKey is the context key for the authenticated caller.
const principalKey ContextKey = "principal"

// RoleAdmin may manage job requirements and delete résumés.
const RoleAdmin = "admin"

// Principal describes an authenticated caller. GetSubject matches the
// signature of jwt.RegisteredClaims so claims types satisfy it directly.
type Principal interface {
	GetSubject() (string, error)
	GetRole() string
}

// TokenValidator validates bearer tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (Principal, error)
}

// ErrorWriter writes an error response. Handlers pass their own JSON writer
// so middleware failures look like every other API error.
type ErrorWriter func(w http.ResponseWriter, status int, message string)

func plainError(w http.ResponseWriter, status int, message string) {
	http.Error(w, message, status)
}

// AuthMiddleware validates the bearer token and stores the principal in the request context.
func AuthMiddleware(validator TokenValidator, writeError ErrorWriter) func(http.Handler) http.Handler {
	if writeError == nil {
		writeError = plainError
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			principal, err := validator.ValidateToken(tokenString)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects callers whose principal does not carry one of roles.
// It must run after AuthMiddleware.
func RequireRole(writeError ErrorWriter, roles ...string) func(http.Handler) http.Handler {
	if writeError == nil {
		writeError = plainError
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := GetPrincipal(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			for _, role := range roles {
				if principal.GetRole() == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, http.StatusForbidden, "Forbidden")
		})
	}
}

// GetPrincipal returns the authenticated caller from the request context.
func GetPrincipal(r *http.Request) (Principal, bool) {
	p, ok := r.Context().Value(principalKey).(Principal)
	return p, ok
}

// bearerToken parses "Bearer <token>"; the scheme is case-insensitive.
func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}
