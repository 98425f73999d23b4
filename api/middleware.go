package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/vantage/sales-tracker/auth"
	"github.com/vantage/sales-tracker/record"
)

// =============================================================================
// AUTH MIDDLEWARE
// =============================================================================

type contextKey string

const (
	uidKey  contextKey = "uid"
	roleKey contextKey = "role"
)

// Authenticate validates the bearer token and stores the caller's uid
// and parsed role in the request context.
func Authenticate(tm *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeErrorStatus(w, http.StatusUnauthorized, "missing authorization header")
				return
			}
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeErrorStatus(w, http.StatusUnauthorized, "invalid authorization format")
				return
			}

			claims, role, err := tm.Verify(parts[1])
			if err != nil {
				writeErrorStatus(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), uidKey, record.EmployeeID(claims.UID))
			ctx = context.WithValue(ctx, roleKey, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireCapability gates a route on the caller's role capability.
func RequireCapability(cap auth.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !callerRole(r).Can(cap) {
				writeErrorStatus(w, http.StatusForbidden, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func callerUID(r *http.Request) record.EmployeeID {
	uid, _ := r.Context().Value(uidKey).(record.EmployeeID)
	return uid
}

func callerRole(r *http.Request) auth.Role {
	role, _ := r.Context().Value(roleKey).(auth.Role)
	return role
}
