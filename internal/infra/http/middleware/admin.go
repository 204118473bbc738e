package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

const (
	AdminIDHeader   = "X-Admin-Id"
	AdminRoleHeader = "X-Admin-Role"

	RoleSuperAdmin = "SUPER_ADMIN"
	RoleAdmin      = "ADMIN"
)

type adminKey struct{}

// Admin is the identity forwarded by the authenticating gateway.
type Admin struct {
	ID   string
	Role string
}

// Scope returns the admin id that queries must be restricted to, or "" for a
// super admin who sees every prospect.
func (a Admin) Scope() string {
	if a.Role == RoleSuperAdmin {
		return ""
	}
	return a.ID
}

// RequireAdmin rejects requests without an admin identity and stores it in the request context.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(AdminIDHeader))
		if id == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{
				"error":   "UNAUTHORIZED",
				"message": "admin identity is required",
			})
			return
		}

		role := strings.ToUpper(strings.TrimSpace(r.Header.Get(AdminRoleHeader)))
		if role == "" {
			role = RoleAdmin
		}

		ctx := context.WithValue(r.Context(), adminKey{}, Admin{ID: id, Role: role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminFromContext returns the admin stored by RequireAdmin.
func AdminFromContext(ctx context.Context) (Admin, bool) {
	a, ok := ctx.Value(adminKey{}).(Admin)
	return a, ok
}
