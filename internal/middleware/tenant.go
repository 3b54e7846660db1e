package middleware

import (
	"fmt"
	"net/http"

	"github.com/propertyflow/propertyflow/internal/auth"
)

// RequireResolvedTenant returns middleware that rejects requests whose
// tenant came from the default fallback rather than a real source.
// Must be applied after Auth middleware.
//
// Tenant resolution itself never fails, so endpoints handling sensitive
// tenant data opt into failing closed here instead.
func RequireResolvedTenant() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := auth.PrincipalFromContext(r.Context())
			if principal == nil {
				writeTenantError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
				return
			}

			if !principal.HasResolvedTenant() {
				writeTenantError(w, http.StatusForbidden, "TENANT_UNRESOLVED",
					"No tenant is associated with this account")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// writeTenantError writes a tenant-guard error response.
func writeTenantError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(fmt.Sprintf(`{"error":{"code":"%s","message":"%s"}}`, code, message)))
}
