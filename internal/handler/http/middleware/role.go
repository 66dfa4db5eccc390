package middleware

import (
	"fmt"
	"net/http"

	"github.com/socialcare-homes/rota-backend-go/internal/domain/auth"
	"github.com/socialcare-homes/rota-backend-go/internal/handler/http/response"
)

// RequirePermission checks if the caller's role grants permission
func RequirePermission(permission auth.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			if !auth.HasPermission(principal.Role, permission) {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required '%s', but user role is '%s'", permission, principal.Role))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
