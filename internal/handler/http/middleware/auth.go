package middleware

import (
	"context"
	"net/http"

	"github.com/socialcare-homes/rota-backend-go/internal/domain/auth"
	"github.com/socialcare-homes/rota-backend-go/internal/handler/http/response"
	"github.com/socialcare-homes/rota-backend-go/internal/pkg/jwt"
)

type principalKey struct{}

// AuthRequired rejects requests without a verified access token and stores
// the caller in the request context. It runs after jwtauth.Verifier.
func AuthRequired(jwtService jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			principal, err := jwtService.Principal(r.Context())
			if err != nil {
				response.HandleError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey{}, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(hfn)
	}
}

// PrincipalFromContext returns the caller set by AuthRequired.
func PrincipalFromContext(ctx context.Context) (auth.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(auth.Principal)
	return p, ok
}
