package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/socialcare-homes/rota-backend-go/internal/domain/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contextWithToken(t *testing.T, svc Service, claims map[string]interface{}) context.Context {
	t.Helper()

	_, raw, err := svc.JWTAuth().Encode(claims)
	require.NoError(t, err)

	token, err := jwtauth.VerifyToken(svc.JWTAuth(), raw)
	return jwtauth.NewContext(context.Background(), token, err)
}

func TestPrincipal(t *testing.T) {
	svc := NewJWTService("test-secret")
	ctx := contextWithToken(t, svc, map[string]interface{}{
		"user_id":  "u-1",
		"email":    "manager@example.com",
		"role":     "manager",
		"staff_id": "s-1",
		"type":     "access",
		"exp":      time.Now().Add(time.Hour).Unix(),
	})

	p, err := svc.Principal(ctx)
	require.NoError(t, err)
	assert.Equal(t, auth.Principal{UserID: "u-1", Email: "manager@example.com", Role: auth.RoleManager, StaffID: "s-1"}, p)
}

func TestPrincipal_Rejects(t *testing.T) {
	svc := NewJWTService("test-secret")
	exp := time.Now().Add(time.Hour).Unix()

	cases := []struct {
		name   string
		claims map[string]interface{}
		want   error
	}{
		{"refresh token", map[string]interface{}{"user_id": "u-1", "role": "admin", "type": "refresh", "exp": exp}, auth.ErrInvalidToken},
		{"missing role", map[string]interface{}{"user_id": "u-1", "type": "access", "exp": exp}, auth.ErrMissingClaims},
		{"expired", map[string]interface{}{"user_id": "u-1", "role": "admin", "type": "access", "exp": time.Now().Add(-time.Hour).Unix()}, auth.ErrInvalidToken},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := svc.Principal(contextWithToken(t, svc, c.claims))
			assert.ErrorIs(t, err, c.want)
		})
	}

	_, err := svc.Principal(context.Background())
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
