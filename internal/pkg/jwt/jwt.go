package jwt

import (
	"context"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/socialcare-homes/rota-backend-go/internal/domain/auth"
)

// Service verifies access tokens issued by the auth service. This backend
// never issues tokens of its own.
type Service interface {
	JWTAuth() *jwtauth.JWTAuth
	Principal(ctx context.Context) (auth.Principal, error)
}

type JWTService struct {
	tokenAuth *jwtauth.JWTAuth
}

func NewJWTService(secretKey string) Service {
	return &JWTService{
		tokenAuth: jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

// Principal reads the caller from the token placed in ctx by jwtauth.Verifier.
func (j *JWTService) Principal(ctx context.Context) (auth.Principal, error) {
	token, claims, err := jwtauth.FromContext(ctx)
	if err != nil || token == nil {
		return auth.Principal{}, auth.ErrInvalidToken
	}

	if tokenType, _ := claims["type"].(string); tokenType != "access" {
		return auth.Principal{}, auth.ErrInvalidToken
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return auth.Principal{}, auth.ErrMissingClaims
	}
	role, ok := claims["role"].(string)
	if !ok || role == "" {
		return auth.Principal{}, auth.ErrMissingClaims
	}

	p := auth.Principal{
		UserID: userID,
		Role:   auth.Role(role),
	}
	p.Email, _ = claims["email"].(string)
	p.StaffID, _ = claims["staff_id"].(string)
	return p, nil
}
