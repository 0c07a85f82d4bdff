package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/talkbase/answerd/pkg/errors"
)

// Verifier resolves a bearer token to a stable user identifier.
type Verifier interface {
	Verify(ctx context.Context, token string) (userID string, err error)
}

// JWTVerifier validates HS256 access tokens locally against the identity
// provider's shared signing secret. The subject claim is the user ID.
type JWTVerifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewJWTVerifier creates a local token verifier. The secret must be
// configured; there is no unverified mode.
func NewJWTVerifier(secret string) (*JWTVerifier, error) {
	if secret == "" {
		return nil, fmt.Errorf("identity jwt_secret is not configured")
	}
	return &JWTVerifier{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{"HS256"}),
			jwt.WithExpirationRequired(),
		),
	}, nil
}

// Verify validates the token signature and registered claims.
func (v *JWTVerifier) Verify(_ context.Context, token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := v.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return "", errors.NewAuthError(errors.ReasonInvalidCredential,
			"token rejected: "+err.Error())
	}
	if claims.Subject == "" {
		return "", errors.NewAuthError(errors.ReasonInvalidCredential,
			"token has no subject claim")
	}
	return claims.Subject, nil
}
