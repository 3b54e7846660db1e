package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/propertyflow/propertyflow/internal/model"
)

// Claim decoding errors.
var (
	ErrMalformedToken = errors.New("malformed bearer token")
	ErrMissingSubject = errors.New("token carries no subject claim")
)

// DecodedToken carries the identity fields read from a token payload.
type DecodedToken struct {
	UserID string
	Email  string
	Claims model.ClaimSet
}

// DecodeClaims parses a bearer token payload without verifying the
// signature. Verification happens at the upstream gateway; this service
// only consumes the already-authenticated claim set.
func DecodeClaims(token string) (*DecodedToken, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMalformedToken
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedToken, err)
	}

	decoded := &DecodedToken{
		Claims: model.ClaimSet(claims),
	}

	if sub, ok := claims["sub"].(string); ok {
		decoded.UserID = strings.TrimSpace(sub)
	}
	if decoded.UserID == "" {
		return nil, ErrMissingSubject
	}

	if email, ok := claims["email"].(string); ok {
		decoded.Email = strings.TrimSpace(email)
	}

	return decoded, nil
}
