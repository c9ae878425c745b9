// Package token validates access tokens minted by the upstream identity
// service. This service never issues tokens; it only checks them before
// letting a request touch the ledger.
package token

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"letterc/internal/platform/middleware"
	dErrors "letterc/pkg/domain-errors"
)

// Claims are the JWT claims carried by upstream access tokens.
type Claims struct {
	UserID   string `json:"user_id"`
	ClerkID  string `json:"clerk_id"`
	RegionID string `json:"region_id,omitempty"`
	jwt.RegisteredClaims
}

// Validator verifies HS256 tokens against the shared upstream signing key.
type Validator struct {
	signingKey []byte
}

func NewValidator(signingKey string) *Validator {
	return &Validator{signingKey: []byte(signingKey)}
}

// ValidateToken parses and verifies a raw token string.
//
// Errors: CodeUnauthorized for expired, malformed, or mis-signed tokens.
func (v *Validator) ValidateToken(tokenString string) (*middleware.TokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return v.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return &middleware.TokenClaims{
		UserID:   claims.UserID,
		ClerkID:  claims.ClerkID,
		RegionID: claims.RegionID,
	}, nil
}
