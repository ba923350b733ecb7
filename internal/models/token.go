package models

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenPair as returned by the auth endpoints. The refresh token rotates:
// after a successful refresh the previous one is invalid.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AccessClaims is the payload the server signs into access tokens.
type AccessClaims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID `json:"uid"`
}

// AccessTokenExpiresAt extracts the expiry claim from an access token without
// verifying the signature. The client has no signing key and never trusts the
// claims for authorization; this is for display and diagnostics only.
func AccessTokenExpiresAt(token string) (time.Time, error) {
	var claims AccessClaims

	_, _, err := jwt.NewParser().ParseUnverified(token, &claims)
	if err != nil {
		return time.Time{}, fmt.Errorf("can't parse access token: %w", err)
	}

	if claims.ExpiresAt == nil {
		return time.Time{}, fmt.Errorf("access token has no expiry claim")
	}

	return claims.ExpiresAt.Time, nil
}
