package session

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var errNoExpiry = errors.New("credential has no expiry claim")

// expiryOf decodes the credential without verifying its signature (the
// client never holds the signing secret) and returns the exp instant.
// A Bearer prefix is tolerated.
func expiryOf(token string) (time.Time, error) {
	raw := strings.TrimPrefix(token, "Bearer ")
	if raw == "" {
		return time.Time{}, errNoExpiry
	}

	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, errNoExpiry
	}
	return claims.ExpiresAt.Time, nil
}
