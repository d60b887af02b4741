package utils // package utils provides helpers for signed token creation

import (
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// Roles carried in the "role" claim.  USER tokens live for days,
// ADMIN tokens for hours; both TTLs come from configuration.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// AccessToken represents a signed HS256 JWT together with its expiry.
// The Token field contains the serialized JWT string; Exp records the
// UTC expiration time that was embedded in the claims.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT.  The claims follow the
// usual shape: subject (sub) holds the user ID, role carries USER or
// ADMIN, exp and iat are Unix timestamps.  Admin-only endpoints check
// the role claim, so tokens issued with RoleUser never pass the admin
// gate even when validly signed.
func NewAccessToken(secret string, userID uint64, role string, ttl time.Duration) (AccessToken, error) {
	exp := time.Now().UTC().Add(ttl)
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  exp.Unix(),
		"iat":  time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}
