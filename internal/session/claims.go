package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claim URIs used by ASP.NET identity tokens.
const (
	claimNameIdentifier = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/nameidentifier"
	claimName           = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/name"
	claimEmail          = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/emailaddress"
)

// Identity is the user described by a token's claims.
type Identity struct {
	UserID    string
	UserName  string
	Email     string
	ExpiresAt time.Time // zero when the token has no exp claim
}

// Expired reports whether the token's exp claim is before now.
func (i Identity) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && now.After(i.ExpiresAt)
}

// ParseIdentity decodes the claims of a JWT without verifying its
// signature; the server stays the only authority on validity.
// Returns false for tokens that are not JWTs.
func ParseIdentity(token string) (Identity, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Identity{}, false
	}

	id := Identity{
		UserID:   firstString(claims, "sub", "nameid", "userId", "id", claimNameIdentifier),
		UserName: firstString(claims, "unique_name", "userName", "username", "name", claimName),
		Email:    firstString(claims, "email", claimEmail),
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		id.ExpiresAt = exp.Time
	}
	return id, true
}

func firstString(claims jwt.MapClaims, keys ...string) string {
	for _, k := range keys {
		if v, ok := claims[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
