package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotJWT is returned by [Inspect] when the token is not a decodable JWT. Opaque partner
// tokens hit this path; callers treat it as "no metadata".
var ErrNotJWT = errors.New("token is not a jwt")

// AccessClaims is the claim set carried by partner access tokens.
type AccessClaims struct {
	SID string `json:"sid,omitempty"`
	jwt.RegisteredClaims
}

// Info is unverified metadata read from a token.
type Info struct {
	Subject   string
	SessionID string
	ExpiresAt time.Time
}

// Expired reports whether the token's exp is at or before now. Tokens without exp never
// report expired.
func (i Info) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && !now.Before(i.ExpiresAt)
}

// Inspect decodes token claims without verifying the signature.
func Inspect(token string) (Info, error) {
	claims := &AccessClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Info{}, ErrNotJWT
	}

	info := Info{
		Subject:   claims.Subject,
		SessionID: claims.SID,
	}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info, nil
}
