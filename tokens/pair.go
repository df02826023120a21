package tokens

import (
	"time"

	"github.com/simstudio/authclient/jwt"
)

// Pair is a partner API bearer session.
type Pair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Valid reports whether the pair carries an access token.
func (p Pair) Valid() bool {
	return p.AccessToken != ""
}

// CanRefresh reports whether the pair can be refreshed. A pair without a refresh token is
// degraded: a 401 on it is terminal.
func (p Pair) CanRefresh() bool {
	return p.AccessToken != "" && p.RefreshToken != ""
}

// AccessExpiry reads the access token's exp claim without verifying it. ok is false for
// opaque tokens or tokens without exp.
func (p Pair) AccessExpiry() (time.Time, bool) {
	info, err := jwt.Inspect(p.AccessToken)
	if err != nil || info.ExpiresAt.IsZero() {
		return time.Time{}, false
	}
	return info.ExpiresAt, true
}
