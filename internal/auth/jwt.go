package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiresAt returns the expiry timestamp encoded in an access token.
//
// The signature is not verified here; the value only drives client control
// flow such as refreshing before a connect. The server stays authoritative
// and closes the socket with the auth failure code when it disagrees.
func TokenExpiresAt(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// TokenExpiringSoon reports whether the token is expired or will expire
// within window. A token without a parseable exp claim is treated as
// non-refreshable rather than expired.
func TokenExpiringSoon(token string, window time.Duration) bool {
	if strings.TrimSpace(token) == "" {
		return true
	}
	exp, ok := TokenExpiresAt(token)
	if !ok {
		return false
	}
	return time.Until(exp) <= window
}
