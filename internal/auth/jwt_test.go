package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": exp.Unix(),
	})
	signed, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestTokenExpiresAt(t *testing.T) {
	t.Parallel()

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	got, ok := TokenExpiresAt(signedToken(t, exp))
	require.True(t, ok)
	require.True(t, got.Equal(exp), "want %v, got %v", exp, got)

	_, ok = TokenExpiresAt("not.a.jwt")
	require.False(t, ok)
}

func TestTokenExpiringSoon(t *testing.T) {
	t.Parallel()

	require.True(t, TokenExpiringSoon("", time.Minute), "empty token always needs a refresh")
	require.True(t, TokenExpiringSoon("   ", time.Minute))

	expired := signedToken(t, time.Now().Add(-time.Hour))
	require.True(t, TokenExpiringSoon(expired, time.Minute))

	nearExpiry := signedToken(t, time.Now().Add(30*time.Second))
	require.True(t, TokenExpiringSoon(nearExpiry, time.Minute))

	fresh := signedToken(t, time.Now().Add(time.Hour))
	require.False(t, TokenExpiringSoon(fresh, time.Minute))

	// Tokens the client cannot read are left for the server to reject.
	require.False(t, TokenExpiringSoon("garbage", time.Minute))
}
