package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	cl := Claims{UserID: 42, Email: "ada@example.com", Role: "admin"}

	raw, err := NewAccessToken("access-secret", cl, 15)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	got, err := VerifyToken("access-secret", raw)
	require.NoError(t, err)
	assert.Equal(t, cl, got)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	cl := Claims{UserID: 7, Email: "bob@example.com", Role: "customer"}

	raw, err := NewRefreshToken("refresh-secret", cl, 7)
	require.NoError(t, err)

	got, err := VerifyToken("refresh-secret", raw)
	require.NoError(t, err)
	assert.Equal(t, cl, got)
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	cl := Claims{UserID: 1, Email: "x@example.com", Role: "customer"}

	// A refresh token must never validate under the access secret.
	raw, err := NewRefreshToken("refresh-secret", cl, 7)
	require.NoError(t, err)

	_, err = VerifyToken("access-secret", raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenExpired(t *testing.T) {
	cl := Claims{UserID: 9, Email: "old@example.com", Role: "expert"}

	raw, err := NewAccessToken("s", cl, -1)
	require.NoError(t, err)

	_, err = VerifyToken("s", raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenGarbage(t *testing.T) {
	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		_, err := VerifyToken("s", raw)
		assert.ErrorIs(t, err, ErrInvalidToken, "input %q", raw)
	}
}

func TestVerifyTokenMissingSubject(t *testing.T) {
	raw, err := NewAccessToken("s", Claims{Email: "nosub@example.com", Role: "customer"}, 5)
	require.NoError(t, err)

	_, err = VerifyToken("s", raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
