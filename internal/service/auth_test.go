package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyJWT(t *testing.T) {
	auth := NewAuthService("secret")

	token, err := auth.SignJWT("user-1", jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})
	require.NoError(t, err)

	userID, err := auth.VerifyJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestVerifyJWTLegacyClaim(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": "user-2"})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	userID, err := NewAuthService("secret").VerifyJWT(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-2", userID)
}

func TestVerifyJWTRejects(t *testing.T) {
	auth := NewAuthService("secret")

	expired, err := auth.SignJWT("user-1", jwt.MapClaims{"exp": time.Now().Add(-time.Hour).Unix()})
	require.NoError(t, err)
	_, err = auth.VerifyJWT(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other, err := NewAuthService("other").SignJWT("user-1", nil)
	require.NoError(t, err)
	_, err = auth.VerifyJWT(other)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noSubject := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"role": "x"})
	signed, err := noSubject.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = auth.VerifyJWT(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = auth.VerifyJWT("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
