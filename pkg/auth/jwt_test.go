package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_GenerateToken(t *testing.T) {
	service := NewJWTService("test-secret-key-min-32-characters-long", "test-issuer", time.Hour)

	token, err := service.GenerateToken("6513a1f2e4b0c8a9d0000001", "alice", "alice@example.com")

	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestJWTService_ValidateToken(t *testing.T) {
	service := NewJWTService("test-secret-key-min-32-characters-long", "test-issuer", time.Hour)

	token, err := service.GenerateToken("42", "bob", "bob@example.com")
	require.NoError(t, err)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.UserID)
	assert.Equal(t, "bob", claims.Username)
	assert.Equal(t, "bob@example.com", claims.Email)
	assert.Equal(t, "test-issuer", claims.Issuer)
}

func TestJWTService_ValidateToken_WrongSecret(t *testing.T) {
	service := NewJWTService("test-secret-key-min-32-characters-long", "test-issuer", time.Hour)
	other := NewJWTService("a-completely-different-secret-key-here", "test-issuer", time.Hour)

	token, err := service.GenerateToken("42", "bob", "bob@example.com")
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_ValidateToken_Expired(t *testing.T) {
	service := NewJWTService("test-secret-key-min-32-characters-long", "test-issuer", -time.Minute)

	token, err := service.GenerateToken("42", "bob", "bob@example.com")
	require.NoError(t, err)

	_, err = service.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_ValidateToken_Garbage(t *testing.T) {
	service := NewJWTService("test-secret-key-min-32-characters-long", "test-issuer", time.Hour)

	_, err := service.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
