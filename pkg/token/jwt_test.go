package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("secret")
	tok, err := m.GenerateToken(7, "curator", "EDITOR", time.Hour)
	require.NoError(t, err)

	claims, err := m.VerifyToken(tok)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "curator", claims.Username)
	assert.Equal(t, "EDITOR", claims.Role)
}

func TestJWTManager_RejectsWrongSecret(t *testing.T) {
	tok, err := NewJWTManager("a").GenerateToken(1, "curator", "EDITOR", time.Hour)
	require.NoError(t, err)

	_, err = NewJWTManager("b").VerifyToken(tok)
	assert.Error(t, err)
}

func TestJWTManager_RejectsExpired(t *testing.T) {
	m := NewJWTManager("secret")
	tok, err := m.GenerateToken(1, "curator", "EDITOR", -time.Minute)
	require.NoError(t, err)

	_, err = m.VerifyToken(tok)
	assert.Error(t, err)
}

func TestGenerateRandomString(t *testing.T) {
	a := GenerateRandomString(16)
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, GenerateRandomString(16))
}
