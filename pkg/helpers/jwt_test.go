package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	m := NewJWTManager("testsecret", time.Hour)

	token, exp, err := m.GenerateSessionToken("user-1")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := m.ParseSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestParseSessionToken_Expired(t *testing.T) {
	m := NewJWTManager("testsecret", -time.Minute)

	token, _, err := m.GenerateSessionToken("user-1")
	require.NoError(t, err)

	_, err = m.ParseSessionToken(token)
	require.Error(t, err)
	assert.True(t, IsExpired(err))
}

func TestParseSessionToken_WrongSecret(t *testing.T) {
	token, _, err := NewJWTManager("secret-a", time.Hour).GenerateSessionToken("user-1")
	require.NoError(t, err)

	_, err = NewJWTManager("secret-b", time.Hour).ParseSessionToken(token)
	require.Error(t, err)
	assert.False(t, IsExpired(err))
}

func TestParseSessionToken_Garbage(t *testing.T) {
	m := NewJWTManager("testsecret", time.Hour)
	_, err := m.ParseSessionToken("not-a-jwt")
	assert.Error(t, err)
}
