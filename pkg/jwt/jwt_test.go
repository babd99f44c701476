package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	mgr := NewManager("test-secret", 24*time.Hour)

	token, err := mgr.GenerateAccessToken("session-1", "director")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := mgr.ValidateAccessToken(token)
	require.NoError(t, err)
	require.Equal(t, "session-1", claims.SessionID)
	require.Equal(t, "director", claims.Role)
}

func TestAccessTokenExpiryFollowsConfiguredTTL(t *testing.T) {
	mgr := NewManager("test-secret", 24*time.Hour)

	token, err := mgr.GenerateAccessToken("session-1", "marketing")
	require.NoError(t, err)

	claims, err := mgr.ValidateAccessToken(token)
	require.NoError(t, err)

	lifetime := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	require.Equal(t, 24*time.Hour, lifetime)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := NewManager("secret-a", time.Hour).GenerateAccessToken("session-1", "web")
	require.NoError(t, err)

	_, err = NewManager("secret-b", time.Hour).ValidateAccessToken(token)
	require.Error(t, err)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	mgr := NewManager("test-secret", -time.Minute)

	token, err := mgr.GenerateAccessToken("session-1", "web")
	require.NoError(t, err)

	_, err = mgr.ValidateAccessToken(token)
	require.Error(t, err)
}

func TestValidateRejectsGarbage(t *testing.T) {
	_, err := NewManager("test-secret", time.Hour).ValidateAccessToken("not-a-token")
	require.Error(t, err)
}
