package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateAccessToken("user-123", time.Now().Add(time.Hour), secret)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := Authenticate(token, secret)
	require.NoError(t, err)
	require.Equal(t, "user-123", userID)
}

func TestAuthenticateRejections(t *testing.T) {
	secret := []byte("test-secret")

	_, err := Authenticate("", secret)
	require.Error(t, err)

	_, err = Authenticate("not-a-token", secret)
	require.Error(t, err)

	expired, err := GenerateAccessToken("user-123", time.Now().Add(-time.Minute), secret)
	require.NoError(t, err)
	_, err = Authenticate(expired, secret)
	require.Error(t, err)

	wrongKey, err := GenerateAccessToken("user-123", time.Now().Add(time.Hour), []byte("other-secret"))
	require.NoError(t, err)
	_, err = Authenticate(wrongKey, secret)
	require.Error(t, err)
}
