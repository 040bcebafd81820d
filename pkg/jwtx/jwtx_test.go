package jwtx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()
	j := NewJwtService(Config{SigningKey: "test-signing-key"})

	td, err := j.CreateToken(42)
	require.NoError(t, err)
	require.NotEmpty(t, td.AccessToken)
	require.NotEmpty(t, td.AccessUuid)

	userID, err := j.ExtractUserID(td.AccessToken)
	require.NoError(t, err)
	require.Equal(t, int64(42), userID)
}

func TestExtractUserIDRejectsBadToken(t *testing.T) {
	t.Parallel()
	j := NewJwtService(Config{SigningKey: "test-signing-key"})

	_, err := j.ExtractUserID("")
	require.Error(t, err)

	_, err = j.ExtractUserID("not-a-token")
	require.Error(t, err)

	// 别的签名key签出的token不被接受
	other := NewJwtService(Config{SigningKey: "other-key"})
	td, err := other.CreateToken(1)
	require.NoError(t, err)
	_, err = j.ExtractUserID(td.AccessToken)
	require.Error(t, err)
}
