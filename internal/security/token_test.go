package security

import (
	"sort"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func claimKeys(t *testing.T, token string) []string {
	t.Helper()
	claims := jwt.MapClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)

	keys := make([]string, 0, len(claims))
	for k := range claims {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func TestAccessToken_ClaimShape(t *testing.T) {
	t.Parallel()

	tok, err := GenerateAccessToken("access-secret", "u-1", "DONOR", "0xAbC0000000000000000000000000000000000001", time.Minute)
	require.NoError(t, err)

	assert.Equal(t, []string{"exp", "iat", "role", "userId", "walletAddress"}, claimKeys(t, tok))

	claims, err := ParseAccessToken(tok, "access-secret")
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "DONOR", claims.Role)
	assert.Equal(t, "0xAbC0000000000000000000000000000000000001", claims.WalletAddress)
}

func TestRefreshToken_ClaimShape(t *testing.T) {
	t.Parallel()

	tok, err := GenerateRefreshToken("refresh-secret", "u-1", time.Hour)
	require.NoError(t, err)

	assert.Equal(t, []string{"exp", "iat", "userId"}, claimKeys(t, tok))

	claims, err := ParseRefreshToken(tok, "refresh-secret")
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
}

func TestParseAccessToken_Expired(t *testing.T) {
	t.Parallel()

	tok, err := GenerateAccessToken("s", "u-1", "DONOR", "0x0", -1*time.Second)
	require.NoError(t, err)

	_, err = ParseAccessToken(tok, "s")
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestParseAccessToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := GenerateAccessToken("right", "u-1", "DONOR", "0x0", time.Minute)
	require.NoError(t, err)

	_, err = ParseAccessToken(tok, "wrong")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshTokenRejectedAsAccessToken(t *testing.T) {
	t.Parallel()

	refresh, err := GenerateRefreshToken("refresh-secret", "u-1", time.Hour)
	require.NoError(t, err)

	_, err = ParseAccessToken(refresh, "access-secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseAccessToken_Malformed(t *testing.T) {
	t.Parallel()

	_, err := ParseAccessToken("not.a.jwt", "k")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseAccessToken_RejectsNoneAlg(t *testing.T) {
	t.Parallel()

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, AccessClaims{
		UserID: "u-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	})
	tok, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ParseAccessToken(tok, "k")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenFingerprint(t *testing.T) {
	t.Parallel()

	a := TokenFingerprint("token-a")
	assert.Len(t, a, 64)
	assert.Equal(t, a, TokenFingerprint("token-a"))
	assert.NotEqual(t, a, TokenFingerprint("token-b"))
}
