package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hs256Token(t *testing.T, secret, userID, issuer string, expiresAt time.Time) string {
	t.Helper()

	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    issuer,
			Subject:   userID,
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestVerify(t *testing.T) {
	m := NewManager("test-secret", "imagevault")

	claims, err := m.Verify(hs256Token(t, "test-secret", "alice", "imagevault", time.Now().Add(time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.UserID)
}

func TestVerifyRejections(t *testing.T) {
	m := NewManager("test-secret", "imagevault")

	tests := []struct {
		name  string
		token string
	}{
		{"wrong secret", hs256Token(t, "other-secret", "alice", "imagevault", time.Now().Add(time.Hour))},
		{"expired", hs256Token(t, "test-secret", "alice", "imagevault", time.Now().Add(-time.Hour))},
		{"wrong issuer", hs256Token(t, "test-secret", "alice", "someone-else", time.Now().Add(time.Hour))},
		{"garbage", "not.a.token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Verify(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestVerifyRejectsNonHMAC(t *testing.T) {
	m := NewManager("test-secret", "imagevault")

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = m.Verify(unsigned)
	assert.Error(t, err)
}

func TestExtractTokenFromHeader(t *testing.T) {
	token, err := ExtractTokenFromHeader("Bearer abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)

	_, err = ExtractTokenFromHeader("abc123")
	assert.Error(t, err)

	_, err = ExtractTokenFromHeader("Basic abc123")
	assert.Error(t, err)
}
