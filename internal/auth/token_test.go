package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService() *TokenService {
	return NewTokenService("test-secret-key-for-testing-purposes", 15*time.Minute)
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	service := newTestTokenService()

	token, err := service.Issue("user-123", "alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "user-123", claims.Subject)
}

func TestTokenService_Verify_Expired(t *testing.T) {
	service := NewTokenService("test-secret", 1*time.Millisecond)

	token, err := service.Issue("user-123", "alice")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	claims, err := service.Verify(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.Nil(t, claims)
}

func TestTokenService_Verify_Invalid(t *testing.T) {
	service := newTestTokenService()

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"random string", "not-a-valid-token"},
		{"malformed JWT", "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.invalid.signature"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := service.Verify(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Nil(t, claims)
		})
	}
}

func TestTokenService_Verify_WrongSignature(t *testing.T) {
	service1 := NewTokenService("secret-key-1", 15*time.Minute)
	service2 := NewTokenService("secret-key-2", 15*time.Minute)

	token, err := service1.Issue("user-123", "alice")
	require.NoError(t, err)

	claims, err := service2.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)
}

func TestTokenService_Verify_WrongAlgorithm(t *testing.T) {
	service := newTestTokenService()

	// Tokens signed with alg=none must never verify.
	token := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		UserID:   "user-123",
		Username: "alice",
	})
	tokenString, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	claims, err := service.Verify(tokenString)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)
}
