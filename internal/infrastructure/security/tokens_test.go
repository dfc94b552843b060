package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pantrypairing/server/internal/infrastructure/config"
)

func newTokenService(t *testing.T, now *time.Time) *TokenService {
	s := NewTokenService(config.AuthConfig{
		JWTSecret:     "test-secret",
		JWTExpiration: time.Hour,
		Issuer:        "pantrypairing",
	}, zaptest.NewLogger(t))
	s.now = func() time.Time { return *now }
	return s
}

func TestTokenService_IssueAndValidate(t *testing.T) {
	// Arrange
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := newTokenService(t, &now)

	// Act
	issued, err := s.Issue("session-1")
	require.NoError(t, err)
	claims, err := s.Validate(issued.Token)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "session-1", claims.SessionID())
	assert.Equal(t, now.Add(time.Hour), issued.ExpiresAt)
}

func TestTokenService_Rejects(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := newTokenService(t, &now)
	issued, err := s.Issue("session-1")
	require.NoError(t, err)

	t.Run("Expired_ShouldFail", func(t *testing.T) {
		later := now.Add(2 * time.Hour)
		expired := newTokenService(t, &later)
		_, err := expired.Validate(issued.Token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("OtherSecret_ShouldFail", func(t *testing.T) {
		other := NewTokenService(config.AuthConfig{JWTSecret: "other", Issuer: "pantrypairing"}, zaptest.NewLogger(t))
		other.now = func() time.Time { return now }
		_, err := other.Validate(issued.Token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("NoneAlgorithm_ShouldFail", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "session-1"})
		unsigned, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = s.Validate(unsigned)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Garbage_ShouldFail", func(t *testing.T) {
		_, err := s.Validate("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
