package auth

import (
	"testing"
	"time"

	"github.com/alma-store/storefront-api/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(expiry time.Duration) *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "Alma Storefront"},
		JWT: config.JWTConfig{
			Secret:            "test-secret-that-is-at-least-32-characters",
			AccessTokenExpiry: expiry,
		},
	}
}

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager(testConfig(time.Hour))

	token, err := m.GenerateAccessToken(12, "ana@alma.co")
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(12), claims.UserID)
	assert.Equal(t, "ana@alma.co", claims.Email)
	assert.Equal(t, "user:12", claims.Subject)
}

func TestJWTManager_Rejects(t *testing.T) {
	m := NewJWTManager(testConfig(time.Hour))

	t.Run("expired", func(t *testing.T) {
		expired := NewJWTManager(testConfig(-time.Minute))
		token, err := expired.GenerateAccessToken(1, "a@alma.co")
		require.NoError(t, err)

		_, err = m.ValidateAccessToken(token)
		assert.Error(t, err)
	})

	t.Run("other secret", func(t *testing.T) {
		cfg := testConfig(time.Hour)
		cfg.JWT.Secret = "another-secret-that-is-at-least-32-chars"
		token, err := NewJWTManager(cfg).GenerateAccessToken(1, "a@alma.co")
		require.NoError(t, err)

		_, err = m.ValidateAccessToken(token)
		assert.Error(t, err)
	})

	t.Run("wrong token type", func(t *testing.T) {
		claims := &Claims{
			UserID:    1,
			TokenType: "refresh",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
			SignedString([]byte("test-secret-that-is-at-least-32-characters"))
		require.NoError(t, err)

		_, err = m.ValidateAccessToken(token)
		assert.ErrorContains(t, err, "invalid token type")
	})
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc", ExtractTokenFromHeader("Bearer abc"))
	assert.Equal(t, "", ExtractTokenFromHeader("Basic abc"))
	assert.Equal(t, "", ExtractTokenFromHeader("abc"))
}
