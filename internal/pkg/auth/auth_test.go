// internal/pkg/auth/auth_test.go
package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/agency-backend/internal/config"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "Agency API"},
		JWT: config.JWTConfig{
			Secret:             "test-signing-secret",
			AccessTokenExpiry:  15 * time.Minute,
			RefreshTokenExpiry: 7 * 24 * time.Hour,
		},
		Security: config.SecurityConfig{BcryptCost: bcrypt.MinCost},
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	mgr := NewJWTManager(testConfig())

	token, err := mgr.GenerateAccessToken(42, "ayse@example.com", true)
	require.NoError(t, err)

	claims, err := mgr.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "ayse@example.com", claims.Email)
	assert.True(t, claims.IsAdmin)
	assert.Equal(t, "access", claims.TokenType)
}

func TestTokenTypeEnforced(t *testing.T) {
	mgr := NewJWTManager(testConfig())

	access, err := mgr.GenerateAccessToken(1, "a@example.com", false)
	require.NoError(t, err)
	refresh, err := mgr.GenerateRefreshToken(1, "a@example.com")
	require.NoError(t, err)

	_, err = mgr.ValidateRefreshToken(access)
	assert.Error(t, err)
	_, err = mgr.ValidateAccessToken(refresh)
	assert.Error(t, err)
}

func TestRefreshTokenDropsAdminFlag(t *testing.T) {
	mgr := NewJWTManager(testConfig())

	refresh, err := mgr.GenerateRefreshToken(1, "a@example.com")
	require.NoError(t, err)

	claims, err := mgr.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.False(t, claims.IsAdmin)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	mgr := NewJWTManager(testConfig())
	token, err := mgr.GenerateAccessToken(1, "a@example.com", false)
	require.NoError(t, err)

	otherCfg := testConfig()
	otherCfg.JWT.Secret = "a-different-secret"
	other := NewJWTManager(otherCfg)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc.def.ghi", ExtractTokenFromHeader("Bearer abc.def.ghi"))
	assert.Equal(t, "", ExtractTokenFromHeader("abc.def.ghi"))
	assert.Equal(t, "", ExtractTokenFromHeader(""))
	assert.Equal(t, "", ExtractTokenFromHeader("Bearer"))
}

func TestPasswordHashAndVerify(t *testing.T) {
	mgr := NewPasswordManager(testConfig())

	hash, err := mgr.HashPassword("sufficient1")
	require.NoError(t, err)
	assert.NotEqual(t, "sufficient1", hash)

	assert.NoError(t, mgr.VerifyPassword("sufficient1", hash))
	assert.Error(t, mgr.VerifyPassword("different1", hash))
}

func TestValidatePassword(t *testing.T) {
	mgr := NewPasswordManager(testConfig())

	tests := []struct {
		password string
		valid    bool
	}{
		{"sufficient1", true},
		{"short1", false},       // under 8 characters
		{"onlyletters", false},  // no number
		{"1234567890", false},   // no letter
		{"paröla123", true},     // non-ASCII letters count
	}

	for _, tt := range tests {
		err := mgr.ValidatePassword(tt.password)
		if tt.valid {
			assert.NoError(t, err, tt.password)
		} else {
			assert.Error(t, err, tt.password)
		}
	}
}
