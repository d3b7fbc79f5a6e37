package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/BradenHooton/portfolio/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-32-characters-long!!"

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validClaims(email string) Claims {
	return Claims{
		Email: email,
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "6f1c2f5e-8a5b-4c47-9d1a-2c1f0e7b9a10",
			Audience:  jwt.ClaimStrings{ProviderAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func TestVerify_ValidToken(t *testing.T) {
	v := NewTokenVerifier(testSecret)
	token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims(" Owner@Example.com "))

	claims, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", claims.Email)
	assert.Equal(t, "6f1c2f5e-8a5b-4c47-9d1a-2c1f0e7b9a10", claims.Subject)
}

func TestVerify_Rejections(t *testing.T) {
	expired := validClaims("owner@example.com")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	wrongAudience := validClaims("owner@example.com")
	wrongAudience.Audience = jwt.ClaimStrings{"anon"}

	noExpiry := validClaims("owner@example.com")
	noExpiry.ExpiresAt = nil

	noEmail := validClaims("")

	tests := []struct {
		name  string
		token string
	}{
		{"wrong secret", signToken(t, jwt.SigningMethodHS256, []byte("another-secret-32-characters-long"), validClaims("owner@example.com"))},
		{"expired", signToken(t, jwt.SigningMethodHS256, []byte(testSecret), expired)},
		{"wrong audience", signToken(t, jwt.SigningMethodHS256, []byte(testSecret), wrongAudience)},
		{"missing expiry", signToken(t, jwt.SigningMethodHS256, []byte(testSecret), noExpiry)},
		{"missing email", signToken(t, jwt.SigningMethodHS256, []byte(testSecret), noEmail)},
		{"HS512 not accepted", signToken(t, jwt.SigningMethodHS512, []byte(testSecret), validClaims("owner@example.com"))},
		{"garbage", "not-a-jwt"},
	}

	v := NewTokenVerifier(testSecret)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(tt.token)
			require.Error(t, err)
			assert.True(t, errors.Is(err, models.ErrUnauthorized))
		})
	}
}
