package auth

import (
	"fmt"
	"strings"

	"github.com/BradenHooton/portfolio/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// ProviderAudience is the aud claim the auth provider stamps on user sessions.
const ProviderAudience = "authenticated"

// Claims are the fields read from an auth-provider access token.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// TokenVerifier checks HS256 access tokens issued by the auth provider.
type TokenVerifier struct {
	secret []byte
	parser *jwt.Parser
}

func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithAudience(ProviderAudience),
			jwt.WithExpirationRequired(),
		),
	}
}

// Verify parses tokenString and returns its claims. Tokens without an email
// or subject are rejected.
func (v *TokenVerifier) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := v.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUnauthorized, err)
	}
	if !token.Valid {
		return nil, models.ErrUnauthorized
	}

	claims.Email = strings.ToLower(strings.TrimSpace(claims.Email))
	if claims.Email == "" || claims.Subject == "" {
		return nil, fmt.Errorf("%w: token missing email or subject", models.ErrUnauthorized)
	}

	return claims, nil
}
