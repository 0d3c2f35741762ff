// Package auth verifies the bearer tokens identifying viewers. Identity is
// established elsewhere; this service only needs to know who is asking.
package auth

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the JWT claims carried by access tokens.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Manager verifies access tokens issued by the identity provider. Issuance
// lives there; this service only resolves who is asking.
type Manager struct {
	secretKey []byte
	issuer    string
}

func NewManager(secretKey, issuer string) *Manager {
	return &Manager{
		secretKey: []byte(secretKey),
		issuer:    issuer,
	}
}

// Verify parses and validates an access token.
func (m *Manager) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secretKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if m.issuer != "" && claims.Issuer != m.issuer {
		return nil, fmt.Errorf("invalid token issuer")
	}
	return claims, nil
}

// ExtractTokenFromHeader pulls the token out of "Authorization: Bearer <t>".
func ExtractTokenFromHeader(authHeader string) (string, error) {
	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", fmt.Errorf("invalid authorization header format")
	}
	return authHeader[len(bearerPrefix):], nil
}
