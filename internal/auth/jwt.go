// Package auth issues and validates bearer tokens bound to a wallet address.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mmynk/suisplit/internal/models"
)

const issuer = "suisplit"

var (
	ErrInvalidToken   = errors.New("invalid or expired token")
	ErrMissingToken   = errors.New("authorization token required")
	ErrInvalidAddress = errors.New("invalid wallet address")
)

// JWTManager handles JWT token generation and validation.
type JWTManager struct {
	secretKey     []byte
	tokenDuration time.Duration
}

// Claims carries the wallet address the token was minted for.
type Claims struct {
	Address string `json:"address"`
	jwt.RegisteredClaims
}

// NewJWTManager creates a new JWT manager with the given secret and token duration.
func NewJWTManager(secretKey string, tokenDuration time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:     []byte(secretKey),
		tokenDuration: tokenDuration,
	}
}

// Generate creates a signed token for address.
func (m *JWTManager) Generate(address string) (string, error) {
	address, ok := models.ParseAddress(address)
	if !ok {
		return "", ErrInvalidAddress
	}

	now := time.Now()
	claims := &Claims{
		Address: address,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   address,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// Validate parses and validates a JWT token, returning the claims if valid.
func (m *JWTManager) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secretKey, nil
		},
		jwt.WithIssuer(issuer),
	)

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Address, ok = models.ParseAddress(claims.Address); !ok {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
