package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

type Claims struct {
	DoctorID  string `json:"doctorId"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	TokenType string `json:"tokenType"` // "access" or "refresh"
	jwt.RegisteredClaims
}

// GenerateAccessToken generates a signed access token
func GenerateAccessToken(doctorID, email, name, secret string, expiration time.Duration) (string, error) {
	return generateToken(TokenTypeAccess, doctorID, email, name, secret, expiration)
}

// GenerateRefreshToken generates a signed refresh token
func GenerateRefreshToken(doctorID, email, name, secret string, expiration time.Duration) (string, error) {
	return generateToken(TokenTypeRefresh, doctorID, email, name, secret, expiration)
}

// Every token gets a random jti so a single token can be revoked.
func generateToken(tokenType, doctorID, email, name, secret string, expiration time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		DoctorID:  doctorID,
		Email:     email,
		Name:      name,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   doctorID,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken parses tokenString and checks its signature and expiry.
func ValidateToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(secret), nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// RemainingTTL is how long the token stays valid, zero once expired.
func (c *Claims) RemainingTTL(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	if ttl := c.ExpiresAt.Time.Sub(now); ttl > 0 {
		return ttl
	}
	return 0
}
