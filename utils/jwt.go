package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yuchia/temple-checkin/config"
)

const (
	// TokenTypeAccess marks short-lived tokens accepted by AuthRequired.
	TokenTypeAccess = "access"
	// TokenTypeRefresh marks long-lived tokens accepted only by the refresh endpoint.
	TokenTypeRefresh = "refresh"
)

// Claims defines JWT claims used in the application. The JTI is the handle
// used for revocation.
type Claims struct {
	UserID    uint   `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// GenerateToken issues a JWT of the given type for the specified user identity.
func GenerateToken(userID uint, tokenType string, duration time.Duration) (string, error) {
	cfg := config.Get()

	claims := Claims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(duration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

// GenerateTokenPair issues the access/refresh token pair for a user.
func GenerateTokenPair(userID uint) (access string, refresh string, err error) {
	cfg := config.Get()
	access, err = GenerateToken(userID, TokenTypeAccess, time.Duration(cfg.JWTAccessExpireHours)*time.Hour)
	if err != nil {
		return "", "", err
	}
	refresh, err = GenerateToken(userID, TokenTypeRefresh, time.Duration(cfg.JWTRefreshExpireHours)*time.Hour)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// ParseToken validates a JWT and returns its claims.
func ParseToken(tokenStr string) (*Claims, error) {
	cfg := config.Get()
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}
