// Package auth issues and validates the admin tokens that guard the
// credential management endpoints.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// AdminTokenTTL bounds how long an issued admin token is accepted.
const AdminTokenTTL = 15 * time.Minute

// AdminClaims are the claims embedded in an admin token.
type AdminClaims struct {
	Subject string
	jwt.RegisteredClaims
}

// GenerateAdminJWT creates a short-lived HS256 token for an admin subject.
func GenerateAdminJWT(subject string, secret []byte) (string, time.Time, error) {
	expiresAt := time.Now().Add(AdminTokenTTL)
	claims := &AdminClaims{
		Subject: subject,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateAdminJWT verifies signature and expiry and returns the claims.
func ValidateAdminJWT(tokenString string, secret []byte) (*AdminClaims, error) {
	claims := &AdminClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
