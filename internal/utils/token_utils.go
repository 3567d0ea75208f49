package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/echopind/echopind_backend/internal/apperrors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// RefreshTokenType marks refresh tokens so an access token can never be redeemed as one.
const RefreshTokenType = "refresh"

// AccessTokenClaims is the JWT body of an access token.
type AccessTokenClaims struct {
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	FullName string `json:"fullName"`
	jwt.RegisteredClaims
}

// RefreshTokenClaims is the JWT body of a refresh token.
type RefreshTokenClaims struct {
	UserID string `json:"userId"`
	Type   string `json:"type"`
	jwt.RegisteredClaims
}

// NewRegisteredClaims fills the standard claims. Each token gets a random jti so two tokens
// minted for the same user within the same second still differ.
func NewRegisteredClaims(subject, issuer string, ttl time.Duration, now time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    issuer,
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}
}

// GenerateJWT signs claims with HS256.
func GenerateJWT(claims jwt.Claims, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseAndValidateJWT verifies tokenString with secret and decodes it into claims.
// Expired tokens yield apperrors.ErrTokenExpired; every other failure yields apperrors.ErrTokenInvalid.
func ParseAndValidateJWT(tokenString, secret, issuer string, claims jwt.Claims, now func() time.Time) error {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	if now != nil {
		opts = append(opts, jwt.WithTimeFunc(now))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return fmt.Errorf("%w: %v", apperrors.ErrTokenExpired, err)
		}
		return fmt.Errorf("%w: %v", apperrors.ErrTokenInvalid, err)
	}
	if !token.Valid {
		return apperrors.ErrTokenInvalid
	}
	return nil
}
