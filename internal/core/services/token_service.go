package services

import (
	"context"
	"fmt"
	"time"

	"github.com/echopind/echopind_backend/internal/apperrors"
	"github.com/echopind/echopind_backend/internal/core/domain"
	portssvc "github.com/echopind/echopind_backend/internal/core/ports/services"
	"github.com/echopind/echopind_backend/internal/platform/config"
	"github.com/echopind/echopind_backend/internal/utils"
)

// tokenService implements the TokenSvcFacade. Access and refresh tokens are HS256 JWTs
// signed with distinct secrets, so neither can be presented as the other.
type tokenService struct {
	cfg *config.Config
	now func() time.Time
}

// TokenServiceOption configures a tokenService.
type TokenServiceOption func(*tokenService)

// WithTokenClock replaces time.Now for issuing and validating tokens.
func WithTokenClock(now func() time.Time) TokenServiceOption {
	return func(s *tokenService) {
		s.now = now
	}
}

// NewTokenService creates a new instance of tokenService.
func NewTokenService(cfg *config.Config, opts ...TokenServiceOption) portssvc.TokenSvcFacade {
	s := &tokenService{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *tokenService) AccessTokenTTL() time.Duration {
	return s.cfg.JWTExpiryDuration
}

// GenerateAccessToken creates a new JWT access token for the given user.
func (s *tokenService) GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	claims := utils.AccessTokenClaims{
		UserID:           user.UserID,
		Email:            user.Email,
		Role:             user.Role.String(),
		FullName:         user.FullName,
		RegisteredClaims: utils.NewRegisteredClaims(user.UserID, s.cfg.JWTIssuer, s.cfg.JWTExpiryDuration, s.now()),
	}
	token, err := utils.GenerateJWT(claims, s.cfg.JWTSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate access token: %w", err)
	}
	return token, claims.ExpiresAt.Time, nil
}

// GenerateRefreshToken creates a new refresh token for the given user.
func (s *tokenService) GenerateRefreshToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	claims := utils.RefreshTokenClaims{
		UserID:           user.UserID,
		Type:             utils.RefreshTokenType,
		RegisteredClaims: utils.NewRegisteredClaims(user.UserID, s.cfg.JWTIssuer, s.cfg.RefreshTokenExpiryDuration, s.now()),
	}
	token, err := utils.GenerateJWT(claims, s.cfg.RefreshTokenSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return token, claims.ExpiresAt.Time, nil
}

func (s *tokenService) ValidateAccessToken(ctx context.Context, token string) (*domain.AccessClaims, error) {
	claims := &utils.AccessTokenClaims{}
	if err := utils.ParseAndValidateJWT(token, s.cfg.JWTSecret, s.cfg.JWTIssuer, claims, s.now); err != nil {
		return nil, err
	}
	if claims.UserID == "" || claims.Subject != claims.UserID {
		return nil, fmt.Errorf("%w: subject does not match user", apperrors.ErrTokenInvalid)
	}
	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrTokenInvalid, err)
	}
	return &domain.AccessClaims{
		UserID:    claims.UserID,
		Email:     claims.Email,
		Role:      role,
		FullName:  claims.FullName,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (s *tokenService) ValidateRefreshToken(ctx context.Context, token string) (*domain.RefreshClaims, error) {
	claims := &utils.RefreshTokenClaims{}
	if err := utils.ParseAndValidateJWT(token, s.cfg.RefreshTokenSecret, s.cfg.JWTIssuer, claims, s.now); err != nil {
		return nil, err
	}
	if claims.Type != utils.RefreshTokenType {
		return nil, fmt.Errorf("%w: not a refresh token", apperrors.ErrTokenInvalid)
	}
	if claims.UserID == "" || claims.Subject != claims.UserID {
		return nil, fmt.Errorf("%w: subject does not match user", apperrors.ErrTokenInvalid)
	}
	out := &domain.RefreshClaims{
		UserID:    claims.UserID,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}
