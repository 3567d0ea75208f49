package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/echopind/echopind_backend/internal/apperrors"
	"github.com/echopind/echopind_backend/internal/core/domain"
	portsrepo "github.com/echopind/echopind_backend/internal/core/ports/repositories"
	portssvc "github.com/echopind/echopind_backend/internal/core/ports/services"
	"github.com/echopind/echopind_backend/internal/dto"
	"github.com/echopind/echopind_backend/internal/utils"
	"github.com/google/uuid"
)

// maxPasswordBytes is the bcrypt input limit; longer passwords would be silently truncated.
const maxPasswordBytes = 72

// authService is the session manager. It owns every write to a user's refresh-token list.
type authService struct {
	BaseService
	userRepo         portsrepo.UserRepositoryFacade
	hasher           portssvc.PasswordHasher
	tokens           portssvc.TokenSvcFacade
	maxRefreshTokens int
	now              func() time.Time
}

// AuthServiceOption configures an authService.
type AuthServiceOption func(*authService)

// WithAuthClock replaces time.Now for session bookkeeping.
func WithAuthClock(now func() time.Time) AuthServiceOption {
	return func(s *authService) {
		s.now = now
	}
}

// WithMaxRefreshTokens bounds the number of concurrent sessions per user.
func WithMaxRefreshTokens(n int) AuthServiceOption {
	return func(s *authService) {
		if n > 0 {
			s.maxRefreshTokens = n
		}
	}
}

// NewAuthService creates the session manager.
func NewAuthService(userRepo portsrepo.UserRepositoryFacade, hasher portssvc.PasswordHasher, tokens portssvc.TokenSvcFacade, opts ...AuthServiceOption) portssvc.AuthSvcFacade {
	s := &authService{
		userRepo:         userRepo,
		hasher:           hasher,
		tokens:           tokens,
		maxRefreshTokens: domain.DefaultMaxRefreshTokens,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func validatePasswordLength(password string) error {
	if len(password) > maxPasswordBytes {
		return fmt.Errorf("%w: password must be at most %d bytes", apperrors.ErrValidation, maxPasswordBytes)
	}
	return nil
}

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (*domain.AuthResult, error) {
	role, err := req.ResolveRole()
	if err != nil {
		return nil, err
	}
	profile, err := req.Profile()
	if err != nil {
		return nil, err
	}
	if err := validatePasswordLength(req.Password); err != nil {
		return nil, err
	}

	email := domain.NormalizeEmail(req.Email)
	if _, err := s.userRepo.FindUserByEmail(ctx, email); err == nil {
		s.LogWarn(ctx, "Registration rejected, email already registered")
		return nil, fmt.Errorf("register %s: %w", email, apperrors.ErrDuplicate)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to check existing user during registration")
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		s.LogError(ctx, err, "Failed to hash password during registration")
		return nil, err
	}

	now := s.now()
	userID := uuid.NewString()
	user := domain.User{
		UserID:       userID,
		FullName:     strings.TrimSpace(req.FullName),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Phone:        profile.Phone,
		Address:      profile.Address,
		DateOfBirth:  profile.DateOfBirth,
		StudentID:    profile.StudentID,
		School:       profile.School,
		Grade:        profile.Grade,
		IsActive:     true,
		LastLogin:    &now,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	tokens, entry, err := s.mintPair(ctx, &user, now)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to save user during registration")
		}
		return nil, err
	}
	if err := s.userRepo.AddRefreshToken(ctx, user.UserID, entry, s.maxRefreshTokens, now); err != nil {
		s.LogError(ctx, err, "Failed to record refresh token during registration", slog.String("user_id", user.UserID))
		// A failed registration leaves no account behind.
		if delErr := s.userRepo.DeleteUser(context.WithoutCancel(ctx), user.UserID); delErr != nil {
			s.LogError(ctx, delErr, "Failed to roll back user after registration failure", slog.String("user_id", user.UserID))
		}
		return nil, err
	}
	s.LogInfo(ctx, "User registered", slog.String("user_id", user.UserID), slog.String("role", user.Role.String()))
	return &domain.AuthResult{User: &user, Tokens: tokens}, nil
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*domain.AuthResult, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.hasher.VerifyDummy(req.Password)
			s.LogWarn(ctx, "Login failed, unknown email")
			return nil, apperrors.ErrInvalidCredentials
		}
		s.LogError(ctx, err, "Failed to load user during login")
		return nil, err
	}
	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		s.LogWarn(ctx, "Login failed, wrong password", slog.String("user_id", user.UserID))
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		s.LogWarn(ctx, "Login rejected, account deactivated", slog.String("user_id", user.UserID))
		return nil, apperrors.ErrAccountDeactivated
	}
	return s.completeLogin(ctx, user)
}

// completeLogin stamps the login time before opening a session, so a failed stamp records no session.
func (s *authService) completeLogin(ctx context.Context, user *domain.User) (*domain.AuthResult, error) {
	now := s.now()
	if err := s.userRepo.UpdateLastLogin(ctx, user.UserID, now); err != nil {
		s.LogError(ctx, err, "Failed to update last login", slog.String("user_id", user.UserID))
		return nil, err
	}
	user.LastLogin = &now
	tokens, err := s.openSession(ctx, user, now)
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "User logged in", slog.String("user_id", user.UserID))
	return &domain.AuthResult{User: user, Tokens: tokens}, nil
}

// mintPair issues an access and a refresh token and the session entry recording the latter.
func (s *authService) mintPair(ctx context.Context, user *domain.User, now time.Time) (domain.TokenPair, domain.RefreshToken, error) {
	accessToken, accessExp, err := s.tokens.GenerateAccessToken(ctx, user)
	if err != nil {
		s.LogError(ctx, err, "Failed to generate access token", slog.String("user_id", user.UserID))
		return domain.TokenPair{}, domain.RefreshToken{}, err
	}
	refreshToken, refreshExp, err := s.tokens.GenerateRefreshToken(ctx, user)
	if err != nil {
		s.LogError(ctx, err, "Failed to generate refresh token", slog.String("user_id", user.UserID))
		return domain.TokenPair{}, domain.RefreshToken{}, err
	}
	pair := domain.TokenPair{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExp,
		ExpiresIn:        s.tokens.AccessTokenTTL(),
	}
	entry := domain.RefreshToken{
		TokenHash: utils.HashRefreshToken(refreshToken),
		IssuedAt:  now,
		ExpiresAt: refreshExp,
	}
	return pair, entry, nil
}

// openSession mints a pair and records its refresh token, evicting the oldest beyond the cap.
func (s *authService) openSession(ctx context.Context, user *domain.User, now time.Time) (domain.TokenPair, error) {
	pair, entry, err := s.mintPair(ctx, user, now)
	if err != nil {
		return domain.TokenPair{}, err
	}
	if err := s.userRepo.AddRefreshToken(ctx, user.UserID, entry, s.maxRefreshTokens, now); err != nil {
		s.LogError(ctx, err, "Failed to record refresh token", slog.String("user_id", user.UserID))
		return domain.TokenPair{}, err
	}
	return pair, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*domain.AuthResult, error) {
	claims, err := s.tokens.ValidateRefreshToken(ctx, refreshToken)
	if err != nil {
		s.LogWarn(ctx, "Refresh rejected, token failed verification", slog.String("error", err.Error()))
		return nil, err
	}

	now := s.now()
	tokenHash := utils.HashRefreshToken(refreshToken)
	user, err := s.userRepo.FindUserByRefreshToken(ctx, tokenHash, now)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.LogWarn(ctx, "Refresh rejected, token not recorded", slog.String("user_id", claims.UserID))
			return nil, apperrors.ErrInvalidRefreshToken
		}
		s.LogError(ctx, err, "Failed to look up refresh token")
		return nil, err
	}
	if user.UserID != claims.UserID || !user.IsActive {
		s.LogWarn(ctx, "Refresh rejected, owner mismatch or inactive", slog.String("user_id", user.UserID))
		return nil, apperrors.ErrInvalidRefreshToken
	}

	pair, entry, err := s.mintPair(ctx, user, now)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.RotateRefreshToken(ctx, user.UserID, tokenHash, entry, s.maxRefreshTokens, now); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.LogWarn(ctx, "Refresh rejected, token already redeemed", slog.String("user_id", user.UserID))
			return nil, apperrors.ErrInvalidRefreshToken
		}
		s.LogError(ctx, err, "Failed to rotate refresh token", slog.String("user_id", user.UserID))
		return nil, err
	}
	return &domain.AuthResult{User: user, Tokens: pair}, nil
}

func (s *authService) Logout(ctx context.Context, userID, refreshToken string) error {
	if err := s.userRepo.RemoveRefreshToken(ctx, userID, utils.HashRefreshToken(refreshToken)); err != nil {
		s.LogError(ctx, err, "Failed to remove refresh token", slog.String("user_id", userID))
		return err
	}
	s.LogInfo(ctx, "User logged out", slog.String("user_id", userID))
	return nil
}

func (s *authService) LogoutAll(ctx context.Context, userID string) error {
	if err := s.userRepo.ClearRefreshTokens(ctx, userID); err != nil {
		s.LogError(ctx, err, "Failed to clear refresh tokens", slog.String("user_id", userID))
		return err
	}
	s.LogInfo(ctx, "User logged out of all devices", slog.String("user_id", userID))
	return nil
}

func (s *authService) DeleteAccount(ctx context.Context, userID, password string) error {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		s.LogWarn(ctx, "Account deletion rejected, wrong password", slog.String("user_id", userID))
		return apperrors.ErrInvalidPassword
	}
	if err := s.userRepo.DeleteUser(ctx, userID); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to delete user", slog.String("user_id", userID))
		}
		return err
	}
	s.LogInfo(ctx, "Account deleted", slog.String("user_id", userID))
	return nil
}

func (s *authService) LoginWithOAuth(ctx context.Context, profile domain.OAuthProfile) (*domain.AuthResult, error) {
	email := domain.NormalizeEmail(profile.Email)
	if email == "" || !profile.EmailVerified {
		s.LogWarn(ctx, "OAuth login rejected, email missing or unverified", slog.String("provider", profile.Provider))
		return nil, fmt.Errorf("%w: %s account email is not verified", apperrors.ErrUnauthorized, profile.Provider)
	}

	user, err := s.userRepo.FindUserByEmail(ctx, email)
	if errors.Is(err, apperrors.ErrNotFound) {
		user, err = s.createOAuthUser(ctx, profile, email)
		if errors.Is(err, apperrors.ErrDuplicate) {
			// Lost a race with a concurrent first sign-in for the same email
			user, err = s.userRepo.FindUserByEmail(ctx, email)
		}
	}
	if err != nil {
		s.LogError(ctx, err, "Failed to resolve OAuth user", slog.String("provider", profile.Provider))
		return nil, err
	}
	if !user.IsActive {
		s.LogWarn(ctx, "OAuth login rejected, account deactivated", slog.String("user_id", user.UserID))
		return nil, apperrors.ErrAccountDeactivated
	}
	return s.completeLogin(ctx, user)
}

// createOAuthUser registers a student whose password is a random secret nobody learns.
func (s *authService) createOAuthUser(ctx context.Context, profile domain.OAuthProfile, email string) (*domain.User, error) {
	secret, err := utils.GenerateSecureRandomString(32)
	if err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(secret)
	if err != nil {
		return nil, err
	}

	fullName := strings.TrimSpace(profile.FullName)
	if fullName == "" {
		fullName, _, _ = strings.Cut(email, "@")
	}
	now := s.now()
	userID := uuid.NewString()
	user := &domain.User{
		UserID:       userID,
		FullName:     fullName,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.DefaultRole,
		IsActive:     true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if profile.PictureURL != "" {
		photo := profile.PictureURL
		user.ProfilePhoto = &photo
	}
	if err := s.userRepo.SaveUser(ctx, *user); err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "User created from OAuth profile", slog.String("user_id", userID), slog.String("provider", profile.Provider))
	return user, nil
}
