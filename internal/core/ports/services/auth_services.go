package services

import (
	"context"
	"time"

	"github.com/echopind/echopind_backend/internal/core/domain"
	"github.com/echopind/echopind_backend/internal/dto"
	"golang.org/x/oauth2"
)

// PasswordHasher hashes and verifies user passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
	// VerifyDummy performs a comparison of equal cost that always fails.
	VerifyDummy(password string) bool
}

// TokenSvcFacade issues and verifies access and refresh tokens.
type TokenSvcFacade interface {
	// GenerateAccessToken mints a short-lived access token carrying the user's identity.
	GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error)
	// GenerateRefreshToken mints a long-lived refresh token for the user.
	GenerateRefreshToken(ctx context.Context, user *domain.User) (string, time.Time, error)
	// ValidateAccessToken returns apperrors.ErrTokenExpired or apperrors.ErrTokenInvalid on failure.
	ValidateAccessToken(ctx context.Context, token string) (*domain.AccessClaims, error)
	// ValidateRefreshToken rejects access tokens and tokens signed with the access secret.
	ValidateRefreshToken(ctx context.Context, token string) (*domain.RefreshClaims, error)
	// AccessTokenTTL is the lifetime reported to clients as expiresIn.
	AccessTokenTTL() time.Duration
}

// AuthSvcFacade is the session manager: it authenticates users and owns their refresh-token lists.
type AuthSvcFacade interface {
	// Register creates a user and opens its first session.
	Register(ctx context.Context, req dto.RegisterRequest) (*domain.AuthResult, error)
	// Login verifies credentials and opens a session, evicting the oldest beyond the cap.
	Login(ctx context.Context, req dto.LoginRequest) (*domain.AuthResult, error)
	// Refresh redeems a refresh token exactly once and returns a new pair.
	Refresh(ctx context.Context, refreshToken string) (*domain.AuthResult, error)
	// Logout closes one session. Unknown tokens are ignored.
	Logout(ctx context.Context, userID, refreshToken string) error
	// LogoutAll closes every session of the user.
	LogoutAll(ctx context.Context, userID string) error
	// DeleteAccount removes the user after re-verifying the password.
	DeleteAccount(ctx context.Context, userID, password string) error
	// LoginWithOAuth signs in (creating if needed) the user asserted by an external provider.
	LoginWithOAuth(ctx context.Context, profile domain.OAuthProfile) (*domain.AuthResult, error)
}

// GoogleOAuthHandlerSvcFacade defines the interface for Google OAuth operations.
type GoogleOAuthHandlerSvcFacade interface {
	// IsConfigured reports whether client credentials are present.
	IsConfigured() bool
	// GenerateStateString creates a secure random string to be used as a CSRF token for OAuth flow.
	GenerateStateString(ctx context.Context) (string, error)
	// GetGoogleLoginURL returns the URL to redirect the user to for Google login.
	GetGoogleLoginURL(ctx context.Context, state string) string
	// ExchangeCodeForToken exchanges an OAuth authorization code for a token.
	ExchangeCodeForToken(ctx context.Context, code string) (*oauth2.Token, error)
	// ValidateGoogleIDToken validates an ID token string from Google and returns the asserted profile.
	ValidateGoogleIDToken(ctx context.Context, idTokenString string) (*domain.OAuthProfile, error)
}
